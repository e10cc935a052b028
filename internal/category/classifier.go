package category

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RishulGupta/Finance-Coach-AI/internal/logger"
)

// Fallback classifies a free-text description into a taxonomy label. It is
// only consulted when no rule matches. Implementations may be slow or fail;
// the classifier degrades every failure to Other.
type Fallback interface {
	Classify(ctx context.Context, description string) (string, error)
}

// Config tunes the classifier's fallback tier.
type Config struct {
	// Workers bounds concurrent fallback calls within one batch.
	Workers int
	// Timeout applies per fallback call. Zero means no per-call timeout.
	Timeout time.Duration
}

// DefaultConfig bounds fallback fan-out conservatively so a large statement
// cannot overwhelm the downstream model API.
var DefaultConfig = Config{
	Workers: 4,
	Timeout: 20 * time.Second,
}

// Classifier assigns taxonomy labels to descriptions. The rule table and
// fallback are fixed at construction; a Classifier is immutable and safe for
// concurrent use across pipeline runs.
type Classifier struct {
	rules    []Rule
	fallback Fallback
	cfg      Config
}

// NewClassifier builds a classifier over the given rule table. fallback may be
// nil, in which case unmatched descriptions resolve to Other.
func NewClassifier(rules []Rule, fallback Fallback, cfg Config) *Classifier {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig.Workers
	}
	return &Classifier{rules: rules, fallback: fallback, cfg: cfg}
}

// Classify returns a taxonomy label for one description. It never fails: rule
// misses go to the fallback, and any fallback error, timeout or out-of-taxonomy
// answer degrades to Other. The second return reports that degrade.
func (c *Classifier) Classify(ctx context.Context, description string) (Label, bool) {
	if label, ok := matchRules(c.rules, description); ok {
		return label, false
	}
	return c.classifyFallback(ctx, description)
}

// ClassifyAll labels every description, preserving input order. Rule-tier hits
// are resolved inline; the residual is classified through the fallback with
// bounded concurrency. The returned count is the number of degraded
// classifications (fallback failure or out-of-taxonomy answer).
func (c *Classifier) ClassifyAll(ctx context.Context, descriptions []string) ([]Label, int) {
	labels := make([]Label, len(descriptions))
	var misses []int
	for i, desc := range descriptions {
		if label, ok := matchRules(c.rules, desc); ok {
			labels[i] = label
		} else {
			misses = append(misses, i)
		}
	}
	if len(misses) == 0 {
		return labels, 0
	}

	var degraded atomic.Int64
	sem := make(chan struct{}, c.cfg.Workers)
	var wg sync.WaitGroup
	for _, idx := range misses {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			label, wasDegraded := c.classifyFallback(ctx, descriptions[i])
			labels[i] = label
			if wasDegraded {
				degraded.Add(1)
			}
		}(idx)
	}
	wg.Wait()

	return labels, int(degraded.Load())
}

// classifyFallback runs the fallback tier only; the rule tier has already
// missed by the time this is called.
func (c *Classifier) classifyFallback(ctx context.Context, description string) (Label, bool) {
	if c.fallback == nil {
		return Other, true
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	raw, err := c.fallback.Classify(ctx, description)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("description", description).
			Msg("fallback classification failed, using Other")
		return Other, true
	}
	label := Normalize(raw)
	return label, label == Other && raw != string(Other)
}
