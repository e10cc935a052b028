package category

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeFallback is a deterministic Fallback for tests.
type fakeFallback struct {
	mu      sync.Mutex
	answers map[string]string
	err     error
	calls   atomic.Int64
	active  atomic.Int64
	maxSeen atomic.Int64
}

func (f *fakeFallback) Classify(_ context.Context, description string) (string, error) {
	f.calls.Add(1)
	cur := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		prev := f.maxSeen.Load()
		if cur <= prev || f.maxSeen.CompareAndSwap(prev, cur) {
			break
		}
	}
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if ans, ok := f.answers[description]; ok {
		return ans, nil
	}
	return "Other", nil
}

func TestClassifyRuleTier(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        Label
	}{
		{name: "zomato", description: "ZOMATO ORDER 12345", want: "Food:Restaurants"},
		{name: "lowercase netflix", description: "netflix monthly", want: "Bills:Subscription"},
		{name: "salary", description: "SALARY CREDIT JULY", want: "Income:Salary"},
		{name: "rent", description: "UPI RENT TRANSFER", want: "Bills:Rent"},
		{name: "atm", description: "ATM WDL STATION RD", want: "Other:ATM Withdrawal"},
	}

	c := NewClassifier(DefaultRules, nil, DefaultConfig)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, degraded := c.Classify(context.Background(), tc.description)
			if got != tc.want {
				t.Errorf("Classify(%q) = %q, want %q", tc.description, got, tc.want)
			}
			if degraded {
				t.Errorf("rule-tier hit for %q reported degraded", tc.description)
			}
		})
	}
}

func TestClassifyRulePrecedesFallback(t *testing.T) {
	fb := &fakeFallback{answers: map[string]string{}}
	c := NewClassifier(DefaultRules, fb, DefaultConfig)

	got, _ := c.Classify(context.Background(), "NETFLIX SUBSCRIPTION PAYMENT")
	if got != "Bills:Subscription" {
		t.Fatalf("got %q, want Bills:Subscription", got)
	}
	if fb.calls.Load() != 0 {
		t.Errorf("fallback was invoked %d times for a ruled description", fb.calls.Load())
	}
}

func TestClassifyRuleOrderWins(t *testing.T) {
	// "AMAZON" is declared before "RENT": a description containing both must
	// take the earlier rule.
	c := NewClassifier(DefaultRules, nil, DefaultConfig)
	got, _ := c.Classify(context.Background(), "AMAZON RENT A CAR")
	if got != "Shopping:General" {
		t.Errorf("got %q, want Shopping:General (first-declared rule)", got)
	}
}

func TestClassifyFallbackValidLabel(t *testing.T) {
	fb := &fakeFallback{answers: map[string]string{
		"GYM MEMBERSHIP": "Personal:Fitness",
	}}
	c := NewClassifier(DefaultRules, fb, DefaultConfig)

	got, degraded := c.Classify(context.Background(), "GYM MEMBERSHIP")
	if got != "Personal:Fitness" {
		t.Errorf("got %q, want Personal:Fitness", got)
	}
	if degraded {
		t.Error("valid fallback answer reported degraded")
	}
}

func TestClassifyFallbackOutOfTaxonomy(t *testing.T) {
	fb := &fakeFallback{answers: map[string]string{
		"MYSTERY CHARGE": "Gadgets:Drones",
	}}
	c := NewClassifier(DefaultRules, fb, DefaultConfig)

	got, degraded := c.Classify(context.Background(), "MYSTERY CHARGE")
	if got != Other {
		t.Errorf("got %q, want Other for out-of-taxonomy answer", got)
	}
	if !degraded {
		t.Error("out-of-taxonomy answer not reported degraded")
	}
}

func TestClassifyFallbackError(t *testing.T) {
	fb := &fakeFallback{err: errors.New("capability unavailable")}
	c := NewClassifier(DefaultRules, fb, DefaultConfig)

	got, degraded := c.Classify(context.Background(), "SOMETHING UNMATCHED")
	if got != Other {
		t.Errorf("got %q, want Other on fallback failure", got)
	}
	if !degraded {
		t.Error("fallback failure not reported degraded")
	}
}

func TestClassifyNilFallback(t *testing.T) {
	c := NewClassifier(DefaultRules, nil, DefaultConfig)
	got, degraded := c.Classify(context.Background(), "SOMETHING UNMATCHED")
	if got != Other {
		t.Errorf("got %q, want Other with nil fallback", got)
	}
	if !degraded {
		t.Error("nil-fallback miss not reported degraded")
	}
}

func TestClassifyAllPreservesOrderAndCountsDegrades(t *testing.T) {
	fb := &fakeFallback{answers: map[string]string{
		"GYM MEMBERSHIP": "Personal:Fitness",
		"WEIRD CHARGE":   "not a label",
	}}
	c := NewClassifier(DefaultRules, fb, Config{Workers: 2})

	descs := []string{
		"ZOMATO ORDER",    // rule
		"GYM MEMBERSHIP",  // fallback, valid
		"WEIRD CHARGE",    // fallback, degraded
		"SALARY CREDIT",   // rule
		"UNKNOWN MYSTERY", // fallback, defaults to Other (valid answer)
	}
	labels, degraded := c.ClassifyAll(context.Background(), descs)

	want := []Label{"Food:Restaurants", "Personal:Fitness", "Other", "Income:Salary", "Other"}
	for i, w := range want {
		if labels[i] != w {
			t.Errorf("labels[%d] = %q, want %q", i, labels[i], w)
		}
	}
	if degraded != 1 {
		t.Errorf("degraded = %d, want 1", degraded)
	}
}

func TestClassifyAllBoundsConcurrency(t *testing.T) {
	fb := &fakeFallback{answers: map[string]string{}}
	c := NewClassifier(nil, fb, Config{Workers: 3})

	descs := make([]string, 32)
	for i := range descs {
		descs[i] = "unmatched description"
	}
	labels, _ := c.ClassifyAll(context.Background(), descs)

	for i, l := range labels {
		if l != Other {
			t.Fatalf("labels[%d] = %q, want Other", i, l)
		}
	}
	if max := fb.maxSeen.Load(); max > 3 {
		t.Errorf("observed %d concurrent fallback calls, want <= 3", max)
	}
}

func TestTaxonomyClosure(t *testing.T) {
	for _, l := range Taxonomy {
		if !Valid(l) {
			t.Errorf("taxonomy member %q not valid", l)
		}
	}
	if Valid("Food") {
		t.Error("bare prefix should not be a valid label")
	}
	if Normalize("  Food:Coffee ") != "Food:Coffee" {
		t.Error("Normalize should trim whitespace around valid labels")
	}
	if Normalize("anything else") != Other {
		t.Error("Normalize should coerce unknown labels to Other")
	}
}
