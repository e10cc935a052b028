// Package store persists processed statement results per user and month.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RishulGupta/Finance-Coach-AI/internal/statement"
)

// ErrNotFound is returned when no result exists for the requested period.
var ErrNotFound = errors.New("store: no data for period")

// Period identifies one stored statement month.
type Period struct {
	Year  int
	Month time.Month
}

// Key is the storage path segment for the period, e.g. "2024_07".
func (p Period) Key() string {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006_01")
}

// Label is the human-readable period, e.g. "2024-07".
func (p Period) Label() string {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// Metadata summarizes one stored upload.
type Metadata struct {
	UploadedAt   time.Time         `firestore:"upload_ts"`
	Rows         int               `firestore:"rows"`
	TotalSpent   string            `firestore:"spent"`
	TotalIncome  string            `firestore:"income"`
	Categories   map[string]int    `firestore:"categories"`
	StoragePaths map[string]string `firestore:"storage_paths"`
}

// Result bundles what one upload produces.
type Result struct {
	Transactions []statement.Transaction
	Summaries    []statement.MonthlySummary
	Metadata     Metadata
}

// Store defines the persistence operations used by the service.
type Store interface {
	// SaveResult stores a processed statement for (userID, period),
	// replacing any previous upload for the same period.
	SaveResult(ctx context.Context, userID string, period Period, result *Result) error

	// LoadResult retrieves a stored result. Returns ErrNotFound when the
	// period has no upload.
	LoadResult(ctx context.Context, userID string, period Period) (*Result, error)

	// Exists reports whether (userID, period) has a stored result.
	Exists(ctx context.Context, userID string, period Period) (bool, error)

	// ListPeriods returns every period with stored data for the user, most
	// recent first.
	ListPeriods(ctx context.Context, userID string) ([]Period, error)

	// Close releases any underlying clients.
	Close() error
}

// BuildMetadata derives upload metadata from a pipeline result.
func BuildMetadata(res *statement.Result, now time.Time) Metadata {
	categories := make(map[string]int)
	spent, income := decimal.Zero, decimal.Zero
	for _, tx := range res.Transactions {
		spent = spent.Add(tx.Debit)
		income = income.Add(tx.Credit)
		categories[string(tx.Category)]++
	}
	return Metadata{
		UploadedAt:  now,
		Rows:        len(res.Transactions),
		TotalSpent:  spent.String(),
		TotalIncome: income.String(),
		Categories:  categories,
	}
}
