// Package statement implements the bank-statement ingestion pipeline: locating
// the transaction table inside messy spreadsheet exports, normalizing columns
// onto a canonical schema, cleaning values, classifying each row, and
// aggregating monthly category summaries.
package statement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/RishulGupta/Finance-Coach-AI/internal/category"
)

// MonthLayout is the year-month period format used throughout exports.
const MonthLayout = "2006-01"

// DateLayout is the calendar-date format used in exports.
const DateLayout = "2006-01-02"

// Transaction is one cleaned, categorized statement row.
type Transaction struct {
	Date        time.Time
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Balance     decimal.NullDecimal
	Category    category.Label
	Month       string // Date's year-month period, e.g. "2024-07"
}

// MonthlySummary is one (month, category) aggregate over categorized
// transactions. Only observed combinations are materialized.
type MonthlySummary struct {
	Month            string
	Category         category.Label
	TotalSpent       decimal.Decimal
	TotalIncome      decimal.Decimal
	TransactionCount int
}
