package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RishulGupta/Finance-Coach-AI/internal/category"
)

// Export column orders. These are a committed interchange contract: stored
// CSVs are read back by dashboards and later runs, so changing them requires
// migrating existing objects.
var (
	TransactionColumns = []string{"date", "description", "debit_amount", "credit_amount", "balance", "category", "month"}
	SummaryColumns     = []string{"month", "category", "total_spent", "total_income", "transaction_count"}
)

// EncodeTransactionsCSV writes transactions as CSV, header always included.
// An empty slice produces a headers-only file, the fail-soft empty table.
func EncodeTransactionsCSV(w io.Writer, txs []Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TransactionColumns); err != nil {
		return fmt.Errorf("writing transaction header: %w", err)
	}
	for _, tx := range txs {
		balance := ""
		if tx.Balance.Valid {
			balance = tx.Balance.Decimal.String()
		}
		record := []string{
			tx.Date.Format(DateLayout),
			tx.Description,
			tx.Debit.String(),
			tx.Credit.String(),
			balance,
			string(tx.Category),
			tx.Month,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing transaction row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeTransactionsCSV reads back a CSV produced by EncodeTransactionsCSV.
func DecodeTransactionsCSV(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(decodeUTF8(r))
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transaction csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("transaction csv has no header row")
	}

	txs := make([]Transaction, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(TransactionColumns) {
			return nil, fmt.Errorf("transaction row %d: got %d columns, want %d", i+1, len(rec), len(TransactionColumns))
		}
		date, err := time.Parse(DateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("transaction row %d: parsing date: %w", i+1, err)
		}
		debit, err := decimal.NewFromString(rec[2])
		if err != nil {
			return nil, fmt.Errorf("transaction row %d: parsing debit: %w", i+1, err)
		}
		credit, err := decimal.NewFromString(rec[3])
		if err != nil {
			return nil, fmt.Errorf("transaction row %d: parsing credit: %w", i+1, err)
		}
		var balance decimal.NullDecimal
		if rec[4] != "" {
			b, err := decimal.NewFromString(rec[4])
			if err != nil {
				return nil, fmt.Errorf("transaction row %d: parsing balance: %w", i+1, err)
			}
			balance = decimal.NullDecimal{Decimal: b, Valid: true}
		}
		txs = append(txs, Transaction{
			Date:        date,
			Description: rec[1],
			Debit:       debit,
			Credit:      credit,
			Balance:     balance,
			Category:    category.Label(rec[5]),
			Month:       rec[6],
		})
	}
	return txs, nil
}

// EncodeSummariesCSV writes monthly summaries as CSV, header always included.
func EncodeSummariesCSV(w io.Writer, summaries []MonthlySummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryColumns); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}
	for _, s := range summaries {
		record := []string{
			s.Month,
			string(s.Category),
			s.TotalSpent.String(),
			s.TotalIncome.String(),
			strconv.Itoa(s.TransactionCount),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing summary row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeSummariesCSV reads back a CSV produced by EncodeSummariesCSV.
func DecodeSummariesCSV(r io.Reader) ([]MonthlySummary, error) {
	cr := csv.NewReader(decodeUTF8(r))
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading summary csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("summary csv has no header row")
	}

	summaries := make([]MonthlySummary, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != len(SummaryColumns) {
			return nil, fmt.Errorf("summary row %d: got %d columns, want %d", i+1, len(rec), len(SummaryColumns))
		}
		spent, err := decimal.NewFromString(rec[2])
		if err != nil {
			return nil, fmt.Errorf("summary row %d: parsing total_spent: %w", i+1, err)
		}
		income, err := decimal.NewFromString(rec[3])
		if err != nil {
			return nil, fmt.Errorf("summary row %d: parsing total_income: %w", i+1, err)
		}
		count, err := strconv.Atoi(rec[4])
		if err != nil {
			return nil, fmt.Errorf("summary row %d: parsing transaction_count: %w", i+1, err)
		}
		summaries = append(summaries, MonthlySummary{
			Month:            rec[0],
			Category:         category.Label(rec[1]),
			TotalSpent:       spent,
			TotalIncome:      income,
			TransactionCount: count,
		})
	}
	return summaries, nil
}
