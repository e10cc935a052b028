package statement

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/RishulGupta/Finance-Coach-AI/internal/category"
)

type summaryKey struct {
	month    string
	category category.Label
}

// aggregate folds categorized transactions into one MonthlySummary per
// observed (month, category) pair. Unobserved combinations are never
// materialized. Output is sorted by month then category so re-runs over the
// same input are byte-identical.
func aggregate(txs []Transaction) []MonthlySummary {
	groups := make(map[summaryKey]*MonthlySummary)
	for _, tx := range txs {
		key := summaryKey{month: tx.Month, category: tx.Category}
		s, ok := groups[key]
		if !ok {
			s = &MonthlySummary{
				Month:       tx.Month,
				Category:    tx.Category,
				TotalSpent:  decimal.Zero,
				TotalIncome: decimal.Zero,
			}
			groups[key] = s
		}
		s.TotalSpent = s.TotalSpent.Add(tx.Debit)
		s.TotalIncome = s.TotalIncome.Add(tx.Credit)
		s.TransactionCount++
	}

	out := make([]MonthlySummary, 0, len(groups))
	for _, s := range groups {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].Category < out[j].Category
	})
	return out
}
