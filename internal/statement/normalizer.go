package statement

import "strings"

// Canonical column names produced by normalization.
const (
	ColDate        = "date"
	ColDescription = "description"
	ColDebit       = "debit_amount"
	ColCredit      = "credit_amount"
	ColBalance     = "balance"
)

// canonicalColumns is the fixed output column order.
var canonicalColumns = []string{ColDate, ColDescription, ColDebit, ColCredit, ColBalance}

// canonicalColumn maps a heterogeneous source column name onto the canonical
// schema. Rules apply in priority order and the first substring match wins;
// names matching nothing report false and are dropped from the normalized
// table.
func canonicalColumn(name string) (string, bool) {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "date"):
		return ColDate, true
	case strings.Contains(n, "narration"), strings.Contains(n, "description"):
		return ColDescription, true
	case strings.Contains(n, "withdraw"), strings.Contains(n, "debit"):
		return ColDebit, true
	case strings.Contains(n, "deposit"), strings.Contains(n, "credit"):
		return ColCredit, true
	case strings.Contains(n, "balance"):
		return ColBalance, true
	default:
		return "", false
	}
}

// Table is a normalized transaction table: Columns is always the canonical
// set in canonical order, Rows hold the corresponding cell text with missing
// columns synthesized empty.
type Table struct {
	Columns []string
	Rows    [][]string
}

// normalize maps a raw header row plus data rows onto the canonical schema.
// Row order and cell values are preserved. When two source columns claim the
// same canonical name the first one wins and later claimants are dropped.
// This stage cannot fail: a layout with no recognizable columns yields a
// table of empty cells, which row admission downstream turns into the
// terminal no-usable-rows outcome.
func normalize(headers []string, rows [][]string) *Table {
	// source column index per canonical name, first claimant wins
	sources := make(map[string]int, len(canonicalColumns))
	for i, h := range headers {
		if canon, ok := canonicalColumn(h); ok {
			if _, claimed := sources[canon]; !claimed {
				sources[canon] = i
			}
		}
	}

	out := &Table{Columns: canonicalColumns, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		cells := make([]string, len(canonicalColumns))
		for ci, canon := range canonicalColumns {
			if si, ok := sources[canon]; ok && si < len(row) {
				cells[ci] = row[si]
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}
