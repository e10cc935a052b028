package statement

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// amountScrub removes everything but digits and the decimal point, so
// currency symbols, thousands separators and stray OCR noise never reach the
// numeric parser.
var amountScrub = regexp.MustCompile(`[^0-9.]`)

// cleanAmount coerces raw amount text to a non-negative decimal. Empty and
// unparseable values become zero rather than dropping the row: numeric noise
// is lossy, not rejecting.
func cleanAmount(raw string) decimal.Decimal {
	scrubbed := amountScrub.ReplaceAllString(raw, "")
	if scrubbed == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(scrubbed)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// cleanBalance is like cleanAmount but keeps absence observable: empty or
// unparseable balances come back invalid instead of zero.
func cleanBalance(raw string) decimal.NullDecimal {
	scrubbed := amountScrub.ReplaceAllString(raw, "")
	if scrubbed == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(scrubbed)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// dateLayouts is tried in order. Indian bank exports are day-first, so
// day-first layouts come before ISO and the month-first last resort.
var dateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"2-1-2006",
	"2/1/2006",
	"02-01-06",
	"02/01/06",
	"2006-01-02",
	"2006/01/02",
	"02 Jan 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"02.01.2006",
	"01/02/2006",
}

// parseDate parses statement date text, preferring day-first interpretations.
func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// clean converts a normalized table into admitted transactions. A row is
// admitted only when its date parses and its description is non-empty; the
// second return is the count of rows dropped by that rule. Admitted rows have
// no category yet.
func clean(t *Table) ([]Transaction, int) {
	txs := make([]Transaction, 0, len(t.Rows))
	dropped := 0
	for _, row := range t.Rows {
		date, ok := parseDate(row[0])
		desc := strings.TrimSpace(row[1])
		if !ok || desc == "" {
			dropped++
			continue
		}
		txs = append(txs, Transaction{
			Date:        date,
			Description: desc,
			Debit:       cleanAmount(row[2]),
			Credit:      cleanAmount(row[3]),
			Balance:     cleanBalance(row[4]),
			Month:       date.Format(MonthLayout),
		})
	}
	return txs, dropped
}
