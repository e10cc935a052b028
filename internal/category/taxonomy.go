// Package category assigns taxonomy labels to transaction descriptions using a
// two-tier pipeline: an ordered keyword rule table first, then an AI fallback
// constrained to the fixed label set.
package category

import "strings"

// Label is a category from the fixed taxonomy.
type Label string

// Other is the catch-all label. Every degraded or unrecognized classification
// resolves to it.
const Other Label = "Other"

// Taxonomy is the closed set of category labels, grouped by domain prefix.
// Classifier output is always a member of this set.
var Taxonomy = []Label{
	"Income:Salary", "Income:Bonus", "Income:Investment", "Income:Rental", "Income:Interest", "Income:Other",
	"Bills:Rent", "Bills:Utilities", "Bills:Phone", "Bills:Internet", "Bills:Subscription", "Bills:Credit Card", "Bills:Insurance",
	"Food:Groceries", "Food:Restaurants", "Food:Coffee",
	"Shopping:Apparel", "Shopping:Electronics", "Shopping:HomeGoods", "Shopping:General",
	"Travel:Flights", "Travel:Accommodation", "Travel:Transport",
	"Entertainment:Movies", "Entertainment:Concerts", "Entertainment:Streaming",
	"Healthcare:Doctor", "Healthcare:Pharmacy",
	"Investments:Equity", "Investments:MutualFund", "Investments:Crypto",
	"Education:Tuition", "Education:Books",
	"Personal:Fitness", "Personal:Beauty",
	"Other:ATM Withdrawal", "Other:Bank Fee", "Other:Transfer", Other,
}

var taxonomySet = func() map[Label]bool {
	set := make(map[Label]bool, len(Taxonomy))
	for _, l := range Taxonomy {
		set[l] = true
	}
	return set
}()

// Valid reports whether l is a member of the taxonomy.
func Valid(l Label) bool {
	return taxonomySet[l]
}

// Normalize maps a raw label string onto the taxonomy: exact members pass
// through, anything else (including empty or free text) becomes Other.
func Normalize(raw string) Label {
	l := Label(strings.TrimSpace(raw))
	if Valid(l) {
		return l
	}
	return Other
}
