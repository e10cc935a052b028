package category

import "strings"

// Rule maps a literal keyword to a category. Matching is case-insensitive
// substring containment against the transaction description.
type Rule struct {
	Keyword  string
	Category Label
}

// DefaultRules is the ordered rule table for high-confidence merchant patterns.
// Order is a committed contract: the first matching keyword wins, so entries
// must not be reordered without versioning existing categorized exports.
var DefaultRules = []Rule{
	// Food & groceries
	{"ZOMATO", "Food:Restaurants"},
	{"SWIGGY", "Food:Restaurants"},
	{"GROCERY", "Food:Groceries"},
	{"BIG BASKET", "Food:Groceries"},
	// Shopping
	{"AMAZON", "Shopping:General"},
	{"FLIPKART", "Shopping:General"},
	// Subscriptions & bills
	{"NETFLIX", "Bills:Subscription"},
	{"SPOTIFY", "Bills:Subscription"},
	{"CREDIT CARD BILL", "Bills:Credit Card"},
	{"INSURANCE", "Bills:Insurance"},
	{"ELECTRICITY", "Bills:Utilities"},
	// Travel
	{"UBER", "Travel:Transport"},
	{"OLA", "Travel:Transport"},
	{"MAKEMYTRIP", "Travel:Flights"},
	{"IRCTC", "Travel:Transport"},
	// Income
	{"UPI REFUND", "Income:Other"},
	{"DIVIDEND", "Income:Investment"},
	{"SALARY", "Income:Salary"},
	// Other
	{"ATM WDL", "Other:ATM Withdrawal"},
	{"FEES", "Education:Tuition"},
	{"SCHOOL", "Education:Tuition"},
	{"COLLEGE", "Education:Tuition"},
	{"TUITION", "Education:Tuition"},
	{"RENT", "Bills:Rent"},
}

// matchRules returns the category of the first rule whose keyword occurs in
// the description, or false when no rule matches.
func matchRules(rules []Rule, description string) (Label, bool) {
	desc := strings.ToLower(description)
	for _, r := range rules {
		if strings.Contains(desc, strings.ToLower(r.Keyword)) {
			return r.Category, true
		}
	}
	return "", false
}
