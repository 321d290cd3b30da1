// Package taxonomy defines the fixed set of spend categories used by the
// classifier and the cashflow aggregator. Order matters: it is the
// tie-break order when two categories score identically.
package taxonomy

// Uncategorized is the bucket used for transactions that have not been
// classified yet.
const Uncategorized = "uncategorized"

type Category struct {
	Name        string
	Description string
}

var categories = []Category{
	{"food_dining", "Restaurant food delivery takeout cafe coffee shop bar dining DoorDash UberEats Grubhub"},
	{"groceries", "Grocery store supermarket produce vegetables fruits meat dairy Walmart Target Whole Foods"},
	{"gas_auto", "Gas station fuel petrol gasoline car vehicle automotive maintenance repair"},
	{"shopping", "Amazon retail online shopping ecommerce clothes electronics department store merchandise"},
	{"travel", "Airline hotel flight booking vacation trip travel transportation Uber Lyft rideshare"},
	{"entertainment", "Netflix Hulu Disney streaming subscription video music movies concerts gaming Spotify"},
	{"healthcare", "Pharmacy doctor hospital medical prescription health insurance CVS Walgreens"},
	{"services", "Government education utilities professional services electric water internet phone bill"},
	{"home", "Home improvement furniture appliances repair Lowes Home Depot IKEA"},
	{"other", "Miscellaneous general purchase uncategorized"},
}

// Categories returns the spend categories in their canonical order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether name is a known category.
func Valid(name string) bool {
	for _, c := range categories {
		if c.Name == name {
			return true
		}
	}
	return false
}
