// Package classify assigns accounting categories to entries from contextual
// text, typically the subject line of the originating message.
package classify

import (
	"strings"

	"mailledger/internal/core"
)

type rule struct {
	category core.Category
	keywords []string
}

// rules is evaluated in order; the first category whose keyword set matches
// wins. The order is significant: "Loan payment due" mentions both a payment
// and a loan, and is classified Expenses because that rule comes first.
var rules = []rule{
	{core.Revenue, []string{"revenue", "sales", "income"}},
	{core.Expenses, []string{"expense", "cost", "payment"}},
	{core.Assets, []string{"asset", "inventory", "equipment"}},
	{core.Liabilities, []string{"liability", "debt", "loan"}},
	{core.Equity, []string{"equity", "capital", "investment"}},
}

// Categorize maps contextual text to an accounting category. It is a pure
// function: the text is lower-cased and tested against each rule's keywords in
// priority order, and anything that matches no rule is Uncategorized.
func Categorize(contextText string) core.Category {
	lowered := strings.ToLower(contextText)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lowered, kw) {
				return r.category
			}
		}
	}
	return core.Uncategorized
}
