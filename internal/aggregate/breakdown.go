package aggregate

import "github.com/sindhu2707/expense-tracker/internal/core"

// MaxBreakdownCategories caps the category breakdown.
const MaxBreakdownCategories = 5

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category core.Category
	Amount   core.Money
}

// CategoryBreakdown sums amounts per category and keeps the first
// MaxBreakdownCategories categories in the order they are first encountered.
// The order is not by magnitude.
func CategoryBreakdown(expenses []core.Expense) []CategoryTotal {
	index := make(map[core.Category]int)
	totals := make([]CategoryTotal, 0, MaxBreakdownCategories)
	for _, e := range expenses {
		i, seen := index[e.Category]
		if !seen {
			i = len(totals)
			index[e.Category] = i
			totals = append(totals, CategoryTotal{Category: e.Category})
		}
		totals[i].Amount = totals[i].Amount.Add(e.Amount)
	}
	if len(totals) > MaxBreakdownCategories {
		totals = totals[:MaxBreakdownCategories]
	}
	return totals
}

// SpentByCategory sums every expense per category.
func SpentByCategory(expenses []core.Expense) map[core.Category]core.Money {
	spent := make(map[core.Category]core.Money)
	for _, e := range expenses {
		spent[e.Category] = spent[e.Category].Add(e.Amount)
	}
	return spent
}
