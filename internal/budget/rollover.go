// Package budget turns configured monthly budgets into the caps used for
// warnings, optionally carrying last month's underspend forward.
package budget

import (
	"github.com/sindhu2707/expense-tracker/internal/aggregate"
	"github.com/sindhu2707/expense-tracker/internal/core"
)

// Caps maps each category to a budget limit.
type Caps map[core.Category]core.Money

// Total sums all caps; it is the month budget used for spend velocity.
func (c Caps) Total() core.Money {
	var total core.Money
	for _, amount := range c {
		total = total.Add(amount)
	}
	return total
}

// Configured resolves the budget in force for month per category: the row
// saved for that month, otherwise the latest row saved for an earlier month.
// Categories with neither are absent (cap 0).
func Configured(budgets []core.Budget, month core.MonthKey) Caps {
	caps := make(Caps)
	chosen := make(map[core.Category]core.MonthKey)
	for _, b := range budgets {
		if month.Before(b.Month) {
			continue
		}
		prev, seen := chosen[b.Category]
		if seen && !prev.Before(b.Month) {
			continue
		}
		chosen[b.Category] = b.Month
		caps[b.Category] = b.Amount
	}
	return caps
}

// Rollover returns base plus whatever part of base went unspent last month.
// A zero base stays zero.
func Rollover(base, prevSpent core.Money) core.Money {
	if base.Cents <= 0 {
		return core.Money{}
	}
	unspent := base.Sub(prevSpent)
	if unspent.Cents < 0 {
		unspent = core.Money{}
	}
	return base.Add(unspent)
}

// EffectiveCaps derives the caps for month from the configured caps and the
// full expense history. With rollover disabled the configured caps are
// returned unchanged. The result always has an entry for every category.
func EffectiveCaps(configured Caps, expenses []core.Expense, month core.MonthKey, rollover bool) Caps {
	effective := make(Caps, len(core.Categories))
	if !rollover {
		for _, c := range core.Categories {
			effective[c] = configured[c]
		}
		return effective
	}

	prevSpent := aggregate.SpentByCategory(aggregate.InMonth(expenses, month.Prev()))
	for _, c := range core.Categories {
		effective[c] = Rollover(configured[c], prevSpent[c])
	}
	return effective
}
