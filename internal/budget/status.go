package budget

import (
	"github.com/sindhu2707/expense-tracker/internal/aggregate"
	"github.com/sindhu2707/expense-tracker/internal/core"
)

// Level is the severity color of a budget bar.
type Level string

const (
	LevelOK      Level = "ok"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

const (
	warningPercent    = 65
	dangerPercent     = 90
	runningLowPercent = 75
)

// Notices shown under a budget bar.
const (
	NoticeOver       = "over budget"
	NoticeMaxedOut   = "maxed out"
	NoticeRunningLow = "running low"
)

// Status describes spending against one category cap.
type Status struct {
	Category  core.Category
	Cap       core.Money
	Spent     core.Money
	Remaining core.Money
	// Percent is spent/cap*100 capped at 100; 0 when no cap is set.
	Percent float64
	Over    bool
	OverBy  core.Money
	Level   Level
	Notice  string
}

// Statuses evaluates every category against caps using the expenses of month.
func Statuses(caps Caps, expenses []core.Expense, month core.MonthKey) []Status {
	spent := aggregate.SpentByCategory(aggregate.InMonth(expenses, month))
	out := make([]Status, 0, len(core.Categories))
	for _, c := range core.Categories {
		out = append(out, Evaluate(c, caps[c], spent[c]))
	}
	return out
}

// Evaluate builds the status of a single category.
func Evaluate(category core.Category, limit, spent core.Money) Status {
	s := Status{Category: category, Cap: limit, Spent: spent, Level: LevelOK}
	if limit.Cents > 0 {
		s.Percent = float64(spent.Cents) / float64(limit.Cents) * 100
		if s.Percent > 100 {
			s.Percent = 100
		}
		s.Over = spent.Cents > limit.Cents
	}
	if s.Over {
		s.OverBy = spent.Sub(limit)
	} else if limit.Cents > spent.Cents {
		s.Remaining = limit.Sub(spent)
	}

	switch {
	case s.Percent >= dangerPercent:
		s.Level = LevelDanger
	case s.Percent >= warningPercent:
		s.Level = LevelWarning
	}

	switch {
	case s.Over:
		s.Notice = NoticeOver
	case s.Percent >= 100:
		s.Notice = NoticeMaxedOut
	case s.Percent >= runningLowPercent:
		s.Notice = NoticeRunningLow
	}
	return s
}
