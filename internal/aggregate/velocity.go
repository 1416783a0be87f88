package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// Band classifies how spending pace compares with time elapsed.
type Band string

const (
	OnTrack      Band = "on track"
	SlightlyOver Band = "slightly over pace"
	Overspending Band = "overspending ahead"
)

const (
	overspendingThreshold = 0.20
	slightlyOverThreshold = 0.05
)

// Velocity compares budget consumption with month progress.
type Velocity struct {
	DaysPassed     int
	DaysInMonth    int
	DaysRemaining  int
	PctMonthPassed float64
	PctBudgetUsed  float64
	VelocityDiff   float64
	ProjectedTotal core.Money
	Band           Band
}

// BandFor maps a velocity difference to its severity band.
func BandFor(diff float64) Band {
	switch {
	case diff > overspendingThreshold:
		return Overspending
	case diff > slightlyOverThreshold:
		return SlightlyOver
	default:
		return OnTrack
	}
}

// DaysElapsed counts the days of month that have passed as of today. Past
// months count in full and future months count zero.
func DaysElapsed(month core.MonthKey, today core.Date) int {
	current := today.MonthKey()
	switch {
	case month.Before(current):
		return month.Days()
	case current.Before(month):
		return 0
	default:
		return today.Day()
	}
}

// ComputeVelocity applies the pace formulas. A zero budget yields zero budget
// usage and zero elapsed days yield a zero projection.
func ComputeVelocity(total, monthBudget core.Money, daysPassed, daysInMonth int) Velocity {
	v := Velocity{
		DaysPassed:    daysPassed,
		DaysInMonth:   daysInMonth,
		DaysRemaining: daysInMonth - daysPassed,
	}
	if v.DaysRemaining < 0 {
		v.DaysRemaining = 0
	}
	if daysInMonth > 0 {
		v.PctMonthPassed = float64(daysPassed) / float64(daysInMonth)
	}
	if monthBudget.Cents > 0 {
		v.PctBudgetUsed = float64(total.Cents) / float64(monthBudget.Cents)
	}
	v.VelocityDiff = v.PctBudgetUsed - v.PctMonthPassed
	if daysPassed > 0 {
		projected := decimal.NewFromInt(total.Cents).
			Mul(decimal.NewFromInt(int64(daysInMonth))).
			Div(decimal.NewFromInt(int64(daysPassed))).
			Round(0)
		v.ProjectedTotal = core.Money{Cents: projected.IntPart()}
	}
	v.Band = BandFor(v.VelocityDiff)
	return v
}

// SpendVelocity computes the pace for month as seen on today.
func SpendVelocity(total, monthBudget core.Money, month core.MonthKey, today core.Date) Velocity {
	return ComputeVelocity(total, monthBudget, DaysElapsed(month, today), month.Days())
}
