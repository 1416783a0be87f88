package aggregate

import (
	"math"
	"time"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// HeatmapDays is the length of the spending heatmap window (12 weeks).
const HeatmapDays = 84

// TrendMonths is the number of months in the monthly trend.
const TrendMonths = 6

type DayTotal struct {
	Date   core.Date
	Amount core.Money
}

// Heatmap summarizes daily spending over the HeatmapDays ending today.
type Heatmap struct {
	Days            []DayTotal // oldest first
	WeekTotal       core.Money // since Sunday of the current week
	LastWeekTotal   core.Money
	MonthTotal      core.Money // since the first of the current month
	HighestDay      core.Money
	AverageDaily    core.Money
	WeekOverWeekPct int
}

// SpendingHeatmap buckets expenses by day over the window ending today.
// Expenses outside the window are ignored.
func SpendingHeatmap(expenses []core.Expense, today core.Date) Heatmap {
	start := today.AddDays(-(HeatmapDays - 1))
	byDay := make(map[string]core.Money)
	for _, e := range expenses {
		if e.Date.Before(start) || today.Before(e.Date) {
			continue
		}
		byDay[e.Date.String()] = byDay[e.Date.String()].Add(e.Amount)
	}

	weekStart := today.AddDays(-int(today.Weekday()))
	lastWeekStart := weekStart.AddDays(-7)
	monthStart := today.MonthKey().First()

	h := Heatmap{Days: make([]DayTotal, 0, HeatmapDays)}
	var windowTotal core.Money
	for d := start; !today.Before(d); d = d.AddDays(1) {
		amount := byDay[d.String()]
		h.Days = append(h.Days, DayTotal{Date: d, Amount: amount})
		windowTotal = windowTotal.Add(amount)
		if !d.Before(weekStart) {
			h.WeekTotal = h.WeekTotal.Add(amount)
		} else if !d.Before(lastWeekStart) {
			h.LastWeekTotal = h.LastWeekTotal.Add(amount)
		}
		if !d.Before(monthStart) {
			h.MonthTotal = h.MonthTotal.Add(amount)
		}
		if amount.Cents > h.HighestDay.Cents {
			h.HighestDay = amount
		}
	}

	h.AverageDaily = core.Money{Cents: int64(math.Round(float64(windowTotal.Cents) / HeatmapDays))}
	if h.LastWeekTotal.Cents > 0 {
		change := float64(h.WeekTotal.Cents-h.LastWeekTotal.Cents) / float64(h.LastWeekTotal.Cents)
		h.WeekOverWeekPct = int(math.Round(change * 100))
	}
	return h
}

type MonthTotal struct {
	Month core.MonthKey
	Total core.Money
}

type MonthlyTrend struct {
	Months         []MonthTotal // oldest first
	AverageNonZero core.Money
}

// MonthlyTotals sums spending for the months count months ending at end.
// The average only counts months with spending.
func MonthlyTotals(expenses []core.Expense, end core.MonthKey, months int) MonthlyTrend {
	trend := MonthlyTrend{Months: make([]MonthTotal, 0, months)}
	var sum core.Money
	nonZero := 0
	for i := months - 1; i >= 0; i-- {
		month := end.AddMonths(-i)
		total := Total(InMonth(expenses, month))
		trend.Months = append(trend.Months, MonthTotal{Month: month, Total: total})
		if total.Cents > 0 {
			sum = sum.Add(total)
			nonZero++
		}
	}
	if nonZero > 0 {
		trend.AverageNonZero = core.Money{Cents: int64(math.Round(float64(sum.Cents) / float64(nonZero)))}
	}
	return trend
}

// Biggest returns the most expensive expense; the earliest wins ties.
func Biggest(expenses []core.Expense) (core.Expense, bool) {
	if len(expenses) == 0 {
		return core.Expense{}, false
	}
	biggest := expenses[0]
	for _, e := range expenses[1:] {
		if e.Amount.Cents > biggest.Amount.Cents {
			biggest = e
		}
	}
	return biggest, true
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) core.Date {
	if loc != nil {
		now = now.In(loc)
	}
	return core.DateOf(now)
}
