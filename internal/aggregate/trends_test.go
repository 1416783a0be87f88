package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

func TestSpendingHeatmap(t *testing.T) {
	// Wednesday 2024-03-13: week starts Sunday 2024-03-10.
	today := core.NewDate(2024, 3, 13)
	expenses := []core.Expense{
		exp(1, "this week", 3000, core.Food, core.NewDate(2024, 3, 11)),
		exp(2, "this week", 1000, core.Food, core.NewDate(2024, 3, 13)),
		exp(3, "last week", 2000, core.Food, core.NewDate(2024, 3, 4)),
		exp(4, "last month", 5000, core.Food, core.NewDate(2024, 2, 20)),
		exp(5, "too old", 99999, core.Food, core.NewDate(2023, 11, 1)),
		exp(6, "future", 99999, core.Food, core.NewDate(2024, 3, 20)),
	}

	h := SpendingHeatmap(expenses, today)
	require.Len(t, h.Days, HeatmapDays)
	assert.Equal(t, "2023-12-21", h.Days[0].Date.String())
	assert.Equal(t, today.String(), h.Days[HeatmapDays-1].Date.String())

	assert.Equal(t, int64(4000), h.WeekTotal.Cents)
	assert.Equal(t, int64(2000), h.LastWeekTotal.Cents)
	assert.Equal(t, int64(6000), h.MonthTotal.Cents)
	assert.Equal(t, int64(5000), h.HighestDay.Cents)
	assert.Equal(t, 100, h.WeekOverWeekPct)
	assert.Equal(t, int64(131), h.AverageDaily.Cents) // 11000 / 84
}

func TestSpendingHeatmapNoLastWeek(t *testing.T) {
	h := SpendingHeatmap([]core.Expense{exp(1, "x", 100, core.Food, core.NewDate(2024, 3, 13))}, core.NewDate(2024, 3, 13))
	assert.Zero(t, h.WeekOverWeekPct)
}

func TestMonthlyTotals(t *testing.T) {
	expenses := []core.Expense{
		exp(1, "a", 1000, core.Food, core.NewDate(2024, 3, 1)),
		exp(2, "b", 3000, core.Food, core.NewDate(2024, 1, 15)),
		exp(3, "c", 500, core.Food, core.NewDate(2023, 9, 30)), // outside window
	}
	trend := MonthlyTotals(expenses, core.NewMonthKey(2024, 3), TrendMonths)
	require.Len(t, trend.Months, TrendMonths)
	assert.Equal(t, "2023-10", trend.Months[0].Month.String())
	assert.Equal(t, "2024-03", trend.Months[5].Month.String())
	assert.Equal(t, int64(3000), trend.Months[3].Total.Cents)
	assert.Equal(t, int64(2000), trend.AverageNonZero.Cents)

	empty := MonthlyTotals(nil, core.NewMonthKey(2024, 3), TrendMonths)
	assert.Zero(t, empty.AverageNonZero.Cents)
}

func TestBiggest(t *testing.T) {
	_, ok := Biggest(nil)
	assert.False(t, ok)

	day := core.NewDate(2024, 3, 1)
	b, ok := Biggest([]core.Expense{
		exp(1, "a", 100, core.Food, day),
		exp(2, "b", 900, core.Food, day),
		exp(3, "c", 900, core.Food, day),
	})
	require.True(t, ok)
	assert.Equal(t, int64(2), b.ID)
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-04-01", Today(now, loc).String())
	assert.Equal(t, "2024-03-31", Today(now, nil).String())
}
