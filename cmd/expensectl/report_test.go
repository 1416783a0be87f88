package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sindhu2707/expense-tracker/internal/aggregate"
	"github.com/sindhu2707/expense-tracker/internal/budget"
	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/services"
)

func TestRenderReport(t *testing.T) {
	biggest := core.Expense{Text: "Rent", Amount: core.Money{Cents: 50000}, Date: core.NewDate(2024, 3, 1)}
	d := services.Dashboard{
		Currency: "USD",
		Month:    core.NewMonthKey(2024, time.March),
		Expenses: []core.Expense{biggest},
		Total:    core.Money{Cents: 50000},
		Breakdown: []aggregate.CategoryTotal{
			{Category: core.Bills, Amount: core.Money{Cents: 50000}},
		},
		Velocity: aggregate.Velocity{PctBudgetUsed: 0.5, PctMonthPassed: 0.25, Band: aggregate.Overspending},
		Budgets: []budget.Status{
			{Category: core.Bills, Cap: core.Money{Cents: 60000}, Spent: core.Money{Cents: 50000}, Percent: 83, Level: budget.LevelWarning, Notice: budget.NoticeRunningLow},
			{Category: core.Health},
		},
		Trend: aggregate.MonthlyTrend{
			Months:         []aggregate.MonthTotal{{Month: core.NewMonthKey(2024, time.March), Total: core.Money{Cents: 50000}}},
			AverageNonZero: core.Money{Cents: 50000},
		},
		Biggest: &biggest,
	}

	var buf bytes.Buffer
	renderReport(&buf, d)
	out := buf.String()

	assert.Contains(t, out, "Expenses for March 2024 (USD)")
	assert.Contains(t, out, "$500.00 across 1 expenses")
	assert.Contains(t, out, "overspending ahead")
	assert.Contains(t, out, "50% of budget, 25% of month")
	assert.Contains(t, out, "Rent $500.00 on 2024-03-01")
	assert.Contains(t, out, "$500.00 / $600.00")
	assert.Contains(t, out, budget.NoticeRunningLow)
	assert.NotContains(t, out, string(core.Health))
	assert.Contains(t, out, "2024-03")
}

func TestRenderReport_AllTime(t *testing.T) {
	var buf bytes.Buffer
	renderReport(&buf, services.Dashboard{Currency: "EUR"})
	out := buf.String()

	assert.Contains(t, out, "All expenses (EUR)")
	assert.NotContains(t, out, "By category")
	assert.NotContains(t, out, "Budgets")
	assert.NotContains(t, out, "Biggest")
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 100))
	assert.Equal(t, "", bar(10, 0))
	assert.Len(t, []rune(bar(100, 100)), barWidth)
	assert.Len(t, []rune(bar(1, 1000)), 1)
}
