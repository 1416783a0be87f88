package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

func money(units int64) core.Money {
	return core.Money{Cents: units * 100}
}

func TestRollover(t *testing.T) {
	cases := []struct {
		name            string
		base, prevSpent int64
		want            int64
	}{
		{"underspent", 100, 40, 160},
		{"overspent", 100, 150, 100},
		{"exactly spent", 100, 100, 100},
		{"nothing spent", 100, 0, 200},
		{"no base", 0, 0, 0},
		{"no base with spending", 0, 75, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, money(tc.want), Rollover(money(tc.base), money(tc.prevSpent)))
		})
	}
}

func TestConfiguredCarriesForward(t *testing.T) {
	budgets := []core.Budget{
		{Category: core.Food, Amount: money(200), Month: core.NewMonthKey(2024, 3)},
		{Category: core.Food, Amount: money(150), Month: core.NewMonthKey(2024, 1)},
		{Category: core.Bills, Amount: money(900), Month: core.NewMonthKey(2024, 5)},
		{Category: core.Health, Amount: money(0), Month: core.NewMonthKey(2024, 2)},
	}

	april := Configured(budgets, core.NewMonthKey(2024, 4))
	assert.Equal(t, money(200), april[core.Food])
	_, hasBills := april[core.Bills]
	assert.False(t, hasBills, "future budgets do not apply")
	assert.Equal(t, money(0), april[core.Health])

	feb := Configured(budgets, core.NewMonthKey(2024, 2))
	assert.Equal(t, money(150), feb[core.Food])
}

func TestEffectiveCapsDisabledReturnsConfigured(t *testing.T) {
	configured := Caps{core.Food: money(200)}
	expenses := []core.Expense{{Category: core.Food, Amount: money(50), Date: core.NewDate(2024, 2, 10)}}

	caps := EffectiveCaps(configured, expenses, core.NewMonthKey(2024, 3), false)
	require.Len(t, caps, len(core.Categories))
	assert.Equal(t, money(200), caps[core.Food])
	assert.Equal(t, money(0), caps[core.Transport])
}

func TestEffectiveCapsUsesPriorCalendarMonthOnly(t *testing.T) {
	configured := Caps{core.Food: money(100), core.Transport: money(100)}
	expenses := []core.Expense{
		{Category: core.Food, Amount: money(40), Date: core.NewDate(2024, 2, 29)},
		{Category: core.Food, Amount: money(500), Date: core.NewDate(2024, 1, 31)},
		{Category: core.Food, Amount: money(500), Date: core.NewDate(2024, 3, 1)},
		{Category: core.Transport, Amount: money(150), Date: core.NewDate(2024, 2, 1)},
		{Category: core.Shopping, Amount: money(10), Date: core.NewDate(2024, 2, 1)},
	}
	caps := EffectiveCaps(configured, expenses, core.NewMonthKey(2024, 3), true)
	assert.Equal(t, money(160), caps[core.Food])
	assert.Equal(t, money(100), caps[core.Transport])
	assert.Equal(t, money(0), caps[core.Shopping], "rollover never creates a budget")
	assert.Equal(t, money(260), caps.Total())
}

func TestEffectiveCapsJanuaryLooksAtDecember(t *testing.T) {
	configured := Caps{core.Food: money(100)}
	expenses := []core.Expense{{Category: core.Food, Amount: money(30), Date: core.NewDate(2023, 12, 31)}}
	caps := EffectiveCaps(configured, expenses, core.NewMonthKey(2024, 1), true)
	assert.Equal(t, money(170), caps[core.Food])
}

func TestRolloverEndToEnd(t *testing.T) {
	budgets := []core.Budget{{Category: core.Food, Amount: money(200), Month: core.NewMonthKey(2024, 3)}}
	expenses := []core.Expense{
		{Category: core.Food, Amount: money(50), Date: core.NewDate(2024, 3, 5)},
		{Category: core.Food, Amount: money(20), Date: core.NewDate(2024, 4, 2)},
	}

	march := core.NewMonthKey(2024, 3)
	marchCaps := EffectiveCaps(Configured(budgets, march), expenses, march, false)
	assert.Equal(t, money(200), marchCaps[core.Food])

	april := core.NewMonthKey(2024, 4)
	aprilCaps := EffectiveCaps(Configured(budgets, april), expenses, april, true)
	assert.Equal(t, money(350), aprilCaps[core.Food])
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name         string
		limit, spent int64
		level        Level
		notice       string
		over         bool
	}{
		{"no cap", 0, 40, LevelOK, "", false},
		{"comfortable", 100, 50, LevelOK, "", false},
		{"warning band", 100, 70, LevelWarning, "", false},
		{"running low", 100, 80, LevelWarning, NoticeRunningLow, false},
		{"danger", 100, 95, LevelDanger, NoticeRunningLow, false},
		{"maxed", 100, 100, LevelDanger, NoticeMaxedOut, false},
		{"over", 100, 130, LevelDanger, NoticeOver, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Evaluate(core.Food, money(tc.limit), money(tc.spent))
			assert.Equal(t, tc.level, s.Level)
			assert.Equal(t, tc.notice, s.Notice)
			assert.Equal(t, tc.over, s.Over)
			assert.LessOrEqual(t, s.Percent, 100.0)
		})
	}

	over := Evaluate(core.Food, money(100), money(130))
	assert.Equal(t, money(30), over.OverBy)
	assert.Zero(t, over.Remaining.Cents)

	under := Evaluate(core.Food, money(100), money(30))
	assert.Equal(t, money(70), under.Remaining)
}

func TestStatusesCoverEveryCategory(t *testing.T) {
	month := core.NewMonthKey(2024, 3)
	expenses := []core.Expense{
		{Category: core.Food, Amount: money(90), Date: core.NewDate(2024, 3, 2)},
		{Category: core.Food, Amount: money(90), Date: core.NewDate(2024, 2, 2)},
	}
	statuses := Statuses(Caps{core.Food: money(100)}, expenses, month)
	require.Len(t, statuses, len(core.Categories))
	assert.Equal(t, core.Food, statuses[0].Category)
	assert.Equal(t, money(90), statuses[0].Spent)
	assert.Equal(t, LevelDanger, statuses[0].Level)
}
