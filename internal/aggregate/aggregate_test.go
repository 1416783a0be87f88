package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

func exp(id int64, text string, cents int64, cat core.Category, date core.Date) core.Expense {
	return core.Expense{
		ID:            id,
		Text:          text,
		Amount:        core.Money{Cents: cents},
		Category:      cat,
		Date:          date,
		PaymentMethod: core.Cash,
	}
}

func ids(expenses []core.Expense) []int64 {
	out := make([]int64, len(expenses))
	for i, e := range expenses {
		out[i] = e.ID
	}
	return out
}

func TestSelectByMonthIgnoresTimeOfDay(t *testing.T) {
	late := core.DateOf(time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC))
	early := core.DateOf(time.Date(2024, 3, 1, 0, 0, 1, 0, time.UTC))
	expenses := []core.Expense{
		exp(1, "a", 100, core.Food, early),
		exp(2, "b", 100, core.Food, late),
		exp(3, "c", 100, core.Food, core.NewDate(2024, 4, 1)),
		exp(4, "d", 100, core.Food, core.NewDate(2023, 3, 15)),
	}

	got := Select(expenses, NewFilter(core.NewDate(2024, 3, 10)))
	assert.Equal(t, []int64{1, 2}, ids(got))
}

func TestSelectByDate(t *testing.T) {
	expenses := []core.Expense{
		exp(1, "a", 100, core.Food, core.NewDate(2024, 3, 5)),
		exp(2, "b", 100, core.Food, core.NewDate(2024, 3, 6)),
	}
	f := NewFilter(core.NewDate(2024, 3, 5)).WithMode(ModeDate)
	assert.Equal(t, []int64{1}, ids(Select(expenses, f)))
}

func TestMatchesCombinesSelectors(t *testing.T) {
	day := core.NewDate(2024, 3, 5)
	coffee := exp(1, "Morning coffee", 250, core.Food, day)
	coffee.Merchant = "Starbucks"
	cab := exp(2, "Ride home", 400, core.Transport, day)
	cab.PaymentMethod = core.UPI
	cab.Note = "late night STARBUCKS run"
	rent := exp(3, "Rent", 90000, core.Bills, day)
	rent.PaymentMethod = core.BankTransfer
	expenses := []core.Expense{coffee, cab, rent}

	base := NewFilter(day)
	cases := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"no selectors", base, []int64{1, 2, 3}},
		{"search merchant and note", base.WithSearch("starbucks"), []int64{1, 2}},
		{"search description case-insensitive", base.WithSearch("RENT"), []int64{3}},
		{"category", base.WithCategory("Transport"), []int64{2}},
		{"payment", base.WithPaymentMethod("Bank Transfer"), []int64{3}},
		{"search and category", base.WithSearch("starbucks").WithCategory("Food"), []int64{1}},
		{"search and payment mismatch", base.WithSearch("rent").WithPaymentMethod("UPI"), []int64{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ids(Select(expenses, tc.filter)))
		})
	}
}

func TestFilterWithDoesNotMutate(t *testing.T) {
	base := NewFilter(core.NewDate(2024, 3, 5))
	_ = base.WithCategory("Food").WithSearch("x").WithSort(SortAmountAsc)
	assert.Equal(t, All, base.Category)
	assert.Empty(t, base.Search)
	assert.Equal(t, SortDateDesc, base.Sort)
}

func TestFilterValidate(t *testing.T) {
	base := NewFilter(core.NewDate(2024, 3, 5))
	require.NoError(t, base.Validate())
	require.NoError(t, base.WithCategory("Health").WithPaymentMethod("UPI").Validate())
	assert.ErrorIs(t, base.WithCategory("Travel").Validate(), core.ErrInvalidFilter)
	assert.ErrorIs(t, base.WithPaymentMethod("Cheque").Validate(), core.ErrInvalidFilter)
	assert.ErrorIs(t, base.WithSort("random").Validate(), core.ErrInvalidFilter)
	assert.ErrorIs(t, base.WithMode("week").Validate(), core.ErrInvalidFilter)
}

func TestSortModes(t *testing.T) {
	expenses := []core.Expense{
		exp(1, "banana", 300, core.Food, core.NewDate(2024, 3, 2)),
		exp(2, "Apple", 100, core.Food, core.NewDate(2024, 3, 3)),
		exp(3, "cherry", 200, core.Food, core.NewDate(2024, 3, 1)),
	}
	cases := map[SortMode][]int64{
		SortDateDesc:   {2, 1, 3},
		SortDateAsc:    {3, 1, 2},
		SortAmountDesc: {1, 3, 2},
		SortAmountAsc:  {2, 3, 1},
		SortNameAsc:    {2, 1, 3},
		SortNameDesc:   {3, 1, 2},
		"":             {2, 1, 3},
	}
	for mode, want := range cases {
		assert.Equal(t, want, ids(Sort(expenses, mode)), "mode %q", mode)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids(expenses), "input must not be reordered")
}

func TestSortAmountDirectionsAreReverses(t *testing.T) {
	expenses := []core.Expense{
		exp(1, "a", 500, core.Food, core.NewDate(2024, 3, 1)),
		exp(2, "b", 100, core.Food, core.NewDate(2024, 3, 1)),
		exp(3, "c", 900, core.Food, core.NewDate(2024, 3, 1)),
		exp(4, "d", 300, core.Food, core.NewDate(2024, 3, 1)),
	}
	desc := ids(Sort(expenses, SortAmountDesc))
	asc := ids(Sort(expenses, SortAmountAsc))
	require.Len(t, asc, len(desc))
	for i := range desc {
		assert.Equal(t, desc[i], asc[len(asc)-1-i])
	}
}

func TestSortIsStable(t *testing.T) {
	day := core.NewDate(2024, 3, 1)
	expenses := []core.Expense{
		exp(1, "same", 100, core.Food, day),
		exp(2, "same", 100, core.Food, day),
		exp(3, "same", 100, core.Food, day),
	}
	for _, mode := range SortModes {
		assert.Equal(t, []int64{1, 2, 3}, ids(Sort(expenses, mode)), "mode %q", mode)
	}
}

func TestApplyFiltersThenSorts(t *testing.T) {
	expenses := []core.Expense{
		exp(1, "a", 100, core.Food, core.NewDate(2024, 3, 1)),
		exp(2, "b", 300, core.Food, core.NewDate(2024, 3, 2)),
		exp(3, "c", 200, core.Transport, core.NewDate(2024, 3, 3)),
		exp(4, "d", 999, core.Food, core.NewDate(2024, 2, 3)),
	}
	f := NewFilter(core.NewDate(2024, 3, 1)).WithCategory("Food").WithSort(SortAmountDesc)
	assert.Equal(t, []int64{2, 1}, ids(Apply(expenses, f)))
}

func TestCategoryBreakdownKeepsFirstEncounterOrder(t *testing.T) {
	day := core.NewDate(2024, 3, 1)
	got := CategoryBreakdown([]core.Expense{
		exp(1, "a", 1000, core.Food, day),
		exp(2, "b", 500, core.Transport, day),
		exp(3, "c", 2000, core.Food, day),
	})
	assert.Equal(t, []CategoryTotal{
		{Category: core.Food, Amount: core.Money{Cents: 3000}},
		{Category: core.Transport, Amount: core.Money{Cents: 500}},
	}, got)
}

func TestCategoryBreakdownCapsAtFive(t *testing.T) {
	day := core.NewDate(2024, 3, 1)
	var expenses []core.Expense
	// Smallest amounts first so a magnitude sort would pick differently.
	for i, c := range core.Categories {
		expenses = append(expenses, exp(int64(i), "x", int64(i+1), c, day))
	}
	got := CategoryBreakdown(expenses)
	require.Len(t, got, MaxBreakdownCategories)
	for i := range got {
		assert.Equal(t, core.Categories[i], got[i].Category)
	}
	assert.Empty(t, CategoryBreakdown(nil))
}

func TestTotal(t *testing.T) {
	day := core.NewDate(2024, 3, 1)
	assert.Equal(t, int64(350), Total([]core.Expense{exp(1, "a", 100, core.Food, day), exp(2, "b", 250, core.Food, day)}).Cents)
	assert.Zero(t, Total(nil).Cents)
}

func TestFilter_Period(t *testing.T) {
	day := core.NewDate(2024, 3, 9)
	assert.Equal(t, "2024-03", NewFilter(day).Period())
	assert.Equal(t, "2024-03-09", NewFilter(day).WithMode(ModeDate).Period())
	assert.Equal(t, "", NewFilter(core.Date{}).Period())
}
