// Package aggregate derives filtered, sorted and summarized views from an
// in-memory expense collection. Every function is pure: inputs are never
// modified and results are freshly allocated.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// All disables the category or payment-method filter.
const All = "All"

// Mode selects how the reference date narrows the expense set.
type Mode string

const (
	ModeMonth Mode = "month"
	ModeDate  Mode = "date"
)

// Filter is the complete view state for one derivation. It is a value type;
// the With* helpers return modified copies.
type Filter struct {
	Mode Mode
	// Reference picks the month (ModeMonth) or day (ModeDate). A zero
	// reference disables period filtering.
	Reference     core.Date
	Search        string
	Category      string
	PaymentMethod string
	Sort          SortMode
}

// NewFilter returns the default view: the reference month, no search, all
// categories and payment methods, newest first.
func NewFilter(reference core.Date) Filter {
	return Filter{
		Mode:          ModeMonth,
		Reference:     reference,
		Category:      All,
		PaymentMethod: All,
		Sort:          SortDateDesc,
	}
}

func (f Filter) WithMode(m Mode) Filter {
	f.Mode = m
	return f
}

func (f Filter) WithReference(d core.Date) Filter {
	f.Reference = d
	return f
}

func (f Filter) WithSearch(s string) Filter {
	f.Search = s
	return f
}

func (f Filter) WithCategory(c string) Filter {
	f.Category = c
	return f
}

func (f Filter) WithPaymentMethod(p string) Filter {
	f.PaymentMethod = p
	return f
}

func (f Filter) WithSort(s SortMode) Filter {
	f.Sort = s
	return f
}

// Validate checks that every selector holds a known value or the All sentinel.
func (f Filter) Validate() error {
	switch f.Mode {
	case ModeMonth, ModeDate, "":
	default:
		return fmt.Errorf("%w: unknown mode %q", core.ErrInvalidFilter, f.Mode)
	}
	if !isAll(f.Category) && !core.Category(f.Category).Valid() {
		return fmt.Errorf("%w: unknown category %q", core.ErrInvalidFilter, f.Category)
	}
	if !isAll(f.PaymentMethod) && !core.PaymentMethod(f.PaymentMethod).Valid() {
		return fmt.Errorf("%w: unknown payment method %q", core.ErrInvalidFilter, f.PaymentMethod)
	}
	if f.Sort != "" && !f.Sort.Valid() {
		return fmt.Errorf("%w: unknown sort %q", core.ErrInvalidFilter, f.Sort)
	}
	return nil
}

func isAll(s string) bool {
	return s == "" || s == All
}

// InPeriod reports whether e falls in the filter's month or day. Only the
// calendar date is compared.
func (f Filter) InPeriod(e core.Expense) bool {
	if f.Reference.IsZero() {
		return true
	}
	if f.Mode == ModeDate {
		return e.Date.SameDay(f.Reference)
	}
	return e.Date.MonthKey() == f.Reference.MonthKey()
}

// Period names the span the filter covers: "2024-03" for a month,
// "2024-03-15" for a day and "" when period filtering is off.
func (f Filter) Period() string {
	if f.Reference.IsZero() {
		return ""
	}
	if f.Mode == ModeDate {
		return f.Reference.String()
	}
	return f.Reference.MonthKey().String()
}

// Matches applies the search, category and payment-method selectors.
func (f Filter) Matches(e core.Expense) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Text), needle) &&
			!strings.Contains(strings.ToLower(e.Merchant), needle) &&
			!strings.Contains(strings.ToLower(e.Note), needle) {
			return false
		}
	}
	if !isAll(f.Category) && string(e.Category) != f.Category {
		return false
	}
	if !isAll(f.PaymentMethod) && string(e.PaymentMethod) != f.PaymentMethod {
		return false
	}
	return true
}

// Select returns the expenses in the filter's period that match every
// selector, in input order.
func Select(expenses []core.Expense, f Filter) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.InPeriod(e) && f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Apply filters then sorts.
func Apply(expenses []core.Expense, f Filter) []core.Expense {
	return Sort(Select(expenses, f), f.Sort)
}

// InMonth returns the expenses dated inside month.
func InMonth(expenses []core.Expense, month core.MonthKey) []core.Expense {
	out := make([]core.Expense, 0)
	for _, e := range expenses {
		if month.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// Total sums the amounts of expenses.
func Total(expenses []core.Expense) core.Money {
	var total core.Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
