package aggregate

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// SortMode names one of the supported orderings.
type SortMode string

const (
	SortDateDesc   SortMode = "date-desc"
	SortDateAsc    SortMode = "date-asc"
	SortAmountDesc SortMode = "amount-desc"
	SortAmountAsc  SortMode = "amount-asc"
	SortNameAsc    SortMode = "name-asc"
	SortNameDesc   SortMode = "name-desc"
)

// SortModes lists every ordering; the first is the default.
var SortModes = []SortMode{SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc, SortNameAsc, SortNameDesc}

func (s SortMode) Valid() bool {
	for _, m := range SortModes {
		if s == m {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy. Unknown or empty modes sort by date,
// newest first. Names compare with English collation.
func Sort(expenses []core.Expense, mode SortMode) []core.Expense {
	out := make([]core.Expense, len(expenses))
	copy(out, expenses)

	var less func(a, b core.Expense) bool
	switch mode {
	case SortDateAsc:
		less = func(a, b core.Expense) bool { return a.Date.Before(b.Date) }
	case SortAmountDesc:
		less = func(a, b core.Expense) bool { return a.Amount.Cents > b.Amount.Cents }
	case SortAmountAsc:
		less = func(a, b core.Expense) bool { return a.Amount.Cents < b.Amount.Cents }
	case SortNameAsc, SortNameDesc:
		col := collate.New(language.English)
		dir := 1
		if mode == SortNameDesc {
			dir = -1
		}
		less = func(a, b core.Expense) bool { return dir*col.CompareString(a.Text, b.Text) < 0 }
	default:
		less = func(a, b core.Expense) bool { return b.Date.Before(a.Date) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
