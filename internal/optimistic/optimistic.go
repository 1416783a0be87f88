// Package optimistic applies local list mutations before the remote store
// confirms them. Each operation carries its tentative transition and the
// compensating transition that undoes it, both as plain data.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

var ErrNothingSelected = errors.New("no expenses selected")

// Placement puts an expense at a position in the view.
type Placement struct {
	Index   int
	Expense core.Expense
}

// Transition removes the listed ids, then inserts the placements in
// ascending index order.
type Transition struct {
	Remove []int64
	Insert []Placement
}

// Op is one two-phase mutation.
type Op struct {
	ID         uuid.UUID
	Tentative  Transition
	Compensate Transition
}

// Removed returns the expenses the operation takes out of the view, in their
// original order.
func (o Op) Removed() []core.Expense {
	out := make([]core.Expense, 0, len(o.Compensate.Insert))
	for _, p := range o.Compensate.Insert {
		out = append(out, p.Expense)
	}
	return out
}

// View is the in-memory expense list shown to the user. It is not safe for
// concurrent use.
type View struct {
	items []core.Expense
}

func NewView(items []core.Expense) *View {
	return &View{items: append([]core.Expense(nil), items...)}
}

// Items returns a copy of the current list.
func (v *View) Items() []core.Expense {
	return append([]core.Expense(nil), v.items...)
}

func (v *View) Len() int { return len(v.items) }

// Replace swaps the whole list, e.g. after a fresh fetch.
func (v *View) Replace(items []core.Expense) {
	v.items = append([]core.Expense(nil), items...)
}

// Apply performs a transition.
func (v *View) Apply(t Transition) {
	if len(t.Remove) > 0 {
		drop := make(map[int64]struct{}, len(t.Remove))
		for _, id := range t.Remove {
			drop[id] = struct{}{}
		}
		kept := v.items[:0:0]
		for _, e := range v.items {
			if _, ok := drop[e.ID]; !ok {
				kept = append(kept, e)
			}
		}
		v.items = kept
	}

	inserts := append([]Placement(nil), t.Insert...)
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].Index < inserts[j].Index })
	for _, p := range inserts {
		idx := p.Index
		if idx < 0 {
			idx = 0
		}
		if idx > len(v.items) {
			idx = len(v.items)
		}
		v.items = append(v.items, core.Expense{})
		copy(v.items[idx+1:], v.items[idx:])
		v.items[idx] = p.Expense
	}
}

// PlanDelete builds the operation removing ids from the view. Ids not in the
// view are ignored; ErrNothingSelected is returned when none are.
func PlanDelete(v *View, ids ...int64) (Op, error) {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	op := Op{ID: uuid.New()}
	for i, e := range v.items {
		if _, ok := want[e.ID]; !ok {
			continue
		}
		op.Tentative.Remove = append(op.Tentative.Remove, e.ID)
		op.Compensate.Insert = append(op.Compensate.Insert, Placement{Index: i, Expense: e})
	}
	if len(op.Tentative.Remove) == 0 {
		return Op{}, ErrNothingSelected
	}
	return op, nil
}

// Run applies the tentative transition, calls remote, and applies the
// compensating transition when remote fails. The remote error is returned.
func Run(ctx context.Context, v *View, op Op, remote func(context.Context) error) error {
	v.Apply(op.Tentative)
	if err := remote(ctx); err != nil {
		v.Apply(op.Compensate)
		return fmt.Errorf("operation %s reverted: %w", op.ID, err)
	}
	return nil
}

// Undo recreates the records a completed delete removed. Recreated records
// get new ids from create and are placed where the originals were. Records
// created before a failure stay in the view; the error reports the rest.
func Undo(ctx context.Context, v *View, op Op, create func(context.Context, core.Expense) (core.Expense, error)) ([]core.Expense, error) {
	var restored []core.Expense
	var insert []Placement
	var errs []error
	for _, p := range op.Compensate.Insert {
		e := p.Expense
		e.ID = 0
		created, err := create(ctx, e)
		if err != nil {
			errs = append(errs, fmt.Errorf("recreate %q: %w", p.Expense.Text, err))
			continue
		}
		restored = append(restored, created)
		insert = append(insert, Placement{Index: p.Index, Expense: created})
	}
	v.Apply(Transition{Insert: insert})
	return restored, errors.Join(errs...)
}
