package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/optimistic"
)

// Workspace is the local expense list of one user. Deletes remove the
// records at once and put them back if the API refuses.
type Workspace struct {
	mu       sync.Mutex
	api      *Client
	view     *optimistic.View
	lastOp   optimistic.Op
	haveLast bool
}

func NewWorkspace(api *Client) *Workspace {
	return &Workspace{api: api, view: optimistic.NewView(nil)}
}

// Refresh replaces the local list with the server's.
func (w *Workspace) Refresh(ctx context.Context, query url.Values) error {
	remote, err := w.api.ListExpenses(ctx, query)
	if err != nil {
		return err
	}
	items := make([]core.Expense, 0, len(remote))
	for _, e := range remote {
		ce, err := e.Core()
		if err != nil {
			return err
		}
		items = append(items, ce)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.view.Replace(items)
	w.haveLast = false
	return nil
}

func (w *Workspace) Expenses() []core.Expense {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view.Items()
}

// Delete removes one expense.
func (w *Workspace) Delete(ctx context.Context, id int64) error {
	return w.run(ctx, []int64{id}, func(ctx context.Context) error {
		return w.api.DeleteExpense(ctx, id)
	})
}

// DeleteMany removes the selected expenses with one bulk call.
func (w *Workspace) DeleteMany(ctx context.Context, ids []int64) error {
	return w.run(ctx, ids, func(ctx context.Context) error {
		_, err := w.api.DeleteExpenses(ctx, ids)
		return err
	})
}

func (w *Workspace) run(ctx context.Context, ids []int64, remote func(context.Context) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	op, err := optimistic.PlanDelete(w.view, ids...)
	if err != nil {
		return err
	}
	if err := optimistic.Run(ctx, w.view, op, remote); err != nil {
		return err
	}
	w.lastOp, w.haveLast = op, true
	return nil
}

// CanUndo reports whether a completed delete can still be undone.
func (w *Workspace) CanUndo() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.haveLast
}

// Undo recreates the expenses removed by the last completed delete. The
// recreated records have new ids.
func (w *Workspace) Undo(ctx context.Context) ([]core.Expense, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.haveLast {
		return nil, fmt.Errorf("nothing to undo")
	}
	restored, err := optimistic.Undo(ctx, w.view, w.lastOp, func(ctx context.Context, e core.Expense) (core.Expense, error) {
		created, err := w.api.CreateExpense(ctx, ExpenseFromCore(e))
		if err != nil {
			return core.Expense{}, err
		}
		return created.Core()
	})
	w.haveLast = false
	return restored, err
}
