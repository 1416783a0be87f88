package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// MemoryRepository keeps everything in maps. It backs tests and the
// "memory" data backend; nothing survives a restart.
type MemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	users    map[int64]core.User
	expenses map[int64]core.Expense
	budgets  map[int64]core.Budget
	goals    map[int64]core.Goal
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    make(map[int64]core.User),
		expenses: make(map[int64]core.Expense),
		budgets:  make(map[int64]core.Budget),
		goals:    make(map[int64]core.Goal),
	}
}

func (r *MemoryRepository) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *MemoryRepository) Ping(context.Context) error { return nil }
func (r *MemoryRepository) Close() error { return nil }

func cloneExpense(e core.Expense) core.Expense {
	e.Tags = append([]string(nil), e.Tags...)
	e.Splits = append([]core.SplitShare(nil), e.Splits...)
	if len(e.Tags) == 0 {
		e.Tags = nil
	}
	if len(e.Splits) == 0 {
		e.Splits = nil
	}
	return e
}

// Users

func (r *MemoryRepository) CreateUser(_ context.Context, u core.User) (core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return core.User{}, ErrConflict
		}
	}
	u.ID = r.id()
	u.CreatedAt = now()
	r.users[u.ID] = u
	return u, nil
}

func (r *MemoryRepository) UserByEmail(_ context.Context, email string) (core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return core.User{}, ErrNotFound
}

func (r *MemoryRepository) UserByID(_ context.Context, id int64) (core.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return core.User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepository) UpdateUsername(_ context.Context, id int64, username string) (core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return core.User{}, ErrNotFound
	}
	u.Username = username
	r.users[id] = u
	return u, nil
}

func (r *MemoryRepository) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	r.users[id] = u
	return nil
}

func (r *MemoryRepository) DeleteUser(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	for k, e := range r.expenses {
		if e.UserID == id {
			delete(r.expenses, k)
		}
	}
	for k, b := range r.budgets {
		if b.UserID == id {
			delete(r.budgets, k)
		}
	}
	for k, g := range r.goals {
		if g.UserID == id {
			delete(r.goals, k)
		}
	}
	return nil
}

// Expenses

func (r *MemoryRepository) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e = cloneExpense(e)
	e.ID = r.id()
	e.CreatedAt = now()
	r.expenses[e.ID] = e
	return cloneExpense(e), nil
}

func (r *MemoryRepository) GetExpense(_ context.Context, userID, id int64) (core.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.expenses[id]
	if !ok || e.UserID != userID {
		return core.Expense{}, ErrNotFound
	}
	return cloneExpense(e), nil
}

func (r *MemoryRepository) ListExpenses(_ context.Context, userID int64) ([]core.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Expense
	for _, e := range r.expenses {
		if e.UserID == userID {
			out = append(out, cloneExpense(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[j].Date.Before(out[i].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.expenses[e.ID]
	if !ok || existing.UserID != e.UserID {
		return core.Expense{}, ErrNotFound
	}
	e = cloneExpense(e)
	e.CreatedAt = existing.CreatedAt
	e.LastOccurrence = existing.LastOccurrence
	r.expenses[e.ID] = e
	return cloneExpense(e), nil
}

func (r *MemoryRepository) DeleteExpense(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(r.expenses, id)
	return nil
}

func (r *MemoryRepository) DeleteExpenses(_ context.Context, userID int64, ids []int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []int64
	for _, id := range ids {
		if e, ok := r.expenses[id]; ok && e.UserID == userID {
			delete(r.expenses, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

func (r *MemoryRepository) ListRecurring(context.Context) ([]core.Expense, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Expense
	for _, e := range r.expenses {
		if e.IsRecurring {
			out = append(out, cloneExpense(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) MarkOccurred(_ context.Context, id int64, on core.Date) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok {
		return ErrNotFound
	}
	e.LastOccurrence = on
	r.expenses[id] = e
	return nil
}

// Budgets

func (r *MemoryRepository) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.budgets {
		if existing.UserID == b.UserID && existing.Category == b.Category && existing.Month == b.Month {
			b.ID = id
			r.budgets[id] = b
			return b, false, nil
		}
	}
	b.ID = r.id()
	r.budgets[b.ID] = b
	return b, true, nil
}

func (r *MemoryRepository) ListBudgets(_ context.Context, userID int64) ([]core.Budget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Budget
	for _, b := range r.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month.Before(out[j].Month)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) DeleteBudget(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.budgets[id]
	if !ok || b.UserID != userID {
		return ErrNotFound
	}
	delete(r.budgets, id)
	return nil
}

// Goals

func (r *MemoryRepository) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.ID = r.id()
	g.CreatedAt = now()
	r.goals[g.ID] = g
	return g, nil
}

func (r *MemoryRepository) GetGoal(_ context.Context, userID, id int64) (core.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.goals[id]
	if !ok || g.UserID != userID {
		return core.Goal{}, ErrNotFound
	}
	return g, nil
}

func (r *MemoryRepository) ListGoals(_ context.Context, userID int64) ([]core.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.Goal
	for _, g := range r.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) UpdateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.goals[g.ID]
	if !ok || existing.UserID != g.UserID {
		return core.Goal{}, ErrNotFound
	}
	g.CreatedAt = existing.CreatedAt
	r.goals[g.ID] = g
	return g, nil
}

func (r *MemoryRepository) DeleteGoal(_ context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.goals[id]
	if !ok || g.UserID != userID {
		return ErrNotFound
	}
	delete(r.goals, id)
	return nil
}
