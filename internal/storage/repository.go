// Package storage persists users, expenses, budgets and goals.
//
// Every per-user method is scoped by user id: a record owned by another user
// is reported as ErrNotFound.
package storage

import (
	"context"
	"errors"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type Users interface {
	// CreateUser returns ErrConflict when the email is taken (case-insensitive).
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	UserByEmail(ctx context.Context, email string) (core.User, error)
	UserByID(ctx context.Context, id int64) (core.User, error)
	UpdateUsername(ctx context.Context, id int64, username string) (core.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	// DeleteUser removes the user with all their expenses, budgets and goals.
	DeleteUser(ctx context.Context, id int64) error
}

type Expenses interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, userID, id int64) (core.Expense, error)
	// ListExpenses orders by date descending, newest id first within a day.
	ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, userID, id int64) error
	// DeleteExpenses removes the owned subset of ids and returns the ids
	// that went away.
	DeleteExpenses(ctx context.Context, userID int64, ids []int64) ([]int64, error)
	// ListRecurring returns recurring templates of every user.
	ListRecurring(ctx context.Context) ([]core.Expense, error)
	MarkOccurred(ctx context.Context, id int64, on core.Date) error
}

type Budgets interface {
	// UpsertBudget inserts or replaces the amount for (user, category, month).
	// created reports whether a new row was inserted.
	UpsertBudget(ctx context.Context, b core.Budget) (saved core.Budget, created bool, err error)
	ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error)
	DeleteBudget(ctx context.Context, userID, id int64) error
}

type Goals interface {
	CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	GetGoal(ctx context.Context, userID, id int64) (core.Goal, error)
	// ListGoals orders by creation time, newest first.
	ListGoals(ctx context.Context, userID int64) ([]core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	DeleteGoal(ctx context.Context, userID, id int64) error
}

// Repository is the full persistence port used by services.
type Repository interface {
	Users
	Expenses
	Budgets
	Goals
	Ping(ctx context.Context) error
	Close() error
}
