package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sindhu2707/expense-tracker/internal/budget"
	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

type BudgetRepository interface {
	storage.Budgets
	storage.Expenses
}

// EffectiveBudgets is the budget picture of one month.
type EffectiveBudgets struct {
	Month      core.MonthKey
	Rollover   bool
	Configured budget.Caps
	Caps       budget.Caps
	Statuses   []budget.Status
}

type BudgetService struct {
	repo        BudgetRepository
	invalidator Invalidator
}

func NewBudgetService(repo BudgetRepository, invalidator Invalidator) *BudgetService {
	return &BudgetService{repo: repo, invalidator: invalidator}
}

func (s *BudgetService) List(ctx context.Context, userID int64) ([]core.Budget, error) {
	return s.repo.ListBudgets(ctx, userID)
}

// Upsert saves the cap for (user, category, month); created is false when an
// existing row was replaced.
func (s *BudgetService) Upsert(ctx context.Context, b core.Budget) (core.Budget, bool, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, false, err
	}
	saved, created, err := s.repo.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, false, err
	}
	s.invalidate(b.UserID)

	log.FromContext(ctx).WithComponent(log.ComponentBudget).InfoContext(ctx, "Budget saved",
		log.FieldOperation, log.OpUpsert,
		log.FieldUserID, b.UserID,
		log.FieldCategory, string(b.Category),
		log.FieldMonth, b.Month.String(),
		log.FieldAmountCents, b.Amount.Cents)

	return saved, created, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteBudget(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(userID)
	return nil
}

// Effective resolves the caps in force for month, optionally adding last
// month's underspend, and evaluates spending against them.
func (s *BudgetService) Effective(ctx context.Context, userID int64, month core.MonthKey, rollover bool) (EffectiveBudgets, error) {
	if month.IsZero() {
		return EffectiveBudgets{}, core.ErrInvalidMonth
	}

	var (
		budgets  []core.Budget
		expenses []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		budgets, err = s.repo.ListBudgets(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.repo.ListExpenses(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return EffectiveBudgets{}, err
	}

	configured := budget.Configured(budgets, month)
	caps := budget.EffectiveCaps(configured, expenses, month, rollover)
	return EffectiveBudgets{
		Month:      month,
		Rollover:   rollover,
		Configured: configured,
		Caps:       caps,
		Statuses:   budget.Statuses(caps, expenses, month),
	}, nil
}

func (s *BudgetService) invalidate(userID int64) {
	if s.invalidator != nil {
		s.invalidator.DeletePrefix(dashboardPrefix(userID))
	}
}
