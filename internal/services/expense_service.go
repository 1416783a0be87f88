package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sindhu2707/expense-tracker/internal/aggregate"
	"github.com/sindhu2707/expense-tracker/internal/amqp"
	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/currency"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

// ErrNoSelection is returned by bulk operations called without ids.
var ErrNoSelection = errors.New("ids array is required")

// EventPublisher is the outbound side of the expense event stream.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, evt *amqp.ExpenseEvent) error
}

// Invalidator drops cached read models. cache.Cache satisfies it.
type Invalidator interface {
	DeletePrefix(prefix string) int
}

// ExpenseService orchestrates expense writes: validation, storage, event
// publication and cache invalidation.
type ExpenseService struct {
	repo            storage.Expenses
	publisher       EventPublisher
	invalidator     Invalidator
	defaultCurrency string
}

// NewExpenseService wires the service. publisher and invalidator may be nil.
func NewExpenseService(repo storage.Expenses, publisher EventPublisher, invalidator Invalidator, defaultCurrency string) *ExpenseService {
	if defaultCurrency == "" {
		defaultCurrency = "INR"
	}
	return &ExpenseService{
		repo:            repo,
		publisher:       publisher,
		invalidator:     invalidator,
		defaultCurrency: currency.Normalize(defaultCurrency),
	}
}

// DefaultCurrency is the currency assumed for expenses saved without one.
func (s *ExpenseService) DefaultCurrency() string {
	return s.defaultCurrency
}

// prepare fills defaults and validates e before it reaches storage.
func (s *ExpenseService) prepare(e core.Expense) (core.Expense, error) {
	e.Text = strings.TrimSpace(e.Text)
	e.Currency = currency.Normalize(e.Currency)
	if e.Currency == "" {
		e.Currency = s.defaultCurrency
	}
	if e.PaymentMethod == "" {
		e.PaymentMethod = core.Cash
	}
	if !e.IsRecurring {
		e.Frequency = ""
	}
	if !e.IsSplit {
		e.Splits = nil
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if !currency.Known(e.Currency) {
		return core.Expense{}, fmt.Errorf("%w: %s", core.ErrInvalidCurrency, e.Currency)
	}
	return e, nil
}

func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	e, err := s.prepare(e)
	if err != nil {
		return core.Expense{}, err
	}
	saved, err := s.repo.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.changed(ctx, amqp.EventCreated, log.OpCreate, saved)
	return saved, nil
}

// Update replaces every editable field of an owned expense.
func (s *ExpenseService) Update(ctx context.Context, e core.Expense) (core.Expense, error) {
	e, err := s.prepare(e)
	if err != nil {
		return core.Expense{}, err
	}
	saved, err := s.repo.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	s.changed(ctx, amqp.EventUpdated, log.OpUpdate, saved)
	return saved, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, id int64) (core.Expense, error) {
	return s.repo.GetExpense(ctx, userID, id)
}

// List returns every expense of the user, newest first.
func (s *ExpenseService) List(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.repo.ListExpenses(ctx, userID)
}

// Query applies the filter and its sort to the user's expenses.
func (s *ExpenseService) Query(ctx context.Context, userID int64, f aggregate.Filter) ([]core.Expense, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	expenses, err := s.repo.ListExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	return aggregate.Apply(expenses, f), nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	s.changed(ctx, amqp.EventDeleted, log.OpDelete, core.Expense{ID: id, UserID: userID})
	return nil
}

// DeleteMany removes the owned subset of ids and reports how many were
// removed. Only removed ids produce delete events.
func (s *ExpenseService) DeleteMany(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoSelection
	}
	removed, err := s.repo.DeleteExpenses(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	for _, id := range removed {
		s.publish(ctx, amqp.NewExpenseEvent(amqp.EventDeleted, userID, id))
	}
	if len(removed) > 0 {
		s.invalidate(userID)
	}
	n := int64(len(removed))

	log.FromContext(ctx).WithComponent(log.ComponentExpense).InfoContext(ctx, "Expenses deleted",
		log.FieldOperation, log.OpBulkDelete,
		log.FieldUserID, userID,
		log.FieldCount, n)

	return n, nil
}

func (s *ExpenseService) changed(ctx context.Context, t amqp.EventType, op string, e core.Expense) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentExpense)
	if t == amqp.EventDeleted {
		logger.InfoContext(ctx, "Expense deleted",
			log.FieldOperation, op,
			log.FieldUserID, e.UserID,
			log.FieldExpenseID, e.ID)
	} else {
		log.NewStructuredLogger(logger).LogExpenseSaved(ctx, op, e.UserID, log.ExpenseFields{
			ID:          e.ID,
			AmountCents: e.Amount.Cents,
			Category:    string(e.Category),
		})
	}
	s.publish(ctx, amqp.NewExpenseEvent(t, e.UserID, e.ID))
	s.invalidate(e.UserID)
}

// publish never fails the caller: the expense is already stored.
func (s *ExpenseService) publish(ctx context.Context, evt *amqp.ExpenseEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, evt); err != nil {
		log.FromContext(ctx).WithComponent(log.ComponentAMQP).ErrorContext(ctx, "Failed to publish expense event",
			log.FieldEventType, string(evt.Type),
			log.FieldExpenseID, evt.ExpenseID,
			log.FieldError, err.Error())
	}
}

func (s *ExpenseService) invalidate(userID int64) {
	if s.invalidator != nil {
		s.invalidator.DeletePrefix(dashboardPrefix(userID))
	}
}
