package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

// RecurringProcessor materializes due recurring templates into ordinary
// expenses.
type RecurringProcessor struct {
	repo     storage.Expenses
	expenses *ExpenseService
	location *time.Location
}

func NewRecurringProcessor(repo storage.Expenses, expenses *ExpenseService) *RecurringProcessor {
	return &RecurringProcessor{repo: repo, expenses: expenses, location: time.Local}
}

// ProcessDue creates one copy dated today for every due template and
// returns how many were created. A failing template is logged and skipped.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.repo == nil || p.expenses == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.repo.ListRecurring(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring expenses: %w", err)
	}

	logger := log.FromContext(ctx).WithComponent(log.ComponentRecurring)
	today := core.DateOf(now.In(p.location))

	created := 0
	for _, tpl := range templates {
		due, err := isDue(tpl, today)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to check recurring expense",
				log.FieldExpenseID, tpl.ID,
				log.FieldError, err.Error())
			continue
		}
		if !due {
			continue
		}

		copied, err := p.expenses.Create(ctx, occurrence(tpl, today))
		if err != nil {
			logger.ErrorContext(ctx, "Failed to create expense from recurring template",
				log.FieldExpenseID, tpl.ID,
				log.FieldUserID, tpl.UserID,
				log.FieldError, err.Error())
			continue
		}
		if err := p.repo.MarkOccurred(ctx, tpl.ID, today); err != nil {
			logger.ErrorContext(ctx, "Failed to record occurrence",
				log.FieldExpenseID, tpl.ID,
				log.FieldError, err.Error())
		}

		created++
		logger.InfoContext(ctx, "Created expense from recurring template",
			log.FieldOperation, log.OpMaterialize,
			log.FieldExpenseID, copied.ID,
			log.FieldUserID, tpl.UserID,
			log.FieldAmountCents, tpl.Amount.Cents)
	}

	logger.InfoContext(ctx, "Recurring expense processing complete",
		log.FieldCount, created,
		"total_checked", len(templates),
		"processing_date", today.String())

	return created, nil
}

// isDue measures from the last occurrence, or from the template date when no
// copy was made yet: the template itself is the first occurrence.
func isDue(tpl core.Expense, today core.Date) (bool, error) {
	checker, err := GetDuenessChecker(tpl.Frequency)
	if err != nil {
		return false, err
	}
	if today.Before(tpl.Date) {
		return false, nil
	}
	last := tpl.LastOccurrence
	if last.IsZero() {
		last = tpl.Date
	}
	return checker.IsDue(last, today, tpl.Date), nil
}

func occurrence(tpl core.Expense, today core.Date) core.Expense {
	e := tpl
	e.ID = 0
	e.Date = today
	e.IsRecurring = false
	e.Frequency = ""
	e.LastOccurrence = core.Date{}
	e.CreatedAt = time.Time{}
	e.Tags = append([]string(nil), tpl.Tags...)
	e.Splits = append([]core.SplitShare(nil), tpl.Splits...)
	return e
}
