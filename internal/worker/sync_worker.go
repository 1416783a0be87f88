package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sindhu2707/expense-tracker/internal/amqp"
	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/export"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/sheets"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

// ExpenseReader loads the record an event points at.
type ExpenseReader interface {
	GetExpense(ctx context.Context, userID, id int64) (core.Expense, error)
}

// EventConsumer delivers expense events to a handler until ctx ends.
type EventConsumer interface {
	ConsumeExpenseEvents(ctx context.Context, handler func(context.Context, *amqp.ExpenseEvent) error) error
}

// SyncWorker mirrors newly created expenses into a spreadsheet. The mirror
// is append-only: updates and deletes are acknowledged without changes.
type SyncWorker struct {
	expenses ExpenseReader
	mirror   sheets.RowAppender

	appended atomic.Int64
	skipped  atomic.Int64
}

func NewSyncWorker(expenses ExpenseReader, mirror sheets.RowAppender) *SyncWorker {
	return &SyncWorker{expenses: expenses, mirror: mirror}
}

// Prepare writes the CSV header into an empty sheet.
func (w *SyncWorker) Prepare(ctx context.Context) error {
	hw, ok := w.mirror.(sheets.HeaderWriter)
	if !ok {
		return nil
	}
	if err := hw.EnsureHeader(ctx, export.Header); err != nil {
		return fmt.Errorf("ensure sheet header: %w", err)
	}
	return nil
}

// HandleEvent processes one event. A returned error asks the broker to
// redeliver.
func (w *SyncWorker) HandleEvent(ctx context.Context, evt *amqp.ExpenseEvent) error {
	logger := log.FromContext(ctx).WithComponent(log.ComponentWorker)

	if evt.Type != amqp.EventCreated {
		w.skipped.Add(1)
		logger.DebugContext(ctx, "Ignoring event for append-only mirror",
			log.FieldEventType, string(evt.Type),
			log.FieldExpenseID, evt.ExpenseID)
		return nil
	}

	e, err := w.expenses.GetExpense(ctx, evt.UserID, evt.ExpenseID)
	if errors.Is(err, storage.ErrNotFound) {
		w.skipped.Add(1)
		logger.WarnContext(ctx, "Expense gone before it could be mirrored",
			log.FieldExpenseID, evt.ExpenseID,
			log.FieldUserID, evt.UserID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	ref, err := w.mirror.AppendRow(ctx, export.Row(e))
	if err != nil {
		return fmt.Errorf("append expense to sheet: %w", err)
	}
	w.appended.Add(1)

	logger.InfoContext(ctx, "Expense mirrored to sheet",
		log.FieldOperation, log.OpAppend,
		log.FieldExpenseID, e.ID,
		log.FieldUserID, e.UserID,
		"row", ref)
	return nil
}

// Stats reports how many events were mirrored and skipped so far.
func (w *SyncWorker) Stats() (appended, skipped int64) {
	return w.appended.Load(), w.skipped.Load()
}

// Run consumes events until ctx is cancelled or the consumer fails, logging
// progress every heartbeat.
func (w *SyncWorker) Run(ctx context.Context, consumer EventConsumer, heartbeat time.Duration) error {
	logger := log.FromContext(ctx).WithComponent(log.ComponentWorker)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := consumer.ConsumeExpenseEvents(gctx, w.HandleEvent)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	if heartbeat > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(heartbeat)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					appended, skipped := w.Stats()
					logger.InfoContext(gctx, "Sync worker alive",
						"appended", appended,
						"skipped", skipped)
				}
			}
		})
	}

	return g.Wait()
}
