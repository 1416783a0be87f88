package main

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sindhu2707/expense-tracker/internal/amqp"
	"github.com/sindhu2707/expense-tracker/internal/cli"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentRecurring)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenRepository(context.Background(), logger, cfg)
	defer store.Cleanup()

	// Copies are published like any other new expense so the sheet mirror
	// sees them.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized")
		}
	}

	expenses := services.NewExpenseService(store.Repository, publisher, nil, cfg.DefaultCurrency)
	processor := services.NewRecurringProcessor(store.Repository, expenses)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	ctx = log.NewContext(ctx, logger)

	process := func() {
		now := time.Now()
		count, err := processor.ProcessDue(ctx, now)
		if err != nil {
			logger.Error("Recurring processing failed", "error", err)
			return
		}
		logger.Info("Recurring processing complete", "expenses_created", count)
	}

	logger.Info("Running initial recurring expense processing")
	process()

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(cfg.RecurringSchedule, process); err != nil {
		logger.Error("Invalid recurring schedule", "schedule", cfg.RecurringSchedule, "error", err)
		os.Exit(1)
	}
	c.Start()
	logger.Info("Recurring expense processor scheduled", "schedule", cfg.RecurringSchedule)

	cli.WaitForShutdown(ctx, done)

	// Wait for a run in progress before closing storage.
	<-c.Stop().Done()
	logger.Info("Recurring-worker shutdown complete")
}
