package main

import (
	"context"
	"os"
	"time"

	"github.com/sindhu2707/expense-tracker/internal/amqp"
	"github.com/sindhu2707/expense-tracker/internal/cli"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/sheets"
	gsheet "github.com/sindhu2707/expense-tracker/internal/sheets/google"
	"github.com/sindhu2707/expense-tracker/internal/sheets/memory"
	"github.com/sindhu2707/expense-tracker/internal/worker"
)

const heartbeatInterval = 5 * time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentWorker)
	logger.Info("Starting expense-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the expense worker")
		os.Exit(1)
	}

	store := cli.OpenRepository(context.Background(), logger, cfg)
	defer store.Cleanup()

	// Without a spreadsheet the rows are kept in memory, which is only
	// useful to watch the event stream locally.
	var mirror sheets.Mirror
	if cfg.GoogleSpreadsheetID != "" {
		if err := cfg.ValidateSheetsWorker(); err != nil {
			logger.Error("Configuration validation failed", "error", err)
			os.Exit(1)
		}
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "sheet", cfg.GoogleSheetName)
	} else {
		mirror = memory.New()
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, mirroring rows in memory only")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	ctx = log.NewContext(ctx, logger)

	syncWorker := worker.NewSyncWorker(store.Repository, mirror)
	if err := syncWorker.Prepare(ctx); err != nil {
		// The header is cosmetic; rows can still be appended.
		logger.Error("Failed to prepare sheet", "error", err)
	}

	if err := syncWorker.Run(ctx, amqpClient, heartbeatInterval); err != nil {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	appended, skipped := syncWorker.Stats()
	logger.Info("Worker shutdown complete", "appended", appended, "skipped", skipped)
}
