package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/sindhu2707/expense-tracker/internal/amqp"
	"github.com/sindhu2707/expense-tracker/internal/auth"
	"github.com/sindhu2707/expense-tracker/internal/cache"
	"github.com/sindhu2707/expense-tracker/internal/cli"
	apphttp "github.com/sindhu2707/expense-tracker/internal/http"
	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/services"
)

const dashboardCacheSize = 512

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenRepository(context.Background(), logger, cfg)
	repo := store.Repository

	// Event publishing is optional; without a broker the API still serves.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			amqpClient, publisher = c, c
			logger.Info("AMQP client initialized",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled, expense events will not be published")
	}

	caches := cache.NewManager()
	dashboards := cache.NewLRUCache[services.Dashboard](dashboardCacheSize, cfg.DashboardCacheTTL)
	caches.Register(dashboards)
	caches.StartCleanup(max(cfg.DashboardCacheTTL, time.Minute))

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	expenses := services.NewExpenseService(repo, publisher, dashboards, cfg.DefaultCurrency)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Accounts:  services.NewAccountService(repo, auth.NewHasher(cfg.BcryptCost), tokens),
		Expenses:  expenses,
		Budgets:   services.NewBudgetService(repo, dashboards),
		Goals:     services.NewGoalService(repo),
		Dashboard: services.NewDashboardService(repo, dashboards, cfg.DefaultCurrency),
		Tokens:    tokens,
		Storage:   repo,
		Logger:    logger.WithComponent(log.ComponentHTTP),
		Caches:    caches,
	}, apphttp.Options{
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if err := store.Cleanup(); err != nil {
			logger.Warn("Storage close error", "error", err)
		}
	})

	logger.Info("Starting expense API",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"default_currency", cfg.DefaultCurrency)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
