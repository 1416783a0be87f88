package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sindhu2707/expense-tracker/internal/cli"
	"github.com/sindhu2707/expense-tracker/internal/log"
)

var (
	cfgFile string
	logger  *log.Logger
	rootCmd = &cobra.Command{
		Use:   "expensectl",
		Short: "Operate the expense tracker",
		Long: `expensectl runs maintenance tasks against the expense database
(migrate, export, report, seed) and talks to a running API as a
logged-in user (login, list, delete).`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.expensectl.yaml)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("backend", "sqlite", "storage backend for local commands (memory, sqlite, postgres)")
	flags.String("db-path", "./data/expenses.db", "SQLite database path")
	flags.String("database-url", "", "PostgreSQL connection URL")
	flags.String("api-url", "http://localhost:3001/api", "base URL of the expense API")
	flags.String("session-file", "", "where the login session is kept (default: $XDG_DATA_HOME/expense-tracker/session.json)")

	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("backend", flags.Lookup("backend"))
	_ = viper.BindPFlag("db_path", flags.Lookup("db-path"))
	_ = viper.BindPFlag("database_url", flags.Lookup("database-url"))
	_ = viper.BindPFlag("api_url", flags.Lookup("api-url"))
	_ = viper.BindPFlag("session_file", flags.Lookup("session-file"))

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(deleteCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".expensectl")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("EXPENSECTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Logs go to stderr so that exports can be piped.
	logger = log.New(log.Config{
		Level:     log.ParseLevel(viper.GetString("log_level")),
		Component: "expensectl",
		Output:    os.Stderr,
	})
	log.SetDefault(logger)

	if dbPath := viper.GetString("db_path"); dbPath != "" {
		viper.Set("db_path", filepath.Clean(os.ExpandEnv(dbPath)))
	}
	return nil
}
