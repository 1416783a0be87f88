package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sindhu2707/expense-tracker/internal/backend"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Bring the configured database to the latest schema.

The API and the workers migrate on startup as well; this command is for
preparing a database ahead of a deploy.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := backend.Config{
				Type:         backend.Type(viper.GetString("backend")),
				SQLiteDBPath: viper.GetString("db_path"),
				DatabaseURL:  viper.GetString("database_url"),
			}
			logger.Info("Running database migrations", "backend", cfg.Type)

			if err := backend.Migrate(cfg); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Database migrations completed"))
			return nil
		},
	}
}
