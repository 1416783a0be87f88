package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sindhu2707/expense-tracker/internal/aggregate"
	"github.com/sindhu2707/expense-tracker/internal/export"
)

func exportCmd() *cobra.Command {
	var (
		email  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's expenses as CSV",
		Long: `Write the expenses matching the filter flags as CSV.

Without --output the file is named after the period, e.g.
expenses-2024-03.csv. Use --output - to write to stdout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			f, err := filterFromFlags(cmd, today())
			if err != nil {
				return err
			}

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Cleanup()

			user, err := lookupUser(ctx, store.Repository, email)
			if err != nil {
				return err
			}
			all, err := store.Repository.ListExpenses(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("failed to list expenses: %w", err)
			}
			expenses := aggregate.Apply(all, f)

			if len(expenses) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render(export.NothingToExportNotice))
				return nil
			}

			var w io.Writer = cmd.OutOrStdout()
			if output == "" {
				output = export.Filename(f.Period())
			}
			if output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer file.Close()
				w = file
			}

			if err := export.WriteCSV(w, expenses); err != nil {
				return err
			}
			if output != "-" {
				fmt.Fprintln(cmd.ErrOrStderr(), SuccessStyle.Render(fmt.Sprintf("Exported %d expenses to %s", len(expenses), output)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "user", "", "email of the account to export")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout")
	addFilterFlags(cmd)
	return cmd
}
