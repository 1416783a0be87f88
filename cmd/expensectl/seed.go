package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sindhu2707/expense-tracker/internal/auth"
	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/services"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

func seedCmd() *cobra.Command {
	var (
		email    string
		password string
		count    int
		months   int
		seed     int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill an account with generated expenses",
		Long: `Create an account when needed and add randomly generated expenses
spread over the last few months. Useful for trying out the dashboard.

A fixed --seed produces the same expenses every run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if count <= 0 {
				return errors.New("--count must be positive")
			}
			if months <= 0 {
				months = 1
			}
			if email == "" {
				return errors.New("--user is required")
			}

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Cleanup()

			faker := gofakeit.New(seed)

			user, err := store.Repository.UserByEmail(ctx, email)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("failed to look up %s: %w", email, err)
			}
			if err != nil {
				if password == "" {
					password = faker.Password(true, true, true, false, false, 12)
				}
				hash, err := auth.NewHasher(auth.DefaultCost).Hash(password)
				if err != nil {
					return err
				}
				user, err = store.Repository.CreateUser(ctx, core.User{Email: email, PasswordHash: hash})
				if err != nil {
					return fmt.Errorf("failed to create account: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), SuccessStyle.Render(fmt.Sprintf("Created %s with password %s", email, password)))
			}

			expenses := services.NewExpenseService(store.Repository, nil, nil, viper.GetString("default_currency"))

			end := time.Now()
			start := end.AddDate(0, -months, 0)

			bar := progressbar.NewOptions(count,
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan][bold]Seeding expenses...[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)

			for i := 0; i < count; i++ {
				e := fakeExpense(faker, user.ID, start, end)
				if _, err := expenses.Create(ctx, e); err != nil {
					return fmt.Errorf("failed to create expense %d: %w", i+1, err)
				}
				if err := bar.Add(1); err != nil {
					logger.Warn("Failed to update progress bar", "error", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(fmt.Sprintf("Added %d expenses for %s", count, user.Email)))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "user", "", "email of the account to fill")
	cmd.Flags().StringVar(&password, "password", "", "password for a new account (generated when empty)")
	cmd.Flags().IntVarP(&count, "count", "n", 50, "number of expenses to add")
	cmd.Flags().IntVar(&months, "months", 3, "spread expenses over this many past months")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 picks one")
	cmd.Flags().String("default-currency", "INR", "currency recorded on generated expenses")
	_ = viper.BindPFlag("default_currency", cmd.Flags().Lookup("default-currency"))
	return cmd
}

func fakeExpense(f *gofakeit.Faker, userID int64, start, end time.Time) core.Expense {
	category := core.Categories[f.Number(0, len(core.Categories)-1)]
	e := core.Expense{
		UserID:        userID,
		Text:          fakeTitle(f, category),
		Amount:        core.MoneyFromFloat(f.Price(1, 2500)),
		Category:      category,
		Date:          core.DateOf(f.DateRange(start, end)),
		PaymentMethod: core.PaymentMethods[f.Number(0, len(core.PaymentMethods)-1)],
		Merchant:      f.Company(),
	}
	if f.Number(1, 3) == 1 {
		e.Note = f.Sentence(5)
	}
	if f.Bool() {
		e.Tags = []string{strings.ToLower(f.Word())}
	}
	if category == core.Bills && f.Bool() {
		e.IsRecurring = true
		e.Frequency = core.Monthly
	}
	return e
}

func fakeTitle(f *gofakeit.Faker, c core.Category) string {
	switch c {
	case core.Food:
		return f.RandomString([]string{f.Lunch(), f.Dinner(), f.Snack()})
	case core.Transport:
		return "Ride to " + f.City()
	case core.Shopping:
		return f.Company()
	case core.Bills:
		return f.Company() + " bill"
	case core.Entertainment:
		return f.AppName()
	case core.Health:
		return "Pharmacy " + f.LastName()
	default:
		return f.Word()
	}
}
