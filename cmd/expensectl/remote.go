package main

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sindhu2707/expense-tracker/internal/client"
	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/currency"
)

func loginCmd() *cobra.Command {
	var (
		email    string
		password string
		signup   bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the expense API",
		Long: `Sign in and keep the session for later commands. With --signup a new
account is created first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			api, err := newAPIClient()
			if err != nil {
				return err
			}

			var session client.Session
			if signup {
				session, err = api.Signup(cmd.Context(), email, password)
			} else {
				session, err = api.Login(cmd.Context(), email, password)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Signed in as "+session.User.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&signup, "signup", false, "create the account first")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := newAPIClient()
			if err != nil {
				return err
			}
			if err := api.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SubtleStyle.Render("Signed out"))
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses from the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := newAPIClient()
			if err != nil {
				return err
			}
			expenses, err := api.ListExpenses(cmd.Context(), filterQuery(cmd))
			if err != nil {
				return remoteError(err)
			}
			if len(expenses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), SubtleStyle.Render("No expenses found."))
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, HeaderStyle.Render(fmt.Sprintf("%d expenses", len(expenses))))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTITLE\tCATEGORY\tPAYMENT\tAMOUNT")
			for _, e := range expenses {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Date, e.Title, e.Category, e.PaymentMethod,
					currency.Format(core.MoneyFromFloat(e.Amount), e.Currency))
			}
			return w.Flush()
		},
	}
	addFilterFlags(cmd)
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete expenses by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid expense id %q", arg)
				}
				ids = append(ids, id)
			}

			api, err := newAPIClient()
			if err != nil {
				return err
			}
			ws := client.NewWorkspace(api)
			if err := ws.Refresh(cmd.Context(), url.Values{"month": {"all"}}); err != nil {
				return remoteError(err)
			}

			if len(ids) == 1 {
				err = ws.Delete(cmd.Context(), ids[0])
			} else {
				err = ws.DeleteMany(cmd.Context(), ids)
			}
			if err != nil {
				return remoteError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(fmt.Sprintf("Deleted %d expense(s)", len(ids))))
			return nil
		},
	}
}

// remoteError turns session failures into a hint to sign in again.
func remoteError(err error) error {
	if errors.Is(err, client.ErrNoSession) || errors.Is(err, client.ErrSessionInvalid) {
		return errors.New("not signed in, run expensectl login first")
	}
	return err
}
