package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sindhu2707/expense-tracker/internal/aggregate"
	"github.com/sindhu2707/expense-tracker/internal/budget"
	"github.com/sindhu2707/expense-tracker/internal/currency"
	"github.com/sindhu2707/expense-tracker/internal/services"
)

const barWidth = 24

func reportCmd() *cobra.Command {
	var (
		email       string
		rollover    bool
		displayCurr string
		defaultCurr string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the dashboard for a user",
		Long: `Print the month's total, spending pace, category breakdown, budget
status and six month trend for one account.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			now := today()

			f, err := filterFromFlags(cmd, now)
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

			d, err := services.NewDashboardService(store.Repository, nil, defaultCurr).Build(ctx, user.ID, services.DashboardQuery{
				Filter:   f,
				Rollover: rollover,
				Currency: displayCurr,
				Today:    now,
			})
			if err != nil {
				return err
			}
			renderReport(cmd.OutOrStdout(), d)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "user", "", "email of the account to report on")
	cmd.Flags().BoolVar(&rollover, "rollover", false, "carry last month's unspent budget forward")
	cmd.Flags().StringVar(&displayCurr, "currency", "", "display currency (default: the default currency)")
	cmd.Flags().StringVar(&defaultCurr, "default-currency", "INR", "currency of amounts saved without one")
	addFilterFlags(cmd)
	return cmd
}

func renderReport(w io.Writer, d services.Dashboard) {
	title := "All expenses"
	if !d.Month.IsZero() {
		title = fmt.Sprintf("Expenses for %s %d", d.Month.Month, d.Month.Year)
	}
	fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("%s (%s)", title, d.Currency)))

	summary := []string{
		fmt.Sprintf("Total      %s across %d expenses", currency.Format(d.Total, d.Currency), len(d.Expenses)),
		fmt.Sprintf("Pace       %s (%.0f%% of budget, %.0f%% of month)", paceStyle(d.Velocity.Band).Render(string(d.Velocity.Band)), d.Velocity.PctBudgetUsed*100, d.Velocity.PctMonthPassed*100),
		fmt.Sprintf("Projected  %s", currency.Format(d.Velocity.ProjectedTotal, d.Currency)),
	}
	if d.Biggest != nil {
		summary = append(summary, fmt.Sprintf("Biggest    %s %s on %s", d.Biggest.Text, currency.Format(d.Biggest.Amount, d.Currency), d.Biggest.Date))
	}
	fmt.Fprintln(w, BoxStyle.Render(strings.Join(summary, "\n")))

	if len(d.Breakdown) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, HeaderStyle.Render("By category"))
		renderBreakdown(w, d)
	}

	if len(d.Budgets) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, HeaderStyle.Render("Budgets"))
		renderBudgets(w, d)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, HeaderStyle.Render("Last 6 months"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, m := range d.Trend.Months {
		fmt.Fprintf(tw, "%s\t%s\n", m.Month, currency.Format(m.Total, d.Currency))
	}
	tw.Flush()
	fmt.Fprintln(w, SubtleStyle.Render("Average of active months: "+currency.Format(d.Trend.AverageNonZero, d.Currency)))
}

func renderBreakdown(w io.Writer, d services.Dashboard) {
	var max int64
	for _, c := range d.Breakdown {
		if c.Amount.Cents > max {
			max = c.Amount.Cents
		}
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	for _, c := range d.Breakdown {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Category, currency.Format(c.Amount, d.Currency), bar(c.Amount.Cents, max))
	}
}

func renderBudgets(w io.Writer, d services.Dashboard) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	for _, s := range d.Budgets {
		if s.Cap.IsZero() && s.Spent.IsZero() {
			continue
		}
		notice := s.Notice
		if notice == "" {
			notice = "-"
		}
		fmt.Fprintf(tw, "%s\t%s / %s\t%s\t%s\n",
			s.Category,
			currency.Format(s.Spent, d.Currency),
			currency.Format(s.Cap, d.Currency),
			levelStyle(s.Level).Render(fmt.Sprintf("%3.0f%%", s.Percent)),
			notice)
	}
}

// bar draws value as a share of max in barWidth cells.
func bar(value, max int64) string {
	if max <= 0 || value <= 0 {
		return ""
	}
	n := int(value * barWidth / max)
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func levelStyle(l budget.Level) lipgloss.Style {
	switch l {
	case budget.LevelDanger:
		return ErrorStyle
	case budget.LevelWarning:
		return WarningStyle
	default:
		return SuccessStyle
	}
}

func paceStyle(b aggregate.Band) lipgloss.Style {
	switch b {
	case aggregate.Overspending:
		return ErrorStyle
	case aggregate.SlightlyOver:
		return WarningStyle
	default:
		return SuccessStyle
	}
}
