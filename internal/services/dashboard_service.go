package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sindhu2707/expense-tracker/internal/aggregate"
	"github.com/sindhu2707/expense-tracker/internal/budget"
	"github.com/sindhu2707/expense-tracker/internal/cache"
	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/currency"
	"github.com/sindhu2707/expense-tracker/internal/log"
)

// DashboardQuery is the view state of one dashboard request.
type DashboardQuery struct {
	Filter   aggregate.Filter
	Rollover bool
	// Currency is the display currency; empty means the default currency.
	Currency string
	// Today anchors the heatmap, the trend and the velocity. Zero means now.
	Today core.Date
}

func (q DashboardQuery) key(userID int64) string {
	f := q.Filter
	return fmt.Sprintf("%s%s|%s|%s|%s|%s|%s|%t|%s|%s",
		dashboardPrefix(userID), f.Mode, f.Reference, f.Search, f.Category, f.PaymentMethod, f.Sort,
		q.Rollover, q.Currency, q.Today)
}

func dashboardPrefix(userID int64) string {
	return fmt.Sprintf("dashboard:%d:", userID)
}

// Dashboard is every derived figure the dashboard shows. Amounts are in
// Currency.
type Dashboard struct {
	Currency  string
	Month     core.MonthKey
	Expenses  []core.Expense
	Total     core.Money
	Breakdown []aggregate.CategoryTotal
	Velocity  aggregate.Velocity
	Budgets   []budget.Status
	Heatmap   aggregate.Heatmap
	Trend     aggregate.MonthlyTrend
	Biggest   *core.Expense
}

type DashboardService struct {
	repo            BudgetRepository
	cache           cache.Cache[Dashboard]
	defaultCurrency string
	location        *time.Location
	now             func() time.Time
}

// NewDashboardService builds the service; c may be nil to disable caching.
func NewDashboardService(repo BudgetRepository, c cache.Cache[Dashboard], defaultCurrency string) *DashboardService {
	if defaultCurrency == "" {
		defaultCurrency = "INR"
	}
	return &DashboardService{
		repo:            repo,
		cache:           c,
		defaultCurrency: currency.Normalize(defaultCurrency),
		location:        time.Local,
		now:             time.Now,
	}
}

// Build derives the dashboard for the user, serving a cached copy when one
// exists for the same query.
func (s *DashboardService) Build(ctx context.Context, userID int64, q DashboardQuery) (Dashboard, error) {
	if err := q.Filter.Validate(); err != nil {
		return Dashboard{}, err
	}
	q.Currency = currency.Normalize(q.Currency)
	if q.Currency == "" {
		q.Currency = s.defaultCurrency
	}
	if !currency.Known(q.Currency) {
		return Dashboard{}, fmt.Errorf("%w: %s", core.ErrInvalidCurrency, q.Currency)
	}
	if q.Today.IsZero() {
		q.Today = aggregate.Today(s.now(), s.location)
	}

	logger := log.FromContext(ctx).WithComponent(log.ComponentDashboard)
	key := q.key(userID)
	if s.cache != nil {
		if d, ok := s.cache.Get(key); ok {
			logger.DebugContext(ctx, "Dashboard cache hit", log.FieldUserID, userID)
			return d, nil
		}
	}

	var (
		expenses []core.Expense
		budgets  []core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.repo.ListExpenses(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.repo.ListBudgets(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard data: %w", err)
	}

	expenses, err := s.convertExpenses(expenses, q.Currency)
	if err != nil {
		return Dashboard{}, err
	}
	budgets, err = s.convertBudgets(budgets, q.Currency)
	if err != nil {
		return Dashboard{}, err
	}

	d := derive(expenses, budgets, q)
	if s.cache != nil {
		s.cache.Set(key, d)
	}
	logger.DebugContext(ctx, "Dashboard built",
		log.FieldUserID, userID,
		log.FieldCount, len(d.Expenses),
		log.FieldCurrency, d.Currency)
	return d, nil
}

// derive computes every widget from expenses and budgets already in the
// display currency.
func derive(expenses []core.Expense, budgets []core.Budget, q DashboardQuery) Dashboard {
	month := q.Today.MonthKey()
	if !q.Filter.Reference.IsZero() {
		month = q.Filter.Reference.MonthKey()
	}

	filtered := aggregate.Apply(expenses, q.Filter)
	caps := budget.EffectiveCaps(budget.Configured(budgets, month), expenses, month, q.Rollover)
	// Pace follows the selectors for the whole month, even in day mode.
	var monthTotal core.Money
	for _, e := range aggregate.InMonth(expenses, month) {
		if q.Filter.Matches(e) {
			monthTotal = monthTotal.Add(e.Amount)
		}
	}

	d := Dashboard{
		Currency:  q.Currency,
		Month:     month,
		Expenses:  filtered,
		Total:     aggregate.Total(filtered),
		Breakdown: aggregate.CategoryBreakdown(filtered),
		Velocity:  aggregate.SpendVelocity(monthTotal, caps.Total(), month, q.Today),
		Budgets:   budget.Statuses(caps, expenses, month),
		Heatmap:   aggregate.SpendingHeatmap(expenses, q.Today),
		Trend:     aggregate.MonthlyTotals(expenses, q.Today.MonthKey(), aggregate.TrendMonths),
	}
	if biggest, ok := aggregate.Biggest(filtered); ok {
		d.Biggest = &biggest
	}
	return d
}

func (s *DashboardService) convertExpenses(expenses []core.Expense, to string) ([]core.Expense, error) {
	out := make([]core.Expense, len(expenses))
	for i, e := range expenses {
		from := e.Currency
		if from == "" {
			from = s.defaultCurrency
		}
		amount, err := currency.Convert(e.Amount, from, to)
		if err != nil {
			return nil, fmt.Errorf("convert expense %d: %w", e.ID, err)
		}
		e.Amount = amount
		e.Currency = to
		out[i] = e
	}
	return out, nil
}

// convertBudgets treats stored caps as amounts in the default currency.
func (s *DashboardService) convertBudgets(budgets []core.Budget, to string) ([]core.Budget, error) {
	out := make([]core.Budget, len(budgets))
	for i, b := range budgets {
		amount, err := currency.Convert(b.Amount, s.defaultCurrency, to)
		if err != nil {
			return nil, err
		}
		b.Amount = amount
		out[i] = b
	}
	return out, nil
}
