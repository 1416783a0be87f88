package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sindhu2707/expense-tracker/internal/aggregate"
	"github.com/sindhu2707/expense-tracker/internal/amqp"
	"github.com/sindhu2707/expense-tracker/internal/auth"
	"github.com/sindhu2707/expense-tracker/internal/cache"
	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

type recordingPublisher struct {
	events []*amqp.ExpenseEvent
	err    error
}

func (p *recordingPublisher) PublishExpenseEvent(_ context.Context, evt *amqp.ExpenseEvent) error {
	p.events = append(p.events, evt)
	return p.err
}

func rupees(units int64) core.Money {
	return core.Money{Cents: units * 100}
}

func newExpense(userID int64, text string, amount core.Money, cat core.Category, date core.Date) core.Expense {
	return core.Expense{UserID: userID, Text: text, Amount: amount, Category: cat, Date: date}
}

func TestAccountService_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewTokenIssuer("0123456789abcdef", time.Hour)
	svc := NewAccountService(storage.NewMemoryRepository(), auth.NewHasher(4), tokens)

	session, err := svc.Signup(ctx, " Asha@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if session.User.Email != "asha@example.com" {
		t.Errorf("Signup() email = %q, want normalized", session.User.Email)
	}
	if session.User.PasswordHash != "" {
		t.Error("Signup() must not return the password hash")
	}
	if id, err := tokens.Parse(session.Token); err != nil || id != session.User.ID {
		t.Fatalf("token parses to %d, %v; want %d", id, err, session.User.ID)
	}

	if _, err := svc.Signup(ctx, "asha@example.com", "another1"); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate Signup() error = %v, want ErrConflict", err)
	}
	if _, err := svc.Signup(ctx, "new@example.com", "short"); !errors.Is(err, core.ErrPasswordTooShort) {
		t.Errorf("short password error = %v, want ErrPasswordTooShort", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", email: "ASHA@example.com", password: "secret1"},
		{name: "wrong password", email: "asha@example.com", password: "secret2", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@example.com", password: "secret1", wantErr: ErrInvalidCredentials},
		{name: "missing password", email: "asha@example.com", password: "", wantErr: core.ErrMissingCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Login(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.User.ID != session.User.ID {
				t.Errorf("Login() user = %d, want %d", got.User.ID, session.User.ID)
			}
		})
	}
}

func TestAccountService_ChangePasswordAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	svc := NewAccountService(repo, auth.NewHasher(4), auth.NewTokenIssuer("0123456789abcdef", time.Hour))

	session, err := svc.Signup(ctx, "ravi@example.com", "secret1")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	uid := session.User.ID

	if err := svc.ChangePassword(ctx, uid, "wrong", "secret2"); !errors.Is(err, ErrIncorrectPassword) {
		t.Errorf("ChangePassword() with wrong current = %v, want ErrIncorrectPassword", err)
	}
	if err := svc.ChangePassword(ctx, uid, "secret1", "abc"); !errors.Is(err, core.ErrPasswordTooShort) {
		t.Errorf("ChangePassword() with short new = %v, want ErrPasswordTooShort", err)
	}
	if err := svc.ChangePassword(ctx, uid, "secret1", "secret2"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if _, err := svc.Login(ctx, "ravi@example.com", "secret2"); err != nil {
		t.Errorf("Login() with new password error = %v", err)
	}

	user, err := svc.UpdateProfile(ctx, uid, "  ravi ")
	if err != nil || user.Username != "ravi" {
		t.Fatalf("UpdateProfile() = %q, %v", user.Username, err)
	}

	if err := svc.DeleteAccount(ctx, uid); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, err := svc.Profile(ctx, uid); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Profile() after delete error = %v, want ErrNotFound", err)
	}
}

func TestExpenseService_CreateAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	dashboards := cache.NewLRUCache[Dashboard](10, time.Minute)
	dashboards.Set(dashboardPrefix(1)+"q", Dashboard{})
	dashboards.Set(dashboardPrefix(2)+"q", Dashboard{})
	svc := NewExpenseService(storage.NewMemoryRepository(), pub, dashboards, "INR")

	saved, err := svc.Create(ctx, core.Expense{
		UserID:    1,
		Text:      " Lunch ",
		Amount:    rupees(250),
		Category:  core.Food,
		Date:      core.NewDate(2024, 3, 1),
		Frequency: core.Monthly,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if saved.ID == 0 || saved.Text != "Lunch" {
		t.Errorf("Create() = %+v", saved)
	}
	if saved.Currency != "INR" || saved.PaymentMethod != core.Cash {
		t.Errorf("defaults = %q / %q, want INR / Cash", saved.Currency, saved.PaymentMethod)
	}
	if saved.Frequency != "" {
		t.Errorf("non-recurring expense kept frequency %q", saved.Frequency)
	}
	if len(pub.events) != 1 || pub.events[0].Type != amqp.EventCreated || pub.events[0].ExpenseID != saved.ID {
		t.Errorf("published events = %+v", pub.events)
	}
	if _, ok := dashboards.Get(dashboardPrefix(1) + "q"); ok {
		t.Error("dashboard cache of the user should be invalidated")
	}
	if _, ok := dashboards.Get(dashboardPrefix(2) + "q"); !ok {
		t.Error("dashboard cache of other users should survive")
	}
}

func TestExpenseService_CreateValidation(t *testing.T) {
	svc := NewExpenseService(storage.NewMemoryRepository(), nil, nil, "INR")
	base := newExpense(1, "Taxi", rupees(90), core.Transport, core.NewDate(2024, 3, 2))

	tests := []struct {
		name   string
		mutate func(*core.Expense)
	}{
		{name: "unknown currency", mutate: func(e *core.Expense) { e.Currency = "XYZ" }},
		{name: "missing title", mutate: func(e *core.Expense) { e.Text = "  " }},
		{name: "zero amount", mutate: func(e *core.Expense) { e.Amount = core.Money{} }},
		{name: "recurring without frequency", mutate: func(e *core.Expense) { e.IsRecurring = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.mutate(&e)
			_, err := svc.Create(context.Background(), e)
			if !core.IsValidation(err) {
				t.Fatalf("Create() error = %v, want a validation error", err)
			}
		})
	}
}

func TestExpenseService_PublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewExpenseService(storage.NewMemoryRepository(), pub, nil, "usd")

	saved, err := svc.Create(context.Background(), newExpense(1, "Book", core.Money{Cents: 1299}, core.Shopping, core.NewDate(2024, 3, 3)))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if saved.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", saved.Currency)
	}
}

func TestExpenseService_DeleteMany(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc := NewExpenseService(storage.NewMemoryRepository(), pub, nil, "INR")

	var ids []int64
	for _, text := range []string{"a", "b", "c"} {
		e, err := svc.Create(ctx, newExpense(1, text, rupees(10), core.Other, core.NewDate(2024, 3, 4)))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		ids = append(ids, e.ID)
	}

	if _, err := svc.DeleteMany(ctx, 1, nil); !errors.Is(err, ErrNoSelection) {
		t.Errorf("DeleteMany(nil) error = %v, want ErrNoSelection", err)
	}
	foreign, err := svc.Create(ctx, newExpense(2, "theirs", rupees(10), core.Other, core.NewDate(2024, 3, 4)))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	pub.events = nil
	n, err := svc.DeleteMany(ctx, 1, []int64{ids[0], foreign.ID, ids[1], 424242})
	if err != nil || n != 2 {
		t.Fatalf("DeleteMany() = %d, %v; want 2", n, err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.events))
	}
	for i, evt := range pub.events {
		if evt.Type != amqp.EventDeleted || evt.ExpenseID != ids[i] {
			t.Errorf("event[%d] = %s #%d, want deleted #%d", i, evt.Type, evt.ExpenseID, ids[i])
		}
	}
	left, _ := svc.List(ctx, 1)
	if len(left) != 1 || left[0].ID != ids[2] {
		t.Errorf("remaining = %+v", left)
	}
	if err := svc.Delete(ctx, 2, ids[2]); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete() by another user error = %v, want ErrNotFound", err)
	}
}

func TestExpenseService_Query(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(storage.NewMemoryRepository(), nil, nil, "INR")
	for _, e := range []core.Expense{
		newExpense(1, "Groceries", rupees(40), core.Food, core.NewDate(2024, 3, 5)),
		newExpense(1, "Bus", rupees(5), core.Transport, core.NewDate(2024, 3, 6)),
		newExpense(1, "Dinner", rupees(60), core.Food, core.NewDate(2024, 2, 28)),
	} {
		if _, err := svc.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	f := aggregate.NewFilter(core.NewDate(2024, 3, 1)).WithCategory(string(core.Food))
	got, err := svc.Query(ctx, 1, f)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 || got[0].Text != "Groceries" {
		t.Errorf("Query() = %+v", got)
	}

	if _, err := svc.Query(ctx, 1, f.WithCategory("Snacks")); !core.IsValidation(err) {
		t.Errorf("Query() with unknown category error = %v", err)
	}
}

func TestBudgetService_EffectiveWithRollover(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	budgets := NewBudgetService(repo, nil)
	expenses := NewExpenseService(repo, nil, nil, "INR")

	feb := core.NewMonthKey(2024, time.February)
	mar := core.NewMonthKey(2024, time.March)

	_, created, err := budgets.Upsert(ctx, core.Budget{UserID: 1, Category: core.Food, Amount: rupees(100), Month: feb})
	if err != nil || !created {
		t.Fatalf("Upsert() = %v, %v", created, err)
	}
	_, created, err = budgets.Upsert(ctx, core.Budget{UserID: 1, Category: core.Food, Amount: rupees(100), Month: feb})
	if err != nil || created {
		t.Fatalf("second Upsert() created = %v, err = %v; want replace", created, err)
	}
	if _, err := expenses.Create(ctx, newExpense(1, "Veg", rupees(60), core.Food, core.NewDate(2024, 2, 10))); err != nil {
		t.Fatal(err)
	}

	eff, err := budgets.Effective(ctx, 1, mar, true)
	if err != nil {
		t.Fatalf("Effective() error = %v", err)
	}
	if got := eff.Configured[core.Food]; got != rupees(100) {
		t.Errorf("configured Food = %v, want carried forward 100", got)
	}
	if got := eff.Caps[core.Food]; got != rupees(140) {
		t.Errorf("effective Food = %v, want 140", got)
	}
	if len(eff.Statuses) != len(core.Categories) {
		t.Errorf("statuses = %d, want one per category", len(eff.Statuses))
	}

	plain, err := budgets.Effective(ctx, 1, mar, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := plain.Caps[core.Food]; got != rupees(100) {
		t.Errorf("Food without rollover = %v, want 100", got)
	}

	if _, err := budgets.Effective(ctx, 1, core.MonthKey{}, false); !errors.Is(err, core.ErrInvalidMonth) {
		t.Errorf("Effective() with zero month error = %v", err)
	}
}

func TestGoalService(t *testing.T) {
	ctx := context.Background()
	svc := NewGoalService(storage.NewMemoryRepository())

	if _, err := svc.Create(ctx, core.Goal{UserID: 1, Name: " ", TargetAmount: rupees(10)}); !errors.Is(err, core.ErrEmptyGoalName) {
		t.Errorf("Create() without name error = %v", err)
	}
	g, err := svc.Create(ctx, core.Goal{UserID: 1, Name: "Laptop", TargetAmount: rupees(1000)})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if g.SavedAmount.Cents != 0 {
		t.Errorf("SavedAmount = %v, want 0", g.SavedAmount)
	}

	g.SavedAmount = rupees(1000)
	updated, err := svc.Update(ctx, g)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.Completed() {
		t.Error("goal should be completed")
	}
	if err := svc.Delete(ctx, 2, g.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete() by another user error = %v", err)
	}
}

func TestDashboardService_Build(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	dashboards := cache.NewLRUCache[Dashboard](10, time.Minute)
	expenses := NewExpenseService(repo, nil, dashboards, "INR")
	budgets := NewBudgetService(repo, dashboards)
	svc := NewDashboardService(repo, dashboards, "INR")

	today := core.NewDate(2024, 3, 15)
	for _, e := range []core.Expense{
		newExpense(1, "Rent", rupees(8312), core.Bills, core.NewDate(2024, 3, 1)),
		newExpense(1, "Snacks", rupees(100), core.Food, core.NewDate(2024, 3, 14)),
		newExpense(1, "Old", rupees(50), core.Food, core.NewDate(2024, 1, 10)),
	} {
		if _, err := expenses.Create(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	if _, _, err := budgets.Upsert(ctx, core.Budget{UserID: 1, Category: core.Food, Amount: rupees(200), Month: today.MonthKey()}); err != nil {
		t.Fatal(err)
	}

	q := DashboardQuery{Filter: aggregate.NewFilter(today), Today: today}
	d, err := svc.Build(ctx, 1, q)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(d.Expenses) != 2 || d.Total != rupees(8412) {
		t.Errorf("filtered = %d expenses, total %v", len(d.Expenses), d.Total)
	}
	if d.Biggest == nil || d.Biggest.Text != "Rent" {
		t.Errorf("Biggest = %+v", d.Biggest)
	}
	if d.Velocity.DaysInMonth != 31 || d.Velocity.DaysPassed != 15 {
		t.Errorf("Velocity days = %d/%d", d.Velocity.DaysPassed, d.Velocity.DaysInMonth)
	}
	if len(d.Trend.Months) != aggregate.TrendMonths || len(d.Heatmap.Days) != aggregate.HeatmapDays {
		t.Errorf("trend %d months, heatmap %d days", len(d.Trend.Months), len(d.Heatmap.Days))
	}
	for _, s := range d.Budgets {
		if s.Category == core.Food && (s.Cap != rupees(200) || s.Spent != rupees(100)) {
			t.Errorf("Food status = %+v", s)
		}
	}

	usd, err := svc.Build(ctx, 1, DashboardQuery{Filter: aggregate.NewFilter(today).WithCategory(string(core.Bills)), Today: today, Currency: "usd"})
	if err != nil {
		t.Fatalf("Build(USD) error = %v", err)
	}
	if usd.Currency != "USD" || usd.Total != (core.Money{Cents: 10000}) {
		t.Errorf("USD dashboard = %s %v, want USD 100.00", usd.Currency, usd.Total)
	}

	if _, err := svc.Build(ctx, 1, DashboardQuery{Filter: aggregate.NewFilter(today), Currency: "XYZ"}); !core.IsValidation(err) {
		t.Errorf("Build() with unknown currency error = %v", err)
	}
}

func TestDashboardService_VelocityFollowsSelectors(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	expenses := NewExpenseService(repo, nil, nil, "INR")
	budgets := NewBudgetService(repo, nil)
	svc := NewDashboardService(repo, nil, "INR")

	today := core.NewDate(2024, 3, 15)
	for _, e := range []core.Expense{
		newExpense(1, "Rent", rupees(8312), core.Bills, core.NewDate(2024, 3, 1)),
		newExpense(1, "Snacks", rupees(100), core.Food, core.NewDate(2024, 3, 14)),
	} {
		if _, err := expenses.Create(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	if _, _, err := budgets.Upsert(ctx, core.Budget{UserID: 1, Category: core.Food, Amount: rupees(200), Month: today.MonthKey()}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter aggregate.Filter
		want   float64
	}{
		{"all categories", aggregate.NewFilter(today), 8412.0 / 200},
		{"food only", aggregate.NewFilter(today).WithCategory(string(core.Food)), 0.5},
		{"day mode still covers the month", aggregate.NewFilter(core.NewDate(2024, 3, 1)).WithMode(aggregate.ModeDate).WithCategory(string(core.Food)), 0.5},
		{"search without matches", aggregate.NewFilter(today).WithSearch("nothing"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := svc.Build(ctx, 1, DashboardQuery{Filter: tt.filter, Today: today})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if diff := d.Velocity.PctBudgetUsed - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("PctBudgetUsed = %v, want %v", d.Velocity.PctBudgetUsed, tt.want)
			}
		})
	}
}

func TestDashboardService_CacheInvalidatedOnWrite(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	dashboards := cache.NewLRUCache[Dashboard](10, time.Minute)
	expenses := NewExpenseService(repo, nil, dashboards, "INR")
	svc := NewDashboardService(repo, dashboards, "INR")

	today := core.NewDate(2024, 3, 15)
	q := DashboardQuery{Filter: aggregate.NewFilter(today), Today: today}

	if _, err := expenses.Create(ctx, newExpense(1, "Tea", rupees(20), core.Food, today)); err != nil {
		t.Fatal(err)
	}
	first, err := svc.Build(ctx, 1, q)
	if err != nil {
		t.Fatal(err)
	}

	// Written behind the service's back: the cached copy is still served.
	if _, err := repo.CreateExpense(ctx, newExpense(1, "Coffee", rupees(30), core.Food, today)); err != nil {
		t.Fatal(err)
	}
	cached, _ := svc.Build(ctx, 1, q)
	if cached.Total != first.Total {
		t.Errorf("expected cached total %v, got %v", first.Total, cached.Total)
	}

	if _, err := expenses.Create(ctx, newExpense(1, "Cake", rupees(50), core.Food, today)); err != nil {
		t.Fatal(err)
	}
	fresh, _ := svc.Build(ctx, 1, q)
	if fresh.Total != rupees(100) {
		t.Errorf("total after invalidation = %v, want 100", fresh.Total)
	}
}

func TestRecurringProcessor_ProcessDue(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryRepository()
	expenses := NewExpenseService(repo, nil, nil, "INR")
	p := NewRecurringProcessor(repo, expenses)
	p.location = time.UTC

	monthly := newExpense(1, "Gym", rupees(1500), core.Health, core.NewDate(2024, 1, 31))
	monthly.IsRecurring, monthly.Frequency = true, core.Monthly
	daily := newExpense(1, "Paper", rupees(5), core.Other, core.NewDate(2024, 2, 29))
	daily.IsRecurring, daily.Frequency = true, core.Daily

	tpl, err := expenses.Create(ctx, monthly)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := expenses.Create(ctx, daily); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC)
	n, err := p.ProcessDue(ctx, now)
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("ProcessDue() created %d, want 1 (the daily template is its own first occurrence)", n)
	}

	all, _ := repo.ListExpenses(ctx, 1)
	var copies []core.Expense
	for _, e := range all {
		if e.Text == "Gym" && !e.IsRecurring {
			copies = append(copies, e)
		}
	}
	if len(copies) != 1 || !copies[0].Date.SameDay(core.NewDate(2024, 2, 29)) {
		t.Fatalf("copies = %+v", copies)
	}

	stored, _ := repo.GetExpense(ctx, 1, tpl.ID)
	if !stored.LastOccurrence.SameDay(core.NewDate(2024, 2, 29)) {
		t.Errorf("LastOccurrence = %v", stored.LastOccurrence)
	}

	if n, _ := p.ProcessDue(ctx, now.Add(time.Hour)); n != 0 {
		t.Errorf("second run created %d, want 0", n)
	}
	if n, _ := p.ProcessDue(ctx, now.Add(24*time.Hour)); n != 1 {
		t.Errorf("next day created %d, want the daily copy only", n)
	}
}
