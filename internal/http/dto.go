package http

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sindhu2707/expense-tracker/internal/aggregate"
	"github.com/sindhu2707/expense-tracker/internal/budget"
	"github.com/sindhu2707/expense-tracker/internal/core"
	"github.com/sindhu2707/expense-tracker/internal/currency"
	"github.com/sindhu2707/expense-tracker/internal/receipt"
	"github.com/sindhu2707/expense-tracker/internal/services"
)

// amountField accepts a JSON number or a numeric string. Parse errors are
// kept so handlers can report them as validation failures.
type amountField struct {
	set   bool
	money core.Money
	err   error
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	a.set = true
	cents, err := core.ParseNonNegativeCents(s)
	if err != nil {
		a.err = err
		return nil
	}
	a.money = core.Money{Cents: cents}
	return nil
}

// present reports a supplied, non-zero amount.
func (a amountField) present() bool {
	return a.set && (a.err != nil || a.money.Cents != 0)
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func newUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Username: u.Username}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username string `json:"username"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type splitRequest struct {
	Participant string      `json:"participant"`
	Amount      amountField `json:"amount"`
}

type expenseRequest struct {
	Title         string         `json:"title"`
	Amount        amountField    `json:"amount"`
	Currency      string         `json:"currency"`
	Category      string         `json:"category"`
	Date          string         `json:"date"`
	Note          string         `json:"note"`
	PaymentMethod string         `json:"payment_method"`
	Tags          []string       `json:"tags"`
	Merchant      string         `json:"merchant"`
	IsRecurring   bool           `json:"is_recurring"`
	Frequency     string         `json:"frequency"`
	IsSplit       bool           `json:"is_split"`
	Splits        []splitRequest `json:"splits"`
}

const msgExpenseRequired = "title, amount, category and date are required"

// toExpense validates the request shape and converts it. Business rules are
// left to the expense service.
func (req expenseRequest) toExpense(userID int64) (core.Expense, error) {
	if err := req.Amount.err; err != nil {
		return core.Expense{}, err
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		UserID:      userID,
		Text:        sanitizeInput(req.Title),
		Amount:      req.Amount.money,
		Currency:    req.Currency,
		Category:    category,
		Date:        date,
		Note:        sanitizeInput(req.Note),
		Tags:        cleanTags(req.Tags),
		Merchant:    sanitizeInput(req.Merchant),
		IsRecurring: req.IsRecurring,
		IsSplit:     req.IsSplit,
	}
	if strings.TrimSpace(req.PaymentMethod) != "" {
		if e.PaymentMethod, err = core.ParsePaymentMethod(req.PaymentMethod); err != nil {
			return core.Expense{}, err
		}
	}
	if req.IsRecurring {
		if e.Frequency, err = core.ParseFrequency(req.Frequency); err != nil {
			return core.Expense{}, err
		}
	}
	for _, s := range req.Splits {
		if s.Amount.err != nil {
			return core.Expense{}, core.ErrInvalidSplit
		}
		e.Splits = append(e.Splits, core.SplitShare{
			Participant: sanitizeInput(s.Participant),
			Amount:      s.Amount.money,
		})
	}
	return e, nil
}

func (req expenseRequest) missingRequired() bool {
	return strings.TrimSpace(req.Title) == "" || !req.Amount.present() ||
		strings.TrimSpace(req.Category) == "" || strings.TrimSpace(req.Date) == ""
}

func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = sanitizeInput(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

type splitResponse struct {
	Participant string  `json:"participant"`
	Amount      float64 `json:"amount"`
}

type expenseResponse struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Amount        float64         `json:"amount"`
	Currency      string          `json:"currency"`
	Category      string          `json:"category"`
	Date          string          `json:"date"`
	Note          string          `json:"note"`
	PaymentMethod string          `json:"payment_method"`
	Tags          []string        `json:"tags"`
	Merchant      string          `json:"merchant"`
	IsRecurring   bool            `json:"is_recurring"`
	Frequency     string          `json:"frequency,omitempty"`
	IsSplit       bool            `json:"is_split"`
	Splits        []splitResponse `json:"splits,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func newExpenseResponse(e core.Expense) expenseResponse {
	resp := expenseResponse{
		ID:            e.ID,
		Title:         e.Text,
		Amount:        e.Amount.Float(),
		Currency:      e.Currency,
		Category:      string(e.Category),
		Date:          e.Date.String(),
		Note:          e.Note,
		PaymentMethod: string(e.PaymentMethod),
		Tags:          e.Tags,
		Merchant:      e.Merchant,
		IsRecurring:   e.IsRecurring,
		Frequency:     string(e.Frequency),
		IsSplit:       e.IsSplit,
		CreatedAt:     e.CreatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	for _, s := range e.Splits {
		resp.Splits = append(resp.Splits, splitResponse{Participant: s.Participant, Amount: s.Amount.Float()})
	}
	return resp
}

func newExpenseResponses(expenses []core.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, newExpenseResponse(e))
	}
	return out
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

type budgetRequest struct {
	Category string      `json:"category"`
	Amount   amountField `json:"amount"`
	Month    string      `json:"month"`
}

const msgBudgetRequired = "category, amount and month are required"

func (req budgetRequest) toBudget(userID int64) (core.Budget, error) {
	if err := req.Amount.err; err != nil {
		return core.Budget{}, err
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		return core.Budget{}, err
	}
	month, err := core.ParseMonthKey(req.Month)
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{UserID: userID, Category: category, Amount: req.Amount.money, Month: month}, nil
}

type budgetResponse struct {
	ID       int64   `json:"id"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Month    string  `json:"month"`
}

func newBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{ID: b.ID, Category: string(b.Category), Amount: b.Amount.Float(), Month: b.Month.String()}
}

type budgetStatusResponse struct {
	Category  string  `json:"category"`
	Cap       float64 `json:"cap"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
	Percent   float64 `json:"percent"`
	Over      bool    `json:"over"`
	OverBy    float64 `json:"over_by"`
	Level     string  `json:"level"`
	Notice    string  `json:"notice,omitempty"`
}

func newBudgetStatusResponses(statuses []budget.Status) []budgetStatusResponse {
	out := make([]budgetStatusResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, budgetStatusResponse{
			Category:  string(s.Category),
			Cap:       s.Cap.Float(),
			Spent:     s.Spent.Float(),
			Remaining: s.Remaining.Float(),
			Percent:   s.Percent,
			Over:      s.Over,
			OverBy:    s.OverBy.Float(),
			Level:     string(s.Level),
			Notice:    s.Notice,
		})
	}
	return out
}

func capsResponse(caps budget.Caps) map[string]float64 {
	out := make(map[string]float64, len(caps))
	for c, amount := range caps {
		out[string(c)] = amount.Float()
	}
	return out
}

type effectiveBudgetsResponse struct {
	Month      string                 `json:"month"`
	Rollover   bool                   `json:"rollover"`
	Configured map[string]float64     `json:"configured"`
	Caps       map[string]float64     `json:"caps"`
	Total      float64                `json:"total"`
	Statuses   []budgetStatusResponse `json:"statuses"`
}

func newEffectiveBudgetsResponse(eb services.EffectiveBudgets) effectiveBudgetsResponse {
	return effectiveBudgetsResponse{
		Month:      eb.Month.String(),
		Rollover:   eb.Rollover,
		Configured: capsResponse(eb.Configured),
		Caps:       capsResponse(eb.Caps),
		Total:      eb.Caps.Total().Float(),
		Statuses:   newBudgetStatusResponses(eb.Statuses),
	}
}

type goalRequest struct {
	Name         string      `json:"name"`
	TargetAmount amountField `json:"target_amount"`
	SavedAmount  amountField `json:"saved_amount"`
	Deadline     string      `json:"deadline"`
}

const msgGoalRequired = "name and target_amount are required"

func (req goalRequest) toGoal(userID int64) (core.Goal, error) {
	if err := req.TargetAmount.err; err != nil {
		return core.Goal{}, err
	}
	if req.SavedAmount.err != nil {
		return core.Goal{}, core.ErrInvalidSaved
	}
	g := core.Goal{
		UserID:       userID,
		Name:         sanitizeInput(req.Name),
		TargetAmount: req.TargetAmount.money,
		SavedAmount:  req.SavedAmount.money,
	}
	if strings.TrimSpace(req.Deadline) != "" {
		deadline, err := core.ParseDate(req.Deadline)
		if err != nil {
			return core.Goal{}, err
		}
		g.Deadline = deadline
	}
	return g, nil
}

type goalResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	TargetAmount float64   `json:"target_amount"`
	SavedAmount  float64   `json:"saved_amount"`
	Deadline     *string   `json:"deadline"`
	Progress     float64   `json:"progress"`
	Completed    bool      `json:"completed"`
	CreatedAt    time.Time `json:"created_at"`
}

func newGoalResponse(g core.Goal) goalResponse {
	resp := goalResponse{
		ID:           g.ID,
		Name:         g.Name,
		TargetAmount: g.TargetAmount.Float(),
		SavedAmount:  g.SavedAmount.Float(),
		Progress:     g.Progress(),
		Completed:    g.Completed(),
		CreatedAt:    g.CreatedAt,
	}
	if !g.Deadline.IsZero() {
		deadline := g.Deadline.String()
		resp.Deadline = &deadline
	}
	return resp
}

type categoryTotalResponse struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type velocityResponse struct {
	DaysPassed     int     `json:"days_passed"`
	DaysInMonth    int     `json:"days_in_month"`
	DaysRemaining  int     `json:"days_remaining"`
	PctMonthPassed float64 `json:"pct_month_passed"`
	PctBudgetUsed  float64 `json:"pct_budget_used"`
	VelocityDiff   float64 `json:"velocity_diff"`
	ProjectedTotal float64 `json:"projected_total"`
	Band           string  `json:"band"`
}

type dayTotalResponse struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type heatmapResponse struct {
	Days            []dayTotalResponse `json:"days"`
	WeekTotal       float64            `json:"week_total"`
	LastWeekTotal   float64            `json:"last_week_total"`
	MonthTotal      float64            `json:"month_total"`
	HighestDay      float64            `json:"highest_day"`
	AverageDaily    float64            `json:"average_daily"`
	WeekOverWeekPct int                `json:"week_over_week_pct"`
}

type monthTotalResponse struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

type trendResponse struct {
	Months         []monthTotalResponse `json:"months"`
	AverageNonZero float64              `json:"average_non_zero"`
}

type dashboardResponse struct {
	Currency  string                  `json:"currency"`
	Symbol    string                  `json:"symbol"`
	Month     string                  `json:"month"`
	Expenses  []expenseResponse       `json:"expenses"`
	Total     float64                 `json:"total"`
	Formatted string                  `json:"total_formatted"`
	Breakdown []categoryTotalResponse `json:"breakdown"`
	Velocity  velocityResponse        `json:"velocity"`
	Budgets   []budgetStatusResponse  `json:"budgets"`
	Heatmap   heatmapResponse         `json:"heatmap"`
	Trend     trendResponse           `json:"trend"`
	Biggest   *expenseResponse        `json:"biggest"`
}

func newDashboardResponse(d services.Dashboard) dashboardResponse {
	resp := dashboardResponse{
		Currency:  d.Currency,
		Symbol:    currency.Symbol(d.Currency),
		Month:     d.Month.String(),
		Expenses:  newExpenseResponses(d.Expenses),
		Total:     d.Total.Float(),
		Formatted: currency.Format(d.Total, d.Currency),
		Breakdown: make([]categoryTotalResponse, 0, len(d.Breakdown)),
		Velocity:  newVelocityResponse(d.Velocity),
		Budgets:   newBudgetStatusResponses(d.Budgets),
		Heatmap: heatmapResponse{
			Days:            make([]dayTotalResponse, 0, len(d.Heatmap.Days)),
			WeekTotal:       d.Heatmap.WeekTotal.Float(),
			LastWeekTotal:   d.Heatmap.LastWeekTotal.Float(),
			MonthTotal:      d.Heatmap.MonthTotal.Float(),
			HighestDay:      d.Heatmap.HighestDay.Float(),
			AverageDaily:    d.Heatmap.AverageDaily.Float(),
			WeekOverWeekPct: d.Heatmap.WeekOverWeekPct,
		},
		Trend: trendResponse{
			Months:         make([]monthTotalResponse, 0, len(d.Trend.Months)),
			AverageNonZero: d.Trend.AverageNonZero.Float(),
		},
	}
	for _, c := range d.Breakdown {
		resp.Breakdown = append(resp.Breakdown, categoryTotalResponse{Category: string(c.Category), Amount: c.Amount.Float()})
	}
	for _, day := range d.Heatmap.Days {
		resp.Heatmap.Days = append(resp.Heatmap.Days, dayTotalResponse{Date: day.Date.String(), Amount: day.Amount.Float()})
	}
	for _, m := range d.Trend.Months {
		resp.Trend.Months = append(resp.Trend.Months, monthTotalResponse{Month: m.Month.String(), Total: m.Total.Float()})
	}
	if d.Biggest != nil {
		biggest := newExpenseResponse(*d.Biggest)
		resp.Biggest = &biggest
	}
	return resp
}

func newVelocityResponse(v aggregate.Velocity) velocityResponse {
	return velocityResponse{
		DaysPassed:     v.DaysPassed,
		DaysInMonth:    v.DaysInMonth,
		DaysRemaining:  v.DaysRemaining,
		PctMonthPassed: v.PctMonthPassed,
		PctBudgetUsed:  v.PctBudgetUsed,
		VelocityDiff:   v.VelocityDiff,
		ProjectedTotal: v.ProjectedTotal.Float(),
		Band:           string(v.Band),
	}
}

type receiptRequest struct {
	Text string `json:"text"`
}

// receiptResponse omits every field that could not be read.
type receiptResponse struct {
	Amount   *float64 `json:"amount,omitempty"`
	Date     string   `json:"date,omitempty"`
	Merchant string   `json:"merchant,omitempty"`
	Category string   `json:"category,omitempty"`
}

func newReceiptResponse(x receipt.Extraction) receiptResponse {
	resp := receiptResponse{
		Date:     x.Date.String(),
		Merchant: x.Merchant,
		Category: string(x.Category),
	}
	if x.Amount.Cents > 0 {
		amount := x.Amount.Float()
		resp.Amount = &amount
	}
	return resp
}

type currencyResponse struct {
	Code   string          `json:"code"`
	Symbol string          `json:"symbol"`
	PerUSD decimal.Decimal `json:"per_usd"`
}
