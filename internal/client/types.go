package client

import (
	"fmt"
	"time"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// User is the account as the API reports it. Signup responses carry no
// username.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}

type Split struct {
	Participant string  `json:"participant"`
	Amount      float64 `json:"amount"`
}

// Expense is the wire form of an expense. The same shape is sent on create
// and update; the server ignores ID and CreatedAt there.
type Expense struct {
	ID            int64     `json:"id,omitempty"`
	Title         string    `json:"title"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency,omitempty"`
	Category      string    `json:"category"`
	Date          string    `json:"date"`
	Note          string    `json:"note,omitempty"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Merchant      string    `json:"merchant,omitempty"`
	IsRecurring   bool      `json:"is_recurring,omitempty"`
	Frequency     string    `json:"frequency,omitempty"`
	IsSplit       bool      `json:"is_split,omitempty"`
	Splits        []Split   `json:"splits,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// Core converts the wire form into the domain expense.
func (e Expense) Core() (core.Expense, error) {
	date, err := core.ParseDate(e.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d: %w", e.ID, err)
	}
	out := core.Expense{
		ID:            e.ID,
		Text:          e.Title,
		Amount:        core.MoneyFromFloat(e.Amount),
		Currency:      e.Currency,
		Category:      core.Category(e.Category),
		Date:          date,
		PaymentMethod: core.PaymentMethod(e.PaymentMethod),
		Note:          e.Note,
		Tags:          e.Tags,
		Merchant:      e.Merchant,
		IsRecurring:   e.IsRecurring,
		Frequency:     core.Frequency(e.Frequency),
		IsSplit:       e.IsSplit,
		CreatedAt:     e.CreatedAt,
	}
	for _, s := range e.Splits {
		out.Splits = append(out.Splits, core.SplitShare{Participant: s.Participant, Amount: core.MoneyFromFloat(s.Amount)})
	}
	return out, nil
}

// ExpenseFromCore builds the wire form of a domain expense.
func ExpenseFromCore(e core.Expense) Expense {
	out := Expense{
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
	for _, s := range e.Splits {
		out.Splits = append(out.Splits, Split{Participant: s.Participant, Amount: s.Amount.Float()})
	}
	return out
}

type Budget struct {
	ID       int64   `json:"id,omitempty"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Month    string  `json:"month"`
}

type Goal struct {
	ID           int64     `json:"id,omitempty"`
	Name         string    `json:"name"`
	TargetAmount float64   `json:"target_amount"`
	SavedAmount  float64   `json:"saved_amount"`
	Deadline     *string   `json:"deadline,omitempty"`
	Progress     float64   `json:"progress,omitempty"`
	Completed    bool      `json:"completed,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Export is a downloaded CSV file. Notice is set instead when the filtered
// set was empty.
type Export struct {
	Filename string
	Data     []byte
	Notice   string
}

type authResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}
