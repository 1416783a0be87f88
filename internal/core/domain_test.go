package core

import (
	"errors"
	"fmt"
	"testing"
)

func validExpense() Expense {
	return Expense{
		Text:          "Groceries",
		Amount:        Money{Cents: 5000},
		Currency:      "INR",
		Category:      Food,
		Date:          NewDate(2024, 3, 5),
		PaymentMethod: UPI,
	}
}

func TestExpenseValidate(t *testing.T) {
	if err := validExpense().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Expense)
		want   error
	}{
		{"empty title", func(e *Expense) { e.Text = "  " }, ErrEmptyDescription},
		{"zero amount", func(e *Expense) { e.Amount = Money{} }, ErrInvalidAmount},
		{"unknown category", func(e *Expense) { e.Category = "Travel" }, ErrInvalidCategory},
		{"missing date", func(e *Expense) { e.Date = Date{} }, ErrMissingDate},
		{"unknown payment", func(e *Expense) { e.PaymentMethod = "Cheque" }, ErrInvalidPaymentMethod},
		{"recurring without frequency", func(e *Expense) { e.IsRecurring = true }, ErrInvalidFrequency},
		{"split without shares", func(e *Expense) { e.IsSplit = true }, ErrInvalidSplit},
		{"split over total", func(e *Expense) {
			e.IsSplit = true
			e.Splits = []SplitShare{{Participant: "Asha", Amount: Money{Cents: 6000}}}
		}, ErrInvalidSplit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validExpense()
			tc.mutate(&e)
			if err := e.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	b := Budget{Category: Food, Amount: Money{}, Month: NewMonthKey(2024, 3)}
	if err := b.Validate(); err != nil {
		t.Fatalf("zero budget should be valid, got %v", err)
	}
	b.Amount = Money{Cents: -1}
	if err := b.Validate(); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	b.Amount = Money{Cents: 1}
	b.Month = MonthKey{}
	if err := b.Validate(); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestGoalValidateAndProgress(t *testing.T) {
	g := Goal{Name: "Laptop", TargetAmount: Money{Cents: 100000}}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if g.Progress() != 0 || g.Completed() {
		t.Fatalf("new goal should have no progress")
	}
	g.SavedAmount = Money{Cents: 25000}
	if g.Progress() != 0.25 {
		t.Fatalf("expected 0.25, got %v", g.Progress())
	}
	g.SavedAmount = Money{Cents: 150000}
	if g.Progress() != 1 || !g.Completed() {
		t.Fatalf("over-saved goal should be complete and capped at 1")
	}
	if err := (Goal{Name: "x"}).Validate(); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestValidateCredentials(t *testing.T) {
	cases := []struct {
		email, password string
		want            error
	}{
		{"a@b.co", "secret1", nil},
		{"", "secret1", ErrMissingCredentials},
		{"a@b.co", "", ErrMissingCredentials},
		{"not-an-email", "secret1", ErrInvalidEmail},
		{"a@b.co", "12345", ErrPasswordTooShort},
	}
	for _, tc := range cases {
		if err := ValidateCredentials(tc.email, tc.password); !errors.Is(err, tc.want) {
			t.Errorf("ValidateCredentials(%q, %q) = %v, want %v", tc.email, tc.password, err, tc.want)
		}
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(fmt.Errorf("create expense: %w", ErrInvalidAmount)) {
		t.Fatal("wrapped validation error not recognised")
	}
	if IsValidation(errors.New("disk full")) {
		t.Fatal("arbitrary error classified as validation")
	}
}

func TestParseEnums(t *testing.T) {
	if c, err := ParseCategory("food"); err != nil || c != Food {
		t.Fatalf("ParseCategory(food) = %v, %v", c, err)
	}
	if p, err := ParsePaymentMethod("credit card"); err != nil || p != CreditCard {
		t.Fatalf("ParsePaymentMethod = %v, %v", p, err)
	}
	if f, err := ParseFrequency("Monthly"); err != nil || f != Monthly || f.Label() != "Monthly" {
		t.Fatalf("ParseFrequency = %v, %v", f, err)
	}
	if _, err := ParseCategory("Travel"); err == nil {
		t.Fatal("Travel is not a category")
	}
}
