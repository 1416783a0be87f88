package core

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Shopping      Category = "Shopping"
	Bills         Category = "Bills"
	Entertainment Category = "Entertainment"
	Health        Category = "Health"
	Other         Category = "Other"
)

const (
	Cash         PaymentMethod = "Cash"
	CreditCard   PaymentMethod = "Credit Card"
	DebitCard    PaymentMethod = "Debit Card"
	BankTransfer PaymentMethod = "Bank Transfer"
	UPI          PaymentMethod = "UPI"
)

// MinPasswordLength is the shortest password accepted at signup and on change.
const MinPasswordLength = 6

type (
	Frequency     string
	Category      string
	PaymentMethod string

	// SplitShare is one participant's part of a split expense.
	SplitShare struct {
		Participant string
		Amount      Money
	}

	Expense struct {
		ID            int64
		UserID        int64
		Text          string
		Amount        Money
		Currency      string
		Category      Category
		Date          Date
		PaymentMethod PaymentMethod
		Note          string
		Tags          []string
		Merchant      string
		IsRecurring   bool
		Frequency     Frequency
		IsSplit       bool
		Splits        []SplitShare
		// LastOccurrence is the date of the most recent copy produced from a
		// recurring expense. Zero until the first copy is made.
		LastOccurrence Date
		CreatedAt      time.Time
	}

	Budget struct {
		ID       int64
		UserID   int64
		Category Category
		Amount   Money
		Month    MonthKey
	}

	Goal struct {
		ID           int64
		UserID       int64
		Name         string
		TargetAmount Money
		SavedAmount  Money
		Deadline     Date // zero when no deadline
		CreatedAt    time.Time
	}

	User struct {
		ID           int64
		Email        string
		PasswordHash string
		Username     string
		CreatedAt    time.Time
	}
)

// Categories lists every expense category in display order.
var Categories = []Category{Food, Transport, Shopping, Bills, Entertainment, Health, Other}

// PaymentMethods lists every accepted payment method in display order.
var PaymentMethods = []PaymentMethod{Cash, CreditCard, DebitCard, BankTransfer, UPI}

// Frequencies lists every recurrence frequency.
var Frequencies = []Frequency{Daily, Weekly, Monthly, Yearly}

var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrNegativeAmount       = errors.New("amount cannot be negative")
	ErrAmountTooLarge       = errors.New("amount is too large")
	ErrEmptyDescription     = errors.New("title is required")
	ErrDescriptionTooLong   = errors.New("title too long (max 200 characters)")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidFrequency     = errors.New("invalid recurrence frequency")
	ErrMissingDate          = errors.New("date is required")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidMonth         = errors.New("invalid month, expected YYYY-MM")
	ErrInvalidCurrency      = errors.New("invalid currency")
	ErrInvalidSplit         = errors.New("invalid split shares")
	ErrEmptyGoalName        = errors.New("goal name is required")
	ErrInvalidTarget        = errors.New("target amount must be greater than zero")
	ErrInvalidSaved         = errors.New("saved amount cannot be negative")
	ErrPasswordTooShort     = errors.New("Password must be at least 6 characters")
	ErrMissingCredentials   = errors.New("Email and password are required")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidFilter        = errors.New("invalid filter")
)

var validationErrors = []error{
	ErrInvalidAmount, ErrNegativeAmount, ErrAmountTooLarge, ErrEmptyDescription,
	ErrDescriptionTooLong, ErrInvalidCategory, ErrInvalidPaymentMethod, ErrInvalidFrequency,
	ErrMissingDate, ErrInvalidDate, ErrInvalidMonth, ErrInvalidCurrency, ErrInvalidSplit,
	ErrEmptyGoalName, ErrInvalidTarget, ErrInvalidSaved, ErrPasswordTooShort,
	ErrMissingCredentials, ErrInvalidEmail, ErrInvalidFilter,
}

// IsValidation reports whether err is (or wraps) a domain validation error.
// Validation errors are rejected before any storage call.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches s against the known categories ignoring case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, known := range Categories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", ErrInvalidCategory
}

func (p PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePaymentMethod matches s against the known payment methods ignoring case.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.TrimSpace(s)
	for _, known := range PaymentMethods {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", ErrInvalidPaymentMethod
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// ParseFrequency matches s against the known frequencies ignoring case.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", ErrInvalidFrequency
	}
	return f, nil
}

// Label returns the capitalized frequency name ("Monthly").
func (f Frequency) Label() string {
	if f == "" {
		return ""
	}
	return strings.ToUpper(string(f[:1])) + string(f[1:])
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Text)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Text) > 200 {
		return ErrDescriptionTooLong
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	if !e.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	if e.IsRecurring && !e.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if e.IsSplit {
		if err := validateSplits(e.Amount, e.Splits); err != nil {
			return err
		}
	}
	return nil
}

func validateSplits(total Money, shares []SplitShare) error {
	if len(shares) == 0 {
		return ErrInvalidSplit
	}
	var sum int64
	for _, s := range shares {
		if strings.TrimSpace(s.Participant) == "" || s.Amount.Cents < 0 {
			return ErrInvalidSplit
		}
		sum += s.Amount.Cents
	}
	if sum > total.Cents {
		return ErrInvalidSplit
	}
	return nil
}

func (b Budget) Validate() error {
	if !b.Category.Valid() {
		return ErrInvalidCategory
	}
	if b.Amount.Cents < 0 {
		return ErrNegativeAmount
	}
	if b.Month.IsZero() {
		return ErrInvalidMonth
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyGoalName
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidTarget
	}
	if g.SavedAmount.Cents < 0 {
		return ErrInvalidSaved
	}
	return nil
}

// Progress returns saved/target in [0, 1].
func (g Goal) Progress() float64 {
	if g.TargetAmount.Cents <= 0 {
		return 0
	}
	p := float64(g.SavedAmount.Cents) / float64(g.TargetAmount.Cents)
	if p > 1 {
		return 1
	}
	return p
}

func (g Goal) Completed() bool {
	return g.TargetAmount.Cents > 0 && g.SavedAmount.Cents >= g.TargetAmount.Cents
}

// ValidateCredentials checks signup input before any hashing or storage.
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return ErrMissingCredentials
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return ValidatePassword(password)
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
