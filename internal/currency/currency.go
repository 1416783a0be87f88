// Package currency holds the static currency symbol and exchange-rate tables
// used for display. Stored amounts are never converted.
package currency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// Info describes one supported currency.
type Info struct {
	Code   string
	Symbol string
	// PerUSD is how many units of this currency one US dollar buys.
	PerUSD decimal.Decimal
}

var table = map[string]Info{
	"USD": {Code: "USD", Symbol: "$", PerUSD: decimal.RequireFromString("1")},
	"EUR": {Code: "EUR", Symbol: "€", PerUSD: decimal.RequireFromString("0.92")},
	"GBP": {Code: "GBP", Symbol: "£", PerUSD: decimal.RequireFromString("0.79")},
	"INR": {Code: "INR", Symbol: "₹", PerUSD: decimal.RequireFromString("83.12")},
	"JPY": {Code: "JPY", Symbol: "¥", PerUSD: decimal.RequireFromString("149.50")},
	"CAD": {Code: "CAD", Symbol: "C$", PerUSD: decimal.RequireFromString("1.36")},
	"AUD": {Code: "AUD", Symbol: "A$", PerUSD: decimal.RequireFromString("1.53")},
}

// Normalize upper-cases and trims a currency code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Known reports whether code is in the table.
func Known(code string) bool {
	_, ok := table[Normalize(code)]
	return ok
}

// Symbol returns the display symbol for code. Unknown codes are returned
// as-is so the amount stays readable.
func Symbol(code string) string {
	if info, ok := table[Normalize(code)]; ok {
		return info.Symbol
	}
	return Normalize(code)
}

// Lookup returns the table entry for code.
func Lookup(code string) (Info, bool) {
	info, ok := table[Normalize(code)]
	return info, ok
}

// All returns every supported currency ordered by code.
func All() []Info {
	out := make([]Info, 0, len(table))
	for _, info := range table {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Convert translates m from one currency to another through USD using the
// static rate table. Same-currency conversion returns m unchanged.
func Convert(m core.Money, from, to string) (core.Money, error) {
	from, to = Normalize(from), Normalize(to)
	if from == to {
		return m, nil
	}
	src, ok := table[from]
	if !ok {
		return core.Money{}, fmt.Errorf("%w: %s", core.ErrInvalidCurrency, from)
	}
	dst, ok := table[to]
	if !ok {
		return core.Money{}, fmt.Errorf("%w: %s", core.ErrInvalidCurrency, to)
	}
	usd := m.Decimal().Div(src.PerUSD)
	return core.MoneyFromDecimal(usd.Mul(dst.PerUSD)), nil
}

var printer = message.NewPrinter(language.English)

// Format renders m with the currency symbol and grouping ("₹1,234.50").
func Format(m core.Money, code string) string {
	sign := ""
	if m.Cents < 0 {
		sign = "-"
		m = core.Money{Cents: -m.Cents}
	}
	return sign + Symbol(code) + printer.Sprintf("%.2f", m.Float())
}
