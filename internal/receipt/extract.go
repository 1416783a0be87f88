package receipt

import (
	"regexp"
	"strings"
	"time"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// Extraction holds whatever could be read from a receipt. Zero fields were
// not found.
type Extraction struct {
	Amount   core.Money
	Date     core.Date
	Merchant string
	Category core.Category
}

// Found reports whether anything useful was extracted.
func (x Extraction) Found() bool {
	return x.Amount.Cents > 0 || !x.Date.IsZero() || x.Merchant != ""
}

var (
	totalLine = regexp.MustCompile(`(?i)(grand\s*total|total\s*amount|amount\s*due|net\s*amount|total)\D{0,12}?(\d[\d,]*(?:\.\d{1,2})?)`)
	anyAmount = regexp.MustCompile(`(?:₹|rs\.?|inr|\$|€|£)?\s*(\d[\d,]*\.\d{2})`)
	isoDate   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	dmyDate   = regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})\b`)
	hasLetter = regexp.MustCompile(`[A-Za-z]{3,}`)
)

// Extract reads amount, date and merchant from recognized receipt text.
// It never fails; unrecognized fields stay zero.
func Extract(text string) Extraction {
	var x Extraction
	x.Amount = extractAmount(text)
	x.Date = extractDate(text)
	x.Merchant = extractMerchant(text)
	// The merchant line is the most reliable hint; item lines only break ties.
	if c, ok := GuessCategory(x.Merchant); ok {
		x.Category = c
	} else if c, ok := GuessCategory(text); ok {
		x.Category = c
	}
	return x
}

func extractAmount(text string) core.Money {
	// The last "total" line usually follows subtotals and taxes.
	if matches := totalLine.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		if m, ok := parseAmount(matches[len(matches)-1][2]); ok {
			return m
		}
	}
	// Otherwise the largest decimal amount on the receipt.
	var best core.Money
	for _, match := range anyAmount.FindAllStringSubmatch(strings.ToLower(text), -1) {
		if m, ok := parseAmount(match[1]); ok && m.Cents > best.Cents {
			best = m
		}
	}
	return best
}

func parseAmount(s string) (core.Money, bool) {
	s = strings.TrimRight(s, ",")
	// A lone comma followed by two digits is a decimal separator ("12,50");
	// any other comma groups digits ("1,24,999.00").
	if i := strings.LastIndex(s, ","); i >= 0 {
		if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") && len(s)-i == 3 {
			s = s[:i] + "." + s[i+1:]
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, false
	}
	return core.Money{Cents: cents}, true
}

func extractDate(text string) core.Date {
	if m := isoDate.FindStringSubmatch(text); m != nil {
		if d, err := core.ParseDate(m[0]); err == nil {
			return d
		}
	}
	if m := dmyDate.FindStringSubmatch(text); m != nil {
		year := m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		day, month := pad(m[1]), pad(m[2])
		if t, err := time.Parse("2006-01-02", year+"-"+month+"-"+day); err == nil {
			return core.DateOf(t)
		}
	}
	return core.Date{}
}

func pad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

const maxMerchantRunes = 60

// extractMerchant takes the first line that looks like a name rather than
// numbers or a date.
func extractMerchant(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !hasLetter.MatchString(line) {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "receipt") || strings.Contains(lower, "invoice") || strings.Contains(lower, "tax") {
			continue
		}
		if runes := []rune(line); len(runes) > maxMerchantRunes {
			line = strings.TrimSpace(string(runes[:maxMerchantRunes]))
		}
		return line
	}
	return ""
}
