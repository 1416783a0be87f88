// Package receipt guesses expense fields from merchant names and from text
// recognized on receipt images. Everything here is best effort: callers fall
// back to manual entry whenever a field is missing.
package receipt

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sindhu2707/expense-tracker/internal/core"
)

// MerchantRule maps a lower-case key to a category. A key matches at the start
// of a word, so stems like "pharma" cover "pharmacy". Keys of shortKey runes or
// fewer must match a whole word.
type MerchantRule struct {
	Key      string
	Category core.Category
}

// MerchantRules is evaluated in order; the first matching key wins, so more
// specific keys come before generic ones.
var MerchantRules = []MerchantRule{
	{"uber eats", core.Food},
	{"swiggy", core.Food},
	{"zomato", core.Food},
	{"domino", core.Food},
	{"mcdonald", core.Food},
	{"kfc", core.Food},
	{"starbucks", core.Food},
	{"cafe", core.Food},
	{"restaurant", core.Food},
	{"bakery", core.Food},
	{"grocer", core.Food},
	{"bigbasket", core.Food},
	{"blinkit", core.Food},
	{"uber", core.Transport},
	{"ola", core.Transport},
	{"rapido", core.Transport},
	{"metro", core.Transport},
	{"irctc", core.Transport},
	{"railway", core.Transport},
	{"airline", core.Transport},
	{"indigo", core.Transport},
	{"petrol", core.Transport},
	{"fuel", core.Transport},
	{"parking", core.Transport},
	{"amazon", core.Shopping},
	{"flipkart", core.Shopping},
	{"myntra", core.Shopping},
	{"ikea", core.Shopping},
	{"mall", core.Shopping},
	{"netflix", core.Entertainment},
	{"spotify", core.Entertainment},
	{"prime video", core.Entertainment},
	{"hotstar", core.Entertainment},
	{"bookmyshow", core.Entertainment},
	{"cinema", core.Entertainment},
	{"pvr", core.Entertainment},
	{"pharma", core.Health},
	{"apollo", core.Health},
	{"hospital", core.Health},
	{"clinic", core.Health},
	{"medical", core.Health},
	{"gym", core.Health},
	{"electric", core.Bills},
	{"water", core.Bills},
	{"broadband", core.Bills},
	{"airtel", core.Bills},
	{"jio", core.Bills},
	{"vodafone", core.Bills},
	{"insurance", core.Bills},
	{"rent", core.Bills},
}

const shortKey = 4

// GuessCategory returns the category of the first rule whose key occurs in
// text (case-insensitive).
func GuessCategory(text string) (core.Category, bool) {
	return guess(MerchantRules, text)
}

func guess(rules []MerchantRule, text string) (core.Category, bool) {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return "", false
	}
	for _, r := range rules {
		if containsKey(lower, r.Key) {
			return r.Category, true
		}
	}
	return "", false
}

func containsKey(text, key string) bool {
	whole := utf8.RuneCountInString(key) <= shortKey
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], key)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(key)
		if wordStart(text, start) && (!whole || wordEnd(text, end)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return false
}

func wordStart(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func wordEnd(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
