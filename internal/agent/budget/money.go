package budget

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// ParsedBudget is a monetary amount in whole currency units taken from user text.
// Currency is an ISO 4217 code, or "" when the text carried no currency hint.
type ParsedBudget struct {
	Amount   int64
	Currency string
	Raw      string
}

var (
	amountRe = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{2,3})+|\d+)(?:\.(\d+))?(?:\s*(k|thousand|lakhs?|lacs?|crores?|cr|million|mn)\b)?`)

	prefixISORe  = regexp.MustCompile(`(?:^|[^A-Za-z])([A-Za-z]{3})\.?\s*$`)
	suffixISORe  = regexp.MustCompile(`^\s*([A-Za-z]{3})\b`)
	suffixWordRe = regexp.MustCompile(`^\s*(rupees?|rs\.?|dollars?|euros?|pounds?)`)

	// Bare numbers followed by these are counts, not money.
	// Years after a month or a time preposition are dates, not money.
	yearContextRe = regexp.MustCompile(`(?i)\b(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?|by|in|since|until|till|before|after|from|year)\s*,?\s*$`)

	unitRe = regexp.MustCompile(`^\s*(%|percent|pages?|screens?|days?|weeks?|months?|years?|hours?|hrs?|users?|people|products?|items?|languages?|st\b|nd\b|rd\b|th\b)`)
)

var symbolCurrency = []struct {
	symbol string
	code   string
}{
	{"₹", "INR"},
	{"rs.", "INR"},
	{"rs", "INR"},
	{"us$", "USD"},
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
}

var wordCurrency = map[string]string{
	"rupee":   "INR",
	"rupees":  "INR",
	"rs":      "INR",
	"rs.":     "INR",
	"dollar":  "USD",
	"dollars": "USD",
	"euro":    "EUR",
	"euros":   "EUR",
	"pound":   "GBP",
	"pounds":  "GBP",
}

// Lowercase ISO codes are only trusted for these; "try" or "all" are words first.
var lowercaseISO = map[string]bool{
	"inr": true,
	"usd": true,
	"eur": true,
	"gbp": true,
	"aud": true,
	"cad": true,
	"sgd": true,
	"aed": true,
}

var multipliers = map[string]float64{
	"k":        1e3,
	"thousand": 1e3,
	"lakh":     1e5,
	"lakhs":    1e5,
	"lac":      1e5,
	"lacs":     1e5,
	"million":  1e6,
	"mn":       1e6,
	"crore":    1e7,
	"crores":   1e7,
	"cr":       1e7,
}

const (
	// minBareAmount is the smallest number accepted without a currency hint or multiplier.
	minBareAmount = 100
	// maxAmount bounds every parsed amount; anything larger is not a budget.
	maxAmount = 1e15
	// Ungrouped digit runs this long are phone or reference numbers.
	maxBareDigits = 10
)

// ParseAmount extracts the budget stated in text. A number carrying a currency hint
// or a multiplier wins over an earlier bare number.
func ParseAmount(text string) (ParsedBudget, bool) {
	var (
		fallback ParsedBudget
		found    bool
	)
	for _, loc := range amountRe.FindAllStringSubmatchIndex(text, -1) {
		before := text[:loc[0]]
		after := text[loc[1]:]

		value, ok := parseNumber(text[loc[2]:loc[3]], submatch(text, loc, 2))
		if !ok {
			continue
		}
		suffix := strings.ToLower(submatch(text, loc, 3))
		if m, ok := multipliers[suffix]; ok {
			value *= m
		}
		if value > maxAmount {
			continue
		}

		code := prefixCurrency(before)
		if code == "" {
			code = suffixCurrency(after)
		}
		hinted := code != "" || suffix != ""

		if !hinted {
			if endsWithLetter(before) || unitRe.MatchString(strings.ToLower(after)) || value < minBareAmount {
				continue
			}
			if nonMonetary(text[loc[2]:loc[3]], submatch(text, loc, 2), before) {
				continue
			}
		}

		pb := ParsedBudget{
			Amount:   int64(math.Round(value)),
			Currency: code,
			Raw:      strings.TrimSpace(text),
		}
		if hinted {
			return pb, true
		}
		if !found {
			fallback, found = pb, true
		}
	}
	return fallback, found
}

// nonMonetary reports bare numbers that read as phone numbers or years.
func nonMonetary(whole, frac, before string) bool {
	if frac != "" || strings.Contains(whole, ",") {
		return false
	}
	if len(whole) >= maxBareDigits {
		return true
	}
	if len(whole) == 4 {
		year, _ := strconv.Atoi(whole)
		return year >= 1900 && year <= 2100 && yearContextRe.MatchString(before)
	}
	return false
}

func submatch(s string, loc []int, group int) string {
	if loc[2*group] < 0 {
		return ""
	}
	return s[loc[2*group]:loc[2*group+1]]
}

func parseNumber(whole, frac string) (float64, bool) {
	n := strings.ReplaceAll(whole, ",", "")
	if frac != "" {
		n += "." + frac
	}
	v, err := strconv.ParseFloat(n, 64)
	if err != nil || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

func prefixCurrency(before string) string {
	trimmed := strings.ToLower(strings.TrimRight(before, " \t"))
	for _, sc := range symbolCurrency {
		if strings.HasSuffix(trimmed, sc.symbol) {
			// "rs" must stand alone, not end a word like "hours".
			if sc.symbol[0] >= 'a' && sc.symbol[0] <= 'z' && endsWithLetter(strings.TrimSuffix(trimmed, sc.symbol)) {
				continue
			}
			return sc.code
		}
	}
	if m := prefixISORe.FindStringSubmatch(before); m != nil {
		return isoCode(m[1])
	}
	return ""
}

func suffixCurrency(after string) string {
	if m := suffixWordRe.FindStringSubmatch(strings.ToLower(after)); m != nil {
		return wordCurrency[m[1]]
	}
	if m := suffixISORe.FindStringSubmatch(after); m != nil {
		return isoCode(m[1])
	}
	return ""
}

func isoCode(s string) string {
	if s != strings.ToUpper(s) && !lowercaseISO[strings.ToLower(s)] {
		return ""
	}
	unit, err := currency.ParseISO(strings.ToUpper(s))
	if err != nil {
		return ""
	}
	return unit.String()
}

func endsWithLetter(s string) bool {
	if s == "" {
		return false
	}
	c := s[len(s)-1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
