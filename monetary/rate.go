package monetary

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// RateKind is the period of an interest rate found in a text.
type RateKind string

const (
	Annual  RateKind = "anual"
	Monthly RateKind = "mensal"
	Unknown RateKind = "desconhecida" // a rate or a period is written, but not both unambiguously
	Absent  RateKind = "ausente"      // nothing about interest is written
)

var (
	percentRE  = regexp.MustCompile(`(\d{1,3}(?:[.,]\d{1,3})?)\s*%`)
	interestRE = regexp.MustCompile(`juros[^0-9]{0,15}(\d{1,3}(?:[.,]\d{1,3})?)`)
	indexRE    = regexp.MustCompile(`\btr\b|taxa referencial`)

	monthlyMarkers = []string{"ao mês", "ao mes", "mensal"}
	annualMarkers  = []string{"ao ano", "anual", "anuais"}

	maxPercent = decimal.NewFromInt(200)
	hundred    = decimal.NewFromInt(100)
)

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ExtractRate reads an interest rate from a free text like
// "juros de 12,680% efetivos ao ano" and returns it as a fraction (0.1268).
//
// The number is the first percentage of the text, else the first number
// following "juros". The period must be stated exactly once: both or
// neither marker, or a rate outside (0, 200]%, yield Unknown.
func ExtractRate(text string) (decimal.Decimal, RateKind) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return decimal.Zero, Absent
	}
	monthly := containsAny(lower, monthlyMarkers)
	annual := containsAny(lower, annualMarkers)

	m := percentRE.FindStringSubmatch(lower)
	if m == nil {
		m = interestRE.FindStringSubmatch(lower)
	}
	if m == nil {
		if monthly || annual {
			return decimal.Zero, Unknown
		}
		return decimal.Zero, Absent
	}

	percent, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
	if err != nil || !percent.IsPositive() || percent.GreaterThan(maxPercent) {
		return decimal.Zero, Unknown
	}
	rate := percent.Div(hundred)
	switch {
	case monthly && !annual:
		return rate, Monthly
	case annual && !monthly:
		return rate, Annual
	default:
		return decimal.Zero, Unknown
	}
}

// UsesIndex reports whether a rate text asks for correction by the monthly reference rate (TR).
func UsesIndex(text string) bool {
	return indexRE.MatchString(strings.ToLower(text))
}
