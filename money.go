package cadobr

import (
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// CruzeiroRealFactor converts an amount in cruzeiros reais (CR$) to reais (R$).
var CruzeiroRealFactor = decimal.NewFromInt(2750)

// Currency of an amount found in a text.
type Currency string

const (
	BRL Currency = "BRL"
	CRR Currency = "CR$" // cruzeiro real, replaced by the real in 1994
)

// Cents is an amount of reais expressed in centavos.
type Cents int64

// brl is the never nil go-money currency for reais.
func brl() *money.Currency { return money.New(0, money.BRL).Currency() }

// canonical renders like BRL but without grapheme, "93.354,27".
var canonical = func() *money.Formatter {
	cur := brl()
	return money.NewFormatter(cur.Fraction, cur.Decimal, cur.Thousand, "", "1")
}()

// String returns the canonical rendering of c: dotted thousands, decimal comma, no symbol.
func (c Cents) String() string { return canonical.Format(int64(c)) }

// Display returns c with the currency symbol, "R$93.354,27".
func (c Cents) Display() string { return brl().Formatter().Format(int64(c)) }

// Decimal returns c in reais.
func (c Cents) Decimal() decimal.Decimal { return decimal.New(int64(c), -2) }

// CentsOf rounds a value in reais to centavos, half away from zero.
func CentsOf(reais decimal.Decimal) Cents {
	return Cents(reais.Round(2).Shift(2).IntPart())
}

// Amount patterns tried in order. Brazilian notation wins over US notation,
// and an integer, possibly with grouped thousands, is the last resort.
var amountREs = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,3}(?:\.\d{3})+,\d{2}|\d+,\d{2}`),
	regexp.MustCompile(`\d{1,3}(?:,\d{3})+\.\d{2}|\d+\.\d{2}`),
	regexp.MustCompile(`\d{1,3}(?:\.\d{3})+|\d+`),
}

// DetectCurrency reports the currency a text is written in.
// An explicit "CR$" marks cruzeiros reais, anything else is read as reais.
func DetectCurrency(s string) Currency {
	if strings.Contains(strings.ToUpper(s), "CR$") {
		return CRR
	}
	return BRL
}

// ParseDecimal extracts the first amount of s, ignoring the surrounding text
// (spelled-out amounts, symbols). A minus sign glued to the amount is kept.
// It returns false if s holds no number.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	for i, re := range amountREs {
		for _, loc := range re.FindAllStringIndex(s, -1) {
			// a decimal match must end the number, "1,23" in "1,234.56" does not
			if i < 2 && continues(s, loc[1]) {
				continue
			}
			m := s[loc[0]:loc[1]]
			switch i {
			case 0:
				m = strings.ReplaceAll(m, ".", "")
				m = strings.Replace(m, ",", ".", 1)
			case 1:
				m = strings.ReplaceAll(m, ",", "")
			case 2:
				m = strings.ReplaceAll(m, ".", "")
			}
			d, err := decimal.NewFromString(m)
			if err != nil {
				return decimal.Zero, false
			}
			if negative(s, loc[0]) {
				d = d.Neg()
			}
			return d, true
		}
	}
	return decimal.Zero, false
}

// continues reports whether the number ending at s[end] goes on with a digit
// or a separator followed by a digit.
func continues(s string, end int) bool {
	if end >= len(s) {
		return false
	}
	if isDigit(s[end]) {
		return true
	}
	return (s[end] == '.' || s[end] == ',') && end+1 < len(s) && isDigit(s[end+1])
}

// negative reports whether the number starting at s[start] carries a minus
// sign, not a hyphen between two words or numbers.
func negative(s string, start int) bool {
	if start == 0 || s[start-1] != '-' {
		return false
	}
	if start == 1 {
		return true
	}
	c := s[start-2]
	return !isDigit(c) && !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z')
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// ParseAmount reads the first amount of s, converts cruzeiros reais to reais,
// and rounds to centavos.
func ParseAmount(s string) (Cents, Currency, bool) {
	d, ok := ParseDecimal(s)
	if !ok {
		return 0, "", false
	}
	cur := DetectCurrency(s)
	if cur == CRR {
		d = d.Div(CruzeiroRealFactor)
	}
	return CentsOf(d), cur, true
}

// NormalizeAmount returns the canonical rendering of the amount in s.
func NormalizeAmount(s string) (string, bool) {
	c, _, ok := ParseAmount(s)
	if !ok {
		return "", false
	}
	return c.String(), true
}
