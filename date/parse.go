package date

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrNoDate is returned when a text does not hold any recognizable date.
var ErrNoDate = errors.New("no date")

// pivot is the highest two-digit year read as 20xx, higher values are read as 19xx.
const pivot = 30

const (
	isoPattern     = `(\d{4})-(\d{1,2})-(\d{1,2})`
	numericPattern = `\b(\d{1,2})[/-](\d{1,2})[/-](\d{4}|\d{2})\b`
	longPattern    = `(?i)\b(\d{1,2})(?:º|o)?\s+de\s+([a-zç]+)\s+de\s+(\d{1,2}\.?\d{3})\.?`
)

// parser holds the date patterns, searched anywhere or required to span the whole text.
type parser struct{ iso, numeric, long *regexp.Regexp }

func newParser(wrap func(string) string) parser {
	return parser{
		iso:     regexp.MustCompile(wrap(isoPattern)),
		numeric: regexp.MustCompile(wrap(numericPattern)),
		long:    regexp.MustCompile(wrap(longPattern)),
	}
}

var (
	search = newParser(func(p string) string { return p })
	exact  = newParser(func(p string) string { return `^\s*(?:` + p + `)\s*$` })
)

var months = map[string]time.Month{
	"janeiro":   time.January,
	"fevereiro": time.February,
	"marco":     time.March,
	"abril":     time.April,
	"maio":      time.May,
	"junho":     time.June,
	"julho":     time.July,
	"agosto":    time.August,
	"setembro":  time.September,
	"outubro":   time.October,
	"novembro":  time.November,
	"dezembro":  time.December,
}

// ParseText extracts the first date found in s.
//
// Accepted forms are ISO "2006-01-02", "02/01/2006" or "02-01-06" (two-digit
// years pivot at 30) and the long Portuguese form "2 de janeiro de 2006",
// where the year may carry a thousands dot ("1.994").
// It returns ErrNoDate when nothing matches or the match is not a real calendar day.
func ParseText(s string) (Date, error) { return search.parse(s) }

// ParseExact is like ParseText but s must hold a date and nothing else.
func ParseExact(s string) (Date, error) { return exact.parse(s) }

func (p parser) parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrNoDate
	}
	if m := p.iso.FindStringSubmatch(s); m != nil {
		return build(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := p.numeric.FindStringSubmatch(s); m != nil {
		y := atoi(m[3])
		if len(m[3]) == 2 {
			y = expandYear(y)
		}
		return build(y, atoi(m[2]), atoi(m[1]))
	}
	if m := p.long.FindStringSubmatch(fold(s)); m != nil {
		month, ok := months[strings.ToLower(m[2])]
		if !ok {
			return Date{}, ErrNoDate
		}
		return build(atoi(strings.ReplaceAll(m[3], ".", "")), int(month), atoi(m[1]))
	}
	return Date{}, ErrNoDate
}

// Canonical returns the ISO form of s when s is a date, or s unchanged otherwise.
func Canonical(s string) string {
	d, err := ParseExact(s)
	if err != nil {
		return s
	}
	return d.String()
}

func expandYear(y int) int {
	if y <= pivot {
		return 2000 + y
	}
	return 1900 + y
}

// build rejects overflowing days like 31/02 instead of normalizing them.
func build(y, m, d int) (Date, error) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return Date{}, ErrNoDate
	}
	date := New(y, time.Month(m), d)
	if date.Day() != d {
		return Date{}, ErrNoDate
	}
	return date, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// fold removes diacritics so that "março" and "marco" read the same.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
