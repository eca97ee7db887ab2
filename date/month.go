package date

import (
	"fmt"
	"iter"
	"time"
)

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// String formats the month as "2006-01".
func (m YearMonth) String() string { return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)) }

// Next returns the following calendar month.
func (m YearMonth) Next() YearMonth {
	if m.Month == time.December {
		return YearMonth{m.Year + 1, time.January}
	}
	return YearMonth{m.Year, m.Month + 1}
}

// Before reports whether m is strictly before x.
func (m YearMonth) Before(x YearMonth) bool {
	return m.Year < x.Year || (m.Year == x.Year && m.Month < x.Month)
}

// Months yields every calendar month from the month of 'from' to the month of 'to', both included.
// It yields nothing if 'to' is before 'from'.
func Months(from, to Date) iter.Seq[YearMonth] {
	return func(yield func(YearMonth) bool) {
		last := to.YearMonth()
		for m := from.YearMonth(); !last.Before(m); m = m.Next() {
			if !yield(m) {
				return
			}
		}
	}
}
