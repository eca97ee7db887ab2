// Package bacen reads the monthly reference rate (TR) tables published by the
// Banco Central do Brasil.
//
// A table has one row per year: the first column is the year, the following
// columns, named "01" to "12", hold the monthly rates.
package bacen

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/cadobr/date"
	"github.com/shopspring/decimal"
)

// percentThreshold is the magnitude above which a rate is read as a percentage.
// Monthly TR fractions stay well below it.
var percentThreshold = decimal.RequireFromString("0.02")

var hundred = decimal.NewFromInt(100)

// Table holds monthly reference rates as fractions (0.0007 for 0.07%).
type Table struct {
	Name   string
	Values map[date.YearMonth]decimal.Decimal
}

// Rate returns the rate of month m.
func (t *Table) Rate(m date.YearMonth) (decimal.Decimal, bool) {
	v, ok := t.Values[m]
	return v, ok
}

// Len returns the number of months in the table.
func (t *Table) Len() int { return len(t.Values) }

// Load reads a table from a CSV file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open index table %q: %w", path, err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("could not parse index table %q: %w", path, err)
	}
	t.Name = path
	return t, nil
}

// Parse reads a table from r. The delimiter is ';' when the header holds one, ',' otherwise.
func Parse(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	firstLine, _, _ := bytes.Cut(head, []byte("\n"))

	reader := csv.NewReader(br)
	if bytes.Contains(firstLine, []byte(";")) {
		reader.Comma = ';'
	}
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("empty table")
	}

	// month columns are the header columns named with a month number
	columns := make(map[int]time.Month)
	for i, name := range records[0] {
		if i == 0 {
			continue
		}
		m, err := strconv.Atoi(strings.TrimSpace(name))
		if err != nil || m < 1 || m > 12 {
			continue
		}
		columns[i] = time.Month(m)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no month column in header %q", records[0])
	}

	t := &Table{Values: make(map[date.YearMonth]decimal.Decimal)}
	for _, row := range records[1:] {
		if len(row) == 0 {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			continue // notes and blank lines
		}
		for i, month := range columns {
			if i >= len(row) {
				continue
			}
			v, ok := parseRate(row[i])
			if !ok {
				continue
			}
			t.Values[date.YearMonth{Year: year, Month: month}] = v
		}
	}
	return t, nil
}

// parseRate reads "0,0712" or "0.0712" and converts percentages to fractions.
func parseRate(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.Replace(s, ",", ".", 1)
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if v.Abs().GreaterThan(percentThreshold) {
		v = v.Div(hundred)
	}
	return v, true
}
