package date

import (
	"errors"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestParseText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2001-01-01", "2001-01-01"},
		{"2001-1-5", "2001-01-05"},
		{"05/03/1994", "1994-03-05"},
		{"05-03-94", "1994-03-05"},
		{"05/03/30", "2030-03-05"},
		{"05/03/31", "1931-03-05"},
		{"15 de março de 1.994", "1994-03-15"},
		{"15 de marco de 1994.", "1994-03-15"},
		{"registrado em 1º de Dezembro de 2002, conforme", "2002-12-01"},
		{"Av.24 em 10/10/2005", "2005-10-10"},
	}
	for _, tt := range tests {
		got, err := ParseText(tt.in)
		if err != nil {
			t.Errorf("ParseText(%q) returned error: %v", tt.in, err)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTextNoDate(t *testing.T) {
	for _, in := range []string{"", "sem data", "31/02/2001", "10 de brumário de 1799", "13/13/2001"} {
		if got, err := ParseText(in); !errors.Is(err, ErrNoDate) {
			t.Errorf("ParseText(%q) = %v, %v, want ErrNoDate", in, got, err)
		}
	}
}

func TestParseExact(t *testing.T) {
	if got, err := ParseExact(" 15 de março de 1.994. "); err != nil || got.String() != "1994-03-15" {
		t.Errorf("ParseExact() = %v, %v, want 1994-03-15", got, err)
	}
	if _, err := ParseExact("registrado em 10/10/2005"); !errors.Is(err, ErrNoDate) {
		t.Errorf("ParseExact() must reject surrounding text, got %v", err)
	}
}

func TestCanonicalIsIdempotent(t *testing.T) {
	for _, in := range []string{"2001-01-01", "05/03/1994", "15 de março de 1.994", "garbage"} {
		once := Canonical(in)
		if twice := Canonical(once); twice != once {
			t.Errorf("Canonical(Canonical(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestDaysSince(t *testing.T) {
	a, b := MustParse("2001-01-01"), MustParse("2002-01-01")
	if got := b.DaysSince(a); got != 365 {
		t.Errorf("DaysSince() = %d, want 365", got)
	}
	if got := a.DaysSince(b); got != -365 {
		t.Errorf("DaysSince() = %d, want -365", got)
	}
}

func TestMonths(t *testing.T) {
	var got []string
	for m := range Months(MustParse("2001-11-20"), MustParse("2002-02-01")) {
		got = append(got, m.String())
	}
	want := []string{"2001-11", "2001-12", "2002-01", "2002-02"}
	if len(got) != len(want) {
		t.Fatalf("Months() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Months()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	for m := range Months(MustParse("2002-02-01"), MustParse("2001-11-20")) {
		t.Errorf("Months() on a reversed range yielded %v", m)
	}
}

func TestWindow(t *testing.T) {
	w := Window{Start: New(2020, time.January, 1), End: New(2020, time.April, 1)}
	if !w.Contains(w.Start) {
		t.Errorf("window must contain its start")
	}
	if w.Contains(w.End) {
		t.Errorf("window must not contain its end")
	}
	if got := w.Days(); got != 91 {
		t.Errorf("Days() = %d, want 91", got)
	}
	open := Window{Start: w.Start}
	if !open.Contains(New(2100, time.January, 1)) || open.Days() != -1 {
		t.Errorf("open window must contain every later day")
	}
	if got, want := w.String(), "2020-01-01..2020-04-01"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := open.String(), "2020-01-01.."; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
