package date

// Window is a semi-open interval of days [Start, End).
// A zero End means the window is still open.
type Window struct{ Start, End Date }

// Contains reports whether d is inside the window.
func (w Window) Contains(d Date) bool {
	if d.Before(w.Start) {
		return false
	}
	return w.End.IsZero() || d.Before(w.End)
}

// Open reports whether the window has no end.
func (w Window) Open() bool { return w.End.IsZero() }

// Days returns the length of a closed window, or -1 for an open one.
func (w Window) Days() int {
	if w.Open() {
		return -1
	}
	return w.End.DaysSince(w.Start)
}

// String returns "start..end", or "start.." for an open window.
func (w Window) String() string {
	if w.Open() {
		return w.Start.String() + ".."
	}
	return w.Start.String() + ".." + w.End.String()
}
