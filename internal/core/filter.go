package core

import "time"

// DateRange is an inclusive [From, To] calendar window. A zero bound is
// unbounded on that side; a zero range matches everything. An inverted
// range (From after To) matches nothing and is not silently corrected.
type DateRange struct {
	From Date
	To   Date
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d Date) bool {
	if !r.From.IsZero() && d.Time.Before(r.From.Time) {
		return false
	}
	if !r.To.IsZero() && d.Time.After(r.To.Time) {
		return false
	}
	return true
}

// IsZero reports whether both bounds are unset.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// ThisWeek returns the Monday-Sunday window containing now.
func ThisWeek(now time.Time) DateRange {
	today := DateOf(now)
	// time.Weekday has Sunday = 0; shift so Monday = 0.
	offset := (int(now.Weekday()) + 6) % 7
	from := Date{Time: today.AddDate(0, 0, -offset)}
	to := Date{Time: from.AddDate(0, 0, 6)}
	return DateRange{From: from, To: to}
}

// ThisMonth returns the first-to-last day window of now's month.
func ThisMonth(now time.Time) DateRange {
	from := NewDate(now.Year(), int(now.Month()), 1)
	to := Date{Time: from.AddDate(0, 1, -1)}
	return DateRange{From: from, To: to}
}
