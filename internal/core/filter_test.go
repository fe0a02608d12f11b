package core

import (
	"testing"
	"time"
)

func TestDateRangeContains(t *testing.T) {
	rng := DateRange{From: NewDate(2024, 1, 1), To: NewDate(2024, 1, 31)}

	cases := []struct {
		d    Date
		want bool
	}{
		{NewDate(2024, 1, 15), true},
		{NewDate(2024, 1, 1), true},  // on the from bound
		{NewDate(2024, 1, 31), true}, // on the to bound
		{NewDate(2023, 12, 31), false},
		{NewDate(2024, 2, 1), false},
	}
	for _, tc := range cases {
		if got := rng.Contains(tc.d); got != tc.want {
			t.Fatalf("%s in %v: expected %v, got %v", tc.d, rng, tc.want, got)
		}
	}
}

func TestDateRangeUnbounded(t *testing.T) {
	all := DateRange{}
	if !all.Contains(NewDate(1999, 6, 1)) || !all.Contains(NewDate(2099, 6, 1)) {
		t.Fatal("zero range should contain everything")
	}
	if !all.IsZero() {
		t.Fatal("expected IsZero")
	}

	fromOnly := DateRange{From: NewDate(2024, 6, 1)}
	if fromOnly.Contains(NewDate(2024, 5, 31)) {
		t.Fatal("date before from should be excluded")
	}
	if !fromOnly.Contains(NewDate(2030, 1, 1)) {
		t.Fatal("open to side should be unbounded")
	}

	toOnly := DateRange{To: NewDate(2024, 6, 1)}
	if toOnly.Contains(NewDate(2024, 6, 2)) {
		t.Fatal("date after to should be excluded")
	}
	if !toOnly.Contains(NewDate(2000, 1, 1)) {
		t.Fatal("open from side should be unbounded")
	}
}

func TestDateRangeInverted(t *testing.T) {
	// Inverted bounds are not corrected; nothing matches.
	rng := DateRange{From: NewDate(2024, 2, 1), To: NewDate(2024, 1, 1)}
	for _, d := range []Date{NewDate(2024, 1, 1), NewDate(2024, 1, 15), NewDate(2024, 2, 1)} {
		if rng.Contains(d) {
			t.Fatalf("inverted range should match nothing, matched %s", d)
		}
	}
}

func TestThisWeek(t *testing.T) {
	cases := []struct {
		now  time.Time
		from string
		to   string
	}{
		// A Wednesday
		{time.Date(2025, 8, 27, 10, 0, 0, 0, time.UTC), "2025-08-25", "2025-08-31"},
		// A Monday maps onto itself
		{time.Date(2025, 8, 25, 0, 0, 0, 0, time.UTC), "2025-08-25", "2025-08-31"},
		// A Sunday belongs to the week that started the previous Monday
		{time.Date(2025, 8, 31, 23, 59, 0, 0, time.UTC), "2025-08-25", "2025-08-31"},
		// Week spanning a month boundary
		{time.Date(2025, 7, 31, 12, 0, 0, 0, time.UTC), "2025-07-28", "2025-08-03"},
	}
	for _, tc := range cases {
		rng := ThisWeek(tc.now)
		if rng.From.String() != tc.from || rng.To.String() != tc.to {
			t.Fatalf("ThisWeek(%s) = [%s, %s], expected [%s, %s]",
				tc.now.Format("2006-01-02"), rng.From, rng.To, tc.from, tc.to)
		}
	}
}

func TestThisMonth(t *testing.T) {
	cases := []struct {
		now  time.Time
		from string
		to   string
	}{
		{time.Date(2025, 8, 27, 10, 0, 0, 0, time.UTC), "2025-08-01", "2025-08-31"},
		{time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), "2025-02-01", "2025-02-28"},
		// Leap February
		{time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), "2024-02-01", "2024-02-29"},
	}
	for _, tc := range cases {
		rng := ThisMonth(tc.now)
		if rng.From.String() != tc.from || rng.To.String() != tc.to {
			t.Fatalf("ThisMonth(%s) = [%s, %s], expected [%s, %s]",
				tc.now.Format("2006-01-02"), rng.From, rng.To, tc.from, tc.to)
		}
	}
}
