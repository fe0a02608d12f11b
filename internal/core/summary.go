package core

import "sort"

// Summary is the payroll-style rollup for a filtered window.
// All monetary fields are integer cents.
type Summary struct {
	Minutes         int64
	GrossCents      int64
	ReimbursedCents int64
	DeductedCents   int64
	TotalDueCents   int64
	Days            []DayTotal
}

// DayTotal is one day's slice of the summary. Exactly one record exists
// per distinct date that has any activity, ordered by date ascending.
type DayTotal struct {
	Date            Date
	Minutes         int64
	GrossCents      int64
	ReimbursedCents int64
	DeductedCents   int64
	TotalCents      int64
}

// Centihours returns the summed duration in hundredths of an hour.
func (s Summary) Centihours() int64 {
	return CentihoursOf(s.Minutes)
}

// Summarize computes the summary for the entries and expenses that fall
// inside rng. It is a pure function of its arguments: no clock, no
// hidden state, identical inputs give identical output.
//
// Gross pay is rounded half-up per day and the window gross is the sum
// of the daily figures, so the daily breakdown always adds up to the
// window's total due.
func Summarize(entries []TimeEntry, expenses []Expense, rateCents int64, rng DateRange) Summary {
	days := make(map[string]*DayTotal)

	day := func(d Date) *DayTotal {
		key := d.String()
		dt, ok := days[key]
		if !ok {
			dt = &DayTotal{Date: d}
			days[key] = dt
		}
		return dt
	}

	for _, e := range entries {
		if !rng.Contains(e.Date) {
			continue
		}
		day(e.Date).Minutes += e.Minutes()
	}
	for _, x := range expenses {
		if !rng.Contains(x.Date) {
			continue
		}
		switch x.Kind {
		case Reimburse:
			day(x.Date).ReimbursedCents += x.Amount.Cents
		case Deduct:
			day(x.Date).DeductedCents += x.Amount.Cents
		}
	}

	var sum Summary
	for _, dt := range days {
		dt.GrossCents = GrossCents(dt.Minutes, rateCents)
		dt.TotalCents = dt.GrossCents + dt.ReimbursedCents - dt.DeductedCents

		sum.Minutes += dt.Minutes
		sum.GrossCents += dt.GrossCents
		sum.ReimbursedCents += dt.ReimbursedCents
		sum.DeductedCents += dt.DeductedCents
		sum.Days = append(sum.Days, *dt)
	}
	sum.TotalDueCents = sum.GrossCents + sum.ReimbursedCents - sum.DeductedCents

	sort.Slice(sum.Days, func(i, j int) bool {
		return sum.Days[i].Date.Time.Before(sum.Days[j].Date.Time)
	})
	return sum
}
