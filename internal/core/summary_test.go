package core

import (
	"reflect"
	"testing"
)

func entry(date Date, in, out string) TimeEntry {
	ci, err := ParseClock(in)
	if err != nil {
		panic(err)
	}
	co, err := ParseClock(out)
	if err != nil {
		panic(err)
	}
	return TimeEntry{Date: date, ClockIn: ci, ClockOut: co}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil, nil, 5000, DateRange{})
	if sum.Minutes != 0 || sum.GrossCents != 0 || sum.ReimbursedCents != 0 ||
		sum.DeductedCents != 0 || sum.TotalDueCents != 0 {
		t.Fatalf("expected all-zero summary, got %+v", sum)
	}
	if len(sum.Days) != 0 {
		t.Fatalf("expected empty breakdown, got %d days", len(sum.Days))
	}
}

func TestSummarizeGrossEarnings(t *testing.T) {
	// rate $50, one 09:00-17:00 entry -> 8.00 hours, $400.00 gross
	today := NewDate(2025, 8, 27)
	sum := Summarize([]TimeEntry{entry(today, "09:00", "17:00")}, nil, 5000, DateRange{})

	if got := sum.Centihours(); got != 800 {
		t.Fatalf("expected 8.00 hours, got %s", FormatCentihours(got))
	}
	if sum.GrossCents != 40000 {
		t.Fatalf("expected $400.00 gross, got %s", FormatCents(sum.GrossCents))
	}
	if sum.TotalDueCents != 40000 {
		t.Fatalf("expected total due $400.00, got %s", FormatCents(sum.TotalDueCents))
	}
}

func TestSummarizeReimbursable(t *testing.T) {
	// rate $50, 8h + $100 reimburse -> total due $500.00
	today := NewDate(2025, 8, 27)
	expenses := []Expense{{Date: today, Description: "Travel", Kind: Reimburse, Amount: Money{Cents: 10000}}}
	sum := Summarize([]TimeEntry{entry(today, "09:00", "17:00")}, expenses, 5000, DateRange{})

	if sum.GrossCents != 40000 {
		t.Fatalf("expected $400.00 gross, got %s", FormatCents(sum.GrossCents))
	}
	if sum.ReimbursedCents != 10000 {
		t.Fatalf("expected $100.00 reimbursable, got %s", FormatCents(sum.ReimbursedCents))
	}
	if sum.TotalDueCents != 50000 {
		t.Fatalf("expected total due $500.00, got %s", FormatCents(sum.TotalDueCents))
	}
}

func TestSummarizeDeductions(t *testing.T) {
	// rate $50, 8h + $50 deduct -> total due $350.00
	today := NewDate(2025, 8, 27)
	expenses := []Expense{{Date: today, Description: "Personal item", Kind: Deduct, Amount: Money{Cents: 5000}}}
	sum := Summarize([]TimeEntry{entry(today, "09:00", "17:00")}, expenses, 5000, DateRange{})

	if sum.DeductedCents != 5000 {
		t.Fatalf("expected $50.00 deductions, got %s", FormatCents(sum.DeductedCents))
	}
	if sum.TotalDueCents != 35000 {
		t.Fatalf("expected total due $350.00, got %s", FormatCents(sum.TotalDueCents))
	}
}

func TestSummarizeMixedExpenseKinds(t *testing.T) {
	// rate $25, 10h + $75 reimburse + $25 deduct -> gross $250, total $300
	today := NewDate(2025, 8, 27)
	expenses := []Expense{
		{Date: today, Description: "Supplies", Kind: Reimburse, Amount: Money{Cents: 7500}},
		{Date: today, Description: "Lunch", Kind: Deduct, Amount: Money{Cents: 2500}},
	}
	sum := Summarize([]TimeEntry{entry(today, "08:00", "18:00")}, expenses, 2500, DateRange{})

	if sum.GrossCents != 25000 {
		t.Fatalf("expected $250.00 gross, got %s", FormatCents(sum.GrossCents))
	}
	if sum.TotalDueCents != 30000 {
		t.Fatalf("expected total due $300.00, got %s", FormatCents(sum.TotalDueCents))
	}
}

func TestSummarizeFiltering(t *testing.T) {
	january := NewDate(2024, 1, 15)
	entries := []TimeEntry{entry(january, "09:00", "17:00")}
	expenses := []Expense{{Date: january, Kind: Reimburse, Amount: Money{Cents: 1000}}}

	// In range, bounds inclusive on both edges.
	in := Summarize(entries, expenses, 2500, DateRange{From: NewDate(2024, 1, 15), To: NewDate(2024, 1, 15)})
	if in.Minutes != 480 || in.ReimbursedCents != 1000 {
		t.Fatalf("entry on the bounds should be included, got %+v", in)
	}

	// Out of range contributes zero to every aggregate.
	out := Summarize(entries, expenses, 2500, DateRange{From: NewDate(2024, 2, 1), To: NewDate(2024, 2, 29)})
	if out.Minutes != 0 || out.GrossCents != 0 || out.ReimbursedCents != 0 || out.TotalDueCents != 0 {
		t.Fatalf("out-of-range activity should contribute nothing, got %+v", out)
	}
	if len(out.Days) != 0 {
		t.Fatalf("expected empty breakdown, got %d days", len(out.Days))
	}
}

func TestSummarizeDailyBreakdown(t *testing.T) {
	d1 := NewDate(2025, 8, 26)
	d2 := NewDate(2025, 8, 27)
	d3 := NewDate(2025, 8, 28)
	entries := []TimeEntry{
		entry(d2, "09:00", "17:00"), // 8h
		entry(d1, "10:00", "14:00"), // 4h
		entry(d2, "18:00", "19:00"), // second entry same day, 1h
	}
	expenses := []Expense{
		{Date: d2, Description: "Supplies", Kind: Reimburse, Amount: Money{Cents: 5000}},
		{Date: d3, Description: "Expense-only day", Kind: Deduct, Amount: Money{Cents: 2000}},
	}

	sum := Summarize(entries, expenses, 5000, DateRange{})

	if len(sum.Days) != 3 {
		t.Fatalf("expected one record per distinct date, got %d", len(sum.Days))
	}
	wantDates := []string{"2025-08-26", "2025-08-27", "2025-08-28"}
	for i, d := range sum.Days {
		if d.Date.String() != wantDates[i] {
			t.Fatalf("day %d expected %s, got %s", i, wantDates[i], d.Date)
		}
	}

	// d1: 4h * $50 = $200
	if sum.Days[0].TotalCents != 20000 {
		t.Fatalf("d1 expected $200.00, got %s", FormatCents(sum.Days[0].TotalCents))
	}
	// d2: 9h * $50 + $50 = $500
	if sum.Days[1].Minutes != 540 || sum.Days[1].TotalCents != 50000 {
		t.Fatalf("d2 expected 540 min / $500.00, got %d / %s",
			sum.Days[1].Minutes, FormatCents(sum.Days[1].TotalCents))
	}
	// d3 has only an expense and still appears.
	if sum.Days[2].Minutes != 0 || sum.Days[2].TotalCents != -2000 {
		t.Fatalf("d3 expected 0 min / -$20.00, got %d / %s",
			sum.Days[2].Minutes, FormatCents(sum.Days[2].TotalCents))
	}

	// Sum of daily totals equals the filtered total due.
	var daily int64
	for _, d := range sum.Days {
		daily += d.TotalCents
	}
	if daily != sum.TotalDueCents {
		t.Fatalf("daily totals %d != total due %d", daily, sum.TotalDueCents)
	}
}

func TestSummarizeDeterministic(t *testing.T) {
	d1 := NewDate(2025, 8, 26)
	d2 := NewDate(2025, 8, 27)
	entries := []TimeEntry{entry(d1, "09:00", "12:30"), entry(d2, "13:00", "17:45")}
	expenses := []Expense{
		{Date: d1, Kind: Reimburse, Amount: Money{Cents: 333}},
		{Date: d2, Kind: Deduct, Amount: Money{Cents: 777}},
	}
	rng := DateRange{From: d1, To: d2}

	first := Summarize(entries, expenses, 3333, rng)
	second := Summarize(entries, expenses, 3333, rng)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different output:\n%+v\n%+v", first, second)
	}
}

func TestSummarizeRoundingConsistency(t *testing.T) {
	// 50 minutes at $50/h is $41.666...; the half-up figure must appear
	// both in the day total and in the window total.
	d := NewDate(2025, 8, 27)
	sum := Summarize([]TimeEntry{entry(d, "09:00", "09:50")}, nil, 5000, DateRange{})
	if sum.GrossCents != 4167 {
		t.Fatalf("expected $41.67, got %s", FormatCents(sum.GrossCents))
	}
	if sum.Days[0].GrossCents != sum.GrossCents {
		t.Fatalf("day gross %d != window gross %d", sum.Days[0].GrossCents, sum.GrossCents)
	}
}
