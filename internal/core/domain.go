package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Reimburse ExpenseKind = "reimburse"
	Deduct    ExpenseKind = "deduct"
)

type (
	// ExpenseKind determines the sign of an expense in the total due:
	// reimbursable expenses add, deductible expenses subtract.
	ExpenseKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// ClockTime is a time of day expressed as minutes since midnight.
	ClockTime int

	TimeEntry struct {
		ID       int64
		Date     Date
		ClockIn  ClockTime
		ClockOut ClockTime
	}

	Expense struct {
		ID          int64
		Date        Date
		Description string
		Kind        ExpenseKind
		Amount      Money
	}

	// Session is an open clock-in with no clock-out yet. It lives outside
	// the entry store until clock-out turns it into a TimeEntry.
	Session struct {
		Date      Date
		ClockIn   ClockTime
		StartedAt time.Time
	}

	// Settings holds process-wide preferences. The hourly rate is passed
	// explicitly into Summarize so the aggregator stays a pure function.
	Settings struct {
		HourlyRateCents int64
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidClock     = errors.New("invalid clock time")
	ErrInvalidTimeRange = errors.New("clock-out must be after clock-in")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid expense kind")
	ErrNotFound         = errors.New("not found")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a wall-clock instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO date string (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// ParseClock parses an HH:MM time-of-day string.
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidClock
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

// ClockOf truncates a wall-clock instant to its minute of day.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

func (c ClockTime) Validate() error {
	if c < 0 || c >= 24*60 {
		return ErrInvalidClock
	}
	return nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (k ExpenseKind) Validate() error {
	switch k {
	case Reimburse, Deduct:
		return nil
	}
	return ErrInvalidKind
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Minutes returns the worked duration. Meaningful only for valid entries.
func (e TimeEntry) Minutes() int64 {
	return int64(e.ClockOut - e.ClockIn)
}

// Centihours returns the duration in hundredths of an hour, half-up
// rounded: 480 minutes -> 800 (displayed as 8.00).
func (e TimeEntry) Centihours() int64 {
	return CentihoursOf(e.Minutes())
}

func (e TimeEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.ClockIn.Validate(); err != nil {
		return err
	}
	if err := e.ClockOut.Validate(); err != nil {
		return err
	}
	if e.ClockOut <= e.ClockIn {
		return ErrInvalidTimeRange
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
