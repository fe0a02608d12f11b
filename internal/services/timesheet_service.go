package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tempo/internal/amqp"
	"tempo/internal/core"
	"tempo/internal/log"
	"tempo/internal/storage"
)

var (
	ErrAlreadyClockedIn = errors.New("a clock-in session is already open")
	ErrNotClockedIn     = errors.New("no open clock-in session")
)

// SyncPublisher notifies the export worker about record changes.
// Satisfied by *amqp.Client; nil disables publishing.
type SyncPublisher interface {
	PublishSync(ctx context.Context, kind string, id, version int64) error
	PublishDelete(ctx context.Context, kind string, id int64) error
}

// TimesheetService orchestrates timesheet operations across SQLite and AMQP.
type TimesheetService struct {
	storage *storage.SQLiteRepository
	queue   SyncPublisher
	now     func() time.Time
}

func NewTimesheetService(storage *storage.SQLiteRepository, queue SyncPublisher) *TimesheetService {
	return &TimesheetService{
		storage: storage,
		queue:   queue,
		now:     time.Now,
	}
}

// --- time entries ---

// AddTimeEntry validates and saves a worked-time entry, then publishes
// a sync message. Invalid entries leave the store unchanged.
func (s *TimesheetService) AddTimeEntry(ctx context.Context, e core.TimeEntry) (core.TimeEntry, error) {
	if err := e.Validate(); err != nil {
		return core.TimeEntry{}, err
	}

	saved, err := s.storage.CreateTimeEntry(ctx, e)
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("save time entry: %w", err)
	}

	s.publishSync(ctx, amqp.KindTimeEntry, saved.ID, 1)
	return saved, nil
}

// EditTimeEntry validates and replaces an existing entry.
// Returns core.ErrNotFound for an unknown id.
func (s *TimesheetService) EditTimeEntry(ctx context.Context, e core.TimeEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	if err := s.storage.UpdateTimeEntry(ctx, e); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update time entry: %w", err)
	}

	version, err := s.storage.TimeEntryVersion(ctx, e.ID)
	if err != nil {
		version = 0
	}
	s.publishSync(ctx, amqp.KindTimeEntry, e.ID, version)
	return nil
}

// RemoveTimeEntry deletes the entry. Removing an absent id is a no-op.
func (s *TimesheetService) RemoveTimeEntry(ctx context.Context, id int64) error {
	if err := s.storage.DeleteTimeEntry(ctx, id); err != nil {
		return fmt.Errorf("delete time entry: %w", err)
	}

	s.publishDelete(ctx, amqp.KindTimeEntry, id)
	return nil
}

// TimeEntries returns entries whose date falls in rng, oldest first.
func (s *TimesheetService) TimeEntries(ctx context.Context, rng core.DateRange) ([]core.TimeEntry, error) {
	return s.storage.ListTimeEntries(ctx, rng)
}

// --- expenses ---

// AddExpense validates and saves an expense, then publishes a sync message.
func (s *TimesheetService) AddExpense(ctx context.Context, x core.Expense) (core.Expense, error) {
	if err := x.Validate(); err != nil {
		return core.Expense{}, err
	}

	saved, err := s.storage.CreateExpense(ctx, x)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.publishSync(ctx, amqp.KindExpense, saved.ID, 1)
	return saved, nil
}

// EditExpense validates and replaces an existing expense.
func (s *TimesheetService) EditExpense(ctx context.Context, x core.Expense) error {
	if err := x.Validate(); err != nil {
		return err
	}

	if err := s.storage.UpdateExpense(ctx, x); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		return fmt.Errorf("update expense: %w", err)
	}

	version, err := s.storage.ExpenseVersion(ctx, x.ID)
	if err != nil {
		version = 0
	}
	s.publishSync(ctx, amqp.KindExpense, x.ID, version)
	return nil
}

// RemoveExpense deletes the expense. Removing an absent id is a no-op.
func (s *TimesheetService) RemoveExpense(ctx context.Context, id int64) error {
	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.publishDelete(ctx, amqp.KindExpense, id)
	return nil
}

// Expenses returns expenses whose date falls in rng, oldest first.
func (s *TimesheetService) Expenses(ctx context.Context, rng core.DateRange) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx, rng)
}

// --- payroll summary ---

// Summary computes the payroll summary for rng at the configured rate.
func (s *TimesheetService) Summary(ctx context.Context, rng core.DateRange) (core.Summary, error) {
	entries, err := s.storage.ListTimeEntries(ctx, rng)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list time entries: %w", err)
	}
	expenses, err := s.storage.ListExpenses(ctx, rng)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list expenses: %w", err)
	}
	rate, err := s.storage.HourlyRate(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("hourly rate: %w", err)
	}
	return core.Summarize(entries, expenses, rate, rng), nil
}

// --- settings ---

func (s *TimesheetService) HourlyRate(ctx context.Context) (int64, error) {
	return s.storage.HourlyRate(ctx)
}

func (s *TimesheetService) SetHourlyRate(ctx context.Context, cents int64) error {
	if cents < 0 {
		return core.ErrInvalidAmount
	}
	return s.storage.SetHourlyRate(ctx, cents)
}

// --- clock session ---

// ClockIn opens a session at the current wall clock.
// Fails with ErrAlreadyClockedIn if a session is already open.
func (s *TimesheetService) ClockIn(ctx context.Context) (core.Session, error) {
	open, err := s.storage.OpenSession(ctx)
	if err != nil {
		return core.Session{}, fmt.Errorf("check open session: %w", err)
	}
	if open != nil {
		return core.Session{}, ErrAlreadyClockedIn
	}

	now := s.now()
	session := core.Session{
		Date:      core.DateOf(now),
		ClockIn:   core.ClockOf(now),
		StartedAt: now,
	}
	if err := s.storage.StartSession(ctx, session); err != nil {
		return core.Session{}, fmt.Errorf("start session: %w", err)
	}

	slog.InfoContext(ctx, "Clocked in",
		log.FieldComponent, log.ComponentTimesheet,
		log.FieldDate, session.Date.String(),
		log.FieldClockIn, session.ClockIn.String())
	return session, nil
}

// ClockOut closes the open session and records it as a time entry.
// The session stays open if the resulting entry would be invalid, for
// example when clock-out does not land after clock-in on the same day.
func (s *TimesheetService) ClockOut(ctx context.Context) (core.TimeEntry, error) {
	open, err := s.storage.OpenSession(ctx)
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("check open session: %w", err)
	}
	if open == nil {
		return core.TimeEntry{}, ErrNotClockedIn
	}

	now := s.now()
	entry := core.TimeEntry{
		Date:     open.Date,
		ClockIn:  open.ClockIn,
		ClockOut: core.ClockOf(now),
	}
	if core.DateOf(now).String() != open.Date.String() {
		return core.TimeEntry{}, fmt.Errorf("%w: session crossed midnight", core.ErrInvalidTimeRange)
	}

	saved, err := s.AddTimeEntry(ctx, entry)
	if err != nil {
		return core.TimeEntry{}, err
	}

	if err := s.storage.ClearSession(ctx); err != nil {
		return core.TimeEntry{}, fmt.Errorf("clear session: %w", err)
	}

	slog.InfoContext(ctx, "Clocked out",
		log.FieldComponent, log.ComponentTimesheet,
		log.FieldEntryID, saved.ID,
		log.FieldMinutes, saved.Minutes())
	return saved, nil
}

// DiscardSession abandons the open session without recording a time
// entry. This is the recovery path for a session that can no longer
// close cleanly, such as one left open past midnight.
func (s *TimesheetService) DiscardSession(ctx context.Context) error {
	open, err := s.storage.OpenSession(ctx)
	if err != nil {
		return fmt.Errorf("check open session: %w", err)
	}
	if open == nil {
		return ErrNotClockedIn
	}

	if err := s.storage.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	slog.InfoContext(ctx, "Discarded open session",
		log.FieldComponent, log.ComponentTimesheet,
		log.FieldDate, open.Date.String(),
		log.FieldClockIn, open.ClockIn.String())
	return nil
}

// ClockStatus returns the open session, or nil when clocked out.
func (s *TimesheetService) ClockStatus(ctx context.Context) (*core.Session, error) {
	return s.storage.OpenSession(ctx)
}

// --- internals ---

func (s *TimesheetService) publishSync(ctx context.Context, kind string, id, version int64) {
	if s.queue == nil {
		return
	}
	if err := s.queue.PublishSync(ctx, kind, id, version); err != nil {
		// Record is already saved locally; sync catches up later.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			log.FieldComponent, log.ComponentTimesheet,
			log.FieldKind, kind, "id", id, log.FieldError, err)
	}
}

func (s *TimesheetService) publishDelete(ctx context.Context, kind string, id int64) {
	if s.queue == nil {
		return
	}
	if err := s.queue.PublishDelete(ctx, kind, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			log.FieldComponent, log.ComponentTimesheet,
			log.FieldKind, kind, "id", id, log.FieldError, err)
	}
}

// Close closes both storage and AMQP connections.
func (s *TimesheetService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if closer, ok := s.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close timesheet service: %v", errs)
	}

	return nil
}
