// Package storage persists the entry store in a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tempo/internal/core"

	_ "modernc.org/sqlite"
)

const hourlyRateKey = "hourly_rate_cents"

// SQLiteRepository owns the time entry and expense collections plus the
// settings and open-session state. All operations are synchronous; a
// read issued after a mutation sees the mutation.
type SQLiteRepository struct {
	db *sql.DB
}

// PendingRecord is the minimal shape the sync worker needs to queue an
// export: the row id and its current version.
type PendingRecord struct {
	ID      int64
	Version int64
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- time entries ---

func (r *SQLiteRepository) CreateTimeEntry(ctx context.Context, e core.TimeEntry) (core.TimeEntry, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO time_entries (entry_date, clock_in, clock_out) VALUES (?, ?, ?)`,
		e.Date.String(), int64(e.ClockIn), int64(e.ClockOut))
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("insert time entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("time entry id: %w", err)
	}
	e.ID = id

	slog.InfoContext(ctx, "Time entry saved",
		"entry_id", e.ID,
		"date", e.Date.String(),
		"clock_in", e.ClockIn.String(),
		"clock_out", e.ClockOut.String(),
		"minutes", e.Minutes())
	return e, nil
}

func (r *SQLiteRepository) GetTimeEntry(ctx context.Context, id int64) (core.TimeEntry, error) {
	var (
		e       core.TimeEntry
		date    string
		in, out int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, entry_date, clock_in, clock_out FROM time_entries WHERE id = ?`, id).
		Scan(&e.ID, &date, &in, &out)
	if errors.Is(err, sql.ErrNoRows) {
		return core.TimeEntry{}, core.ErrNotFound
	}
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("get time entry %d: %w", id, err)
	}
	e.Date, err = core.ParseDate(date)
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	e.ClockIn, e.ClockOut = core.ClockTime(in), core.ClockTime(out)
	return e, nil
}

// UpdateTimeEntry replaces the entry's fields in place, keeping its
// identity. Returns core.ErrNotFound for an unknown id.
func (r *SQLiteRepository) UpdateTimeEntry(ctx context.Context, e core.TimeEntry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE time_entries
		 SET entry_date = ?, clock_in = ?, clock_out = ?,
		     sync_status = 'pending', version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		e.Date.String(), int64(e.ClockIn), int64(e.ClockOut), e.ID)
	if err != nil {
		return fmt.Errorf("update time entry %d: %w", e.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update time entry %d: %w", e.ID, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteTimeEntry removes the entry. Deleting an absent id is a no-op;
// the caller already confirmed intent and has nothing useful to do with
// a not-found error here.
func (r *SQLiteRepository) DeleteTimeEntry(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM time_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete time entry %d: %w", id, err)
	}
	return nil
}

// ListTimeEntries returns entries whose date falls in rng, oldest first.
func (r *SQLiteRepository) ListTimeEntries(ctx context.Context, rng core.DateRange) ([]core.TimeEntry, error) {
	from, to := rangeBounds(rng)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entry_date, clock_in, clock_out FROM time_entries
		 WHERE (? = '' OR entry_date >= ?) AND (? = '' OR entry_date <= ?)
		 ORDER BY entry_date, id`,
		from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	defer rows.Close()

	var entries []core.TimeEntry
	for rows.Next() {
		var (
			e       core.TimeEntry
			date    string
			in, out int64
		)
		if err := rows.Scan(&e.ID, &date, &in, &out); err != nil {
			return nil, fmt.Errorf("scan time entry: %w", err)
		}
		e.Date, err = core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		e.ClockIn, e.ClockOut = core.ClockTime(in), core.ClockTime(out)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// --- expenses ---

func (r *SQLiteRepository) CreateExpense(ctx context.Context, x core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (expense_date, description, kind, amount_cents) VALUES (?, ?, ?, ?)`,
		x.Date.String(), x.Description, string(x.Kind), x.Amount.Cents)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}
	x.ID = id

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", x.ID,
		"date", x.Date.String(),
		"kind", string(x.Kind),
		"amount_cents", x.Amount.Cents)
	return x, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	var (
		x    core.Expense
		date string
		kind string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, expense_date, description, kind, amount_cents FROM expenses WHERE id = ?`, id).
		Scan(&x.ID, &date, &x.Description, &kind, &x.Amount.Cents)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	x.Date, err = core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	x.Kind = core.ExpenseKind(kind)
	return x, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, x core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET expense_date = ?, description = ?, kind = ?, amount_cents = ?,
		     sync_status = 'pending', version = version + 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		x.Date.String(), x.Description, string(x.Kind), x.Amount.Cents, x.ID)
	if err != nil {
		return fmt.Errorf("update expense %d: %w", x.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense %d: %w", x.ID, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, rng core.DateRange) ([]core.Expense, error) {
	from, to := rangeBounds(rng)
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, expense_date, description, kind, amount_cents FROM expenses
		 WHERE (? = '' OR expense_date >= ?) AND (? = '' OR expense_date <= ?)
		 ORDER BY expense_date, id`,
		from, from, to, to)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			x    core.Expense
			date string
			kind string
		)
		if err := rows.Scan(&x.ID, &date, &x.Description, &kind, &x.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		x.Date, err = core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		x.Kind = core.ExpenseKind(kind)
		expenses = append(expenses, x)
	}
	return expenses, rows.Err()
}

// --- settings ---

// HourlyRate returns the persisted rate in cents, 0 if never set.
func (r *SQLiteRepository) HourlyRate(ctx context.Context) (int64, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, hourlyRateKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get hourly rate: %w", err)
	}
	cents, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("stored hourly rate %q: %w", value, err)
	}
	return cents, nil
}

func (r *SQLiteRepository) SetHourlyRate(ctx context.Context, cents int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		hourlyRateKey, strconv.FormatInt(cents, 10))
	if err != nil {
		return fmt.Errorf("set hourly rate: %w", err)
	}
	return nil
}

// --- open clock-in session ---

// OpenSession returns the open session, or nil when clocked out.
func (r *SQLiteRepository) OpenSession(ctx context.Context) (*core.Session, error) {
	var (
		date    string
		clockIn int64
		started string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT session_date, clock_in, started_at FROM open_session WHERE id = 1`).
		Scan(&date, &clockIn, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get open session: %w", err)
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("stored session date %q: %w", date, err)
	}
	startedAt, err := time.Parse(time.RFC3339, started)
	if err != nil {
		return nil, fmt.Errorf("stored session start %q: %w", started, err)
	}
	return &core.Session{Date: d, ClockIn: core.ClockTime(clockIn), StartedAt: startedAt}, nil
}

// StartSession stores s as the open session. Fails if one is open.
func (r *SQLiteRepository) StartSession(ctx context.Context, s core.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO open_session (id, session_date, clock_in, started_at) VALUES (1, ?, ?, ?)`,
		s.Date.String(), int64(s.ClockIn), s.StartedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ClearSession(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM open_session WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// --- export sync bookkeeping ---

func (r *SQLiteRepository) ListPendingTimeEntries(ctx context.Context, limit int) ([]PendingRecord, error) {
	return r.listPending(ctx, "time_entries", limit)
}

func (r *SQLiteRepository) ListPendingExpenses(ctx context.Context, limit int) ([]PendingRecord, error) {
	return r.listPending(ctx, "expenses", limit)
}

func (r *SQLiteRepository) listPending(ctx context.Context, table string, limit int) ([]PendingRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, version FROM `+table+` WHERE sync_status = 'pending' ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending %s: %w", table, err)
	}
	defer rows.Close()

	var pending []PendingRecord
	for rows.Next() {
		var p PendingRecord
		if err := rows.Scan(&p.ID, &p.Version); err != nil {
			return nil, fmt.Errorf("scan pending %s: %w", table, err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// TimeEntryVersion returns the current sync version of the entry.
func (r *SQLiteRepository) TimeEntryVersion(ctx context.Context, id int64) (int64, error) {
	return r.recordVersion(ctx, "time_entries", id)
}

// ExpenseVersion returns the current sync version of the expense.
func (r *SQLiteRepository) ExpenseVersion(ctx context.Context, id int64) (int64, error) {
	return r.recordVersion(ctx, "expenses", id)
}

func (r *SQLiteRepository) recordVersion(ctx context.Context, table string, id int64) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx,
		`SELECT version FROM `+table+` WHERE id = ?`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, core.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("version of %s %d: %w", table, id, err)
	}
	return version, nil
}

func (r *SQLiteRepository) MarkTimeEntrySynced(ctx context.Context, id int64) error {
	return r.markSync(ctx, "time_entries", id, "synced")
}

func (r *SQLiteRepository) MarkTimeEntrySyncError(ctx context.Context, id int64) error {
	return r.markSync(ctx, "time_entries", id, "error")
}

func (r *SQLiteRepository) MarkExpenseSynced(ctx context.Context, id int64) error {
	return r.markSync(ctx, "expenses", id, "synced")
}

func (r *SQLiteRepository) MarkExpenseSyncError(ctx context.Context, id int64) error {
	return r.markSync(ctx, "expenses", id, "error")
}

func (r *SQLiteRepository) markSync(ctx context.Context, table string, id int64, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE `+table+` SET sync_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("mark %s %d %s: %w", table, id, status, err)
	}
	return nil
}

func rangeBounds(rng core.DateRange) (from, to string) {
	if !rng.From.IsZero() {
		from = rng.From.String()
	}
	if !rng.To.IsZero() {
		to = rng.To.String()
	}
	return from, to
}
