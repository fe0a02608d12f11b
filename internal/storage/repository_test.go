package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tempo/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "tempo.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTimeEntryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e, err := repo.CreateTimeEntry(ctx, core.TimeEntry{
		Date: core.NewDate(2025, 8, 27), ClockIn: 540, ClockOut: 1020,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := repo.GetTimeEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Date.String() != "2025-08-27" || got.ClockIn != 540 || got.ClockOut != 1020 {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	got.ClockOut = 1080 // 18:00
	if err := repo.UpdateTimeEntry(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = repo.GetTimeEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Minutes() != 540 {
		t.Fatalf("expected 540 minutes after edit, got %d", got.Minutes())
	}

	if err := repo.DeleteTimeEntry(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetTimeEntry(ctx, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUpdateTimeEntryNotFound(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.UpdateTimeEntry(context.Background(), core.TimeEntry{
		ID: 999, Date: core.NewDate(2025, 8, 27), ClockIn: 540, ClockOut: 1020,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTimeEntryAbsentIsNoop(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.DeleteTimeEntry(context.Background(), 12345); err != nil {
		t.Fatalf("deleting an unknown id should not error, got %v", err)
	}
}

func TestListTimeEntriesFiltered(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	dates := []core.Date{
		core.NewDate(2024, 1, 10),
		core.NewDate(2024, 1, 20),
		core.NewDate(2024, 2, 5),
	}
	for _, d := range dates {
		if _, err := repo.CreateTimeEntry(ctx, core.TimeEntry{Date: d, ClockIn: 540, ClockOut: 600}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := repo.ListTimeEntries(ctx, core.DateRange{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}

	jan, err := repo.ListTimeEntries(ctx, core.DateRange{
		From: core.NewDate(2024, 1, 1), To: core.NewDate(2024, 1, 31),
	})
	if err != nil {
		t.Fatalf("list january: %v", err)
	}
	if len(jan) != 2 {
		t.Fatalf("expected 2 january entries, got %d", len(jan))
	}

	// A bound left empty is unbounded on that side.
	fromFeb, err := repo.ListTimeEntries(ctx, core.DateRange{From: core.NewDate(2024, 2, 1)})
	if err != nil {
		t.Fatalf("list from feb: %v", err)
	}
	if len(fromFeb) != 1 {
		t.Fatalf("expected 1 entry from february, got %d", len(fromFeb))
	}

	// Inverted bounds yield an empty set.
	none, err := repo.ListTimeEntries(ctx, core.DateRange{
		From: core.NewDate(2024, 3, 1), To: core.NewDate(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("list inverted: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected empty result for inverted range, got %d", len(none))
	}
}

func TestExpenseCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	x, err := repo.CreateExpense(ctx, core.Expense{
		Date: core.NewDate(2025, 8, 27), Description: "Office supplies",
		Kind: core.Reimburse, Amount: core.Money{Cents: 5000},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetExpense(ctx, x.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "Office supplies" || got.Kind != core.Reimburse || got.Amount.Cents != 5000 {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	got.Kind = core.Deduct
	if err := repo.UpdateExpense(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.GetExpense(ctx, x.ID)
	if got.Kind != core.Deduct {
		t.Fatalf("expected kind flipped to deduct, got %s", got.Kind)
	}

	if err := repo.DeleteExpense(ctx, x.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetExpense(ctx, x.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.UpdateExpense(ctx, core.Expense{ID: 999, Date: core.NewDate(2025, 1, 1), Kind: core.Deduct}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on unknown update, got %v", err)
	}
}

func TestHourlyRatePersistence(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rate, err := repo.HourlyRate(ctx)
	if err != nil {
		t.Fatalf("default rate: %v", err)
	}
	if rate != 0 {
		t.Fatalf("expected default rate 0, got %d", rate)
	}

	if err := repo.SetHourlyRate(ctx, 7500); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	rate, _ = repo.HourlyRate(ctx)
	if rate != 7500 {
		t.Fatalf("expected 7500, got %d", rate)
	}

	// Overwrite keeps a single setting row.
	if err := repo.SetHourlyRate(ctx, 5000); err != nil {
		t.Fatalf("overwrite rate: %v", err)
	}
	rate, _ = repo.HourlyRate(ctx)
	if rate != 5000 {
		t.Fatalf("expected 5000, got %d", rate)
	}
}

func TestOpenSessionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	s, err := repo.OpenSession(ctx)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if s != nil {
		t.Fatal("expected no session initially")
	}

	started := time.Date(2025, 8, 27, 9, 0, 0, 0, time.UTC)
	if err := repo.StartSession(ctx, core.Session{
		Date: core.NewDate(2025, 8, 27), ClockIn: 540, StartedAt: started,
	}); err != nil {
		t.Fatalf("start session: %v", err)
	}

	s, err = repo.OpenSession(ctx)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	if s == nil || s.ClockIn != 540 || !s.StartedAt.Equal(started) {
		t.Fatalf("session round trip mismatch: %+v", s)
	}

	// Second clock-in while one is open must fail (id pinned to 1).
	if err := repo.StartSession(ctx, core.Session{
		Date: core.NewDate(2025, 8, 27), ClockIn: 600, StartedAt: started,
	}); err == nil {
		t.Fatal("expected error starting a second session")
	}

	if err := repo.ClearSession(ctx); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	s, _ = repo.OpenSession(ctx)
	if s != nil {
		t.Fatal("expected session cleared")
	}
}

func TestPendingSyncBookkeeping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e, err := repo.CreateTimeEntry(ctx, core.TimeEntry{Date: core.NewDate(2025, 8, 27), ClockIn: 540, ClockOut: 600})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	x, err := repo.CreateExpense(ctx, core.Expense{Date: core.NewDate(2025, 8, 27), Kind: core.Deduct, Amount: core.Money{Cents: 100}})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	pendingEntries, err := repo.ListPendingTimeEntries(ctx, 10)
	if err != nil {
		t.Fatalf("pending entries: %v", err)
	}
	if len(pendingEntries) != 1 || pendingEntries[0].ID != e.ID || pendingEntries[0].Version != 1 {
		t.Fatalf("unexpected pending entries: %+v", pendingEntries)
	}

	if err := repo.MarkTimeEntrySynced(ctx, e.ID); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pendingEntries, _ = repo.ListPendingTimeEntries(ctx, 10)
	if len(pendingEntries) != 0 {
		t.Fatalf("expected no pending entries after sync, got %+v", pendingEntries)
	}

	// An edit makes the record pending again with a bumped version.
	e.ClockOut = 660
	if err := repo.UpdateTimeEntry(ctx, e); err != nil {
		t.Fatalf("update entry: %v", err)
	}
	pendingEntries, _ = repo.ListPendingTimeEntries(ctx, 10)
	if len(pendingEntries) != 1 || pendingEntries[0].Version != 2 {
		t.Fatalf("expected version 2 pending entry, got %+v", pendingEntries)
	}

	if err := repo.MarkExpenseSyncError(ctx, x.ID); err != nil {
		t.Fatalf("mark expense error: %v", err)
	}
	pendingExpenses, _ := repo.ListPendingExpenses(ctx, 10)
	if len(pendingExpenses) != 0 {
		t.Fatalf("errored expense should not be pending, got %+v", pendingExpenses)
	}
}
