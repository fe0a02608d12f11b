package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"tempo/internal/amqp"
	"tempo/internal/core"
	"tempo/internal/sheets/memory"
	"tempo/internal/storage"
)

func newTestWorker(t *testing.T) (*SyncWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "tempo.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	store := memory.New()
	return NewSyncWorker(repo, store, 10), repo, store
}

func TestHandleMessageSyncsTimeEntry(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()

	e, err := repo.CreateTimeEntry(ctx, core.TimeEntry{
		Date: core.NewDate(2025, 8, 27), ClockIn: 540, ClockOut: 1020,
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	msg := amqp.NewSyncMessage(amqp.KindTimeEntry, e.ID, 1)
	if err := w.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if got := store.TimeEntries(); len(got) != 1 || got[0].Minutes() != 480 {
		t.Fatalf("expected exported entry, got %+v", got)
	}
	pending, _ := repo.ListPendingTimeEntries(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("entry should be marked synced, still pending: %+v", pending)
	}
}

func TestHandleMessageSyncsExpense(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()

	x, err := repo.CreateExpense(ctx, core.Expense{
		Date: core.NewDate(2025, 8, 27), Description: "Parking",
		Kind: core.Reimburse, Amount: core.Money{Cents: 1550},
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(amqp.KindExpense, x.ID, 1)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if got := store.Expenses(); len(got) != 1 || got[0].Amount.Cents != 1550 {
		t.Fatalf("expected exported expense, got %+v", got)
	}
}

func TestHandleMessageMissingRecordIsSkipped(t *testing.T) {
	w, _, store := newTestWorker(t)

	// Record deleted between publish and delivery.
	if err := w.HandleMessage(context.Background(), amqp.NewSyncMessage(amqp.KindTimeEntry, 999, 1)); err != nil {
		t.Fatalf("missing record should not error, got %v", err)
	}
	if len(store.TimeEntries()) != 0 {
		t.Fatal("nothing should be exported")
	}
}

func TestHandleMessageDeleteIsNoExport(t *testing.T) {
	w, _, store := newTestWorker(t)

	if err := w.HandleMessage(context.Background(), amqp.NewDeleteMessage(amqp.KindExpense, 1)); err != nil {
		t.Fatalf("delete message should not error, got %v", err)
	}
	if len(store.Expenses()) != 0 {
		t.Fatal("delete must not write to the sheet")
	}
}

func TestHandleMessageUnknownKindIsDropped(t *testing.T) {
	w, _, _ := newTestWorker(t)

	msg := &amqp.SyncMessage{Op: amqp.OpSync, Kind: "mystery", ID: 1}
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("unknown kind should be dropped without error, got %v", err)
	}
}

func TestSyncFailureMarksError(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()

	x, _ := repo.CreateExpense(ctx, core.Expense{
		Date: core.NewDate(2025, 8, 27), Kind: core.Deduct, Amount: core.Money{Cents: 100},
	})

	store.FailNext(errors.New("sheet unavailable"))
	if err := w.HandleMessage(ctx, amqp.NewSyncMessage(amqp.KindExpense, x.ID, 1)); err == nil {
		t.Fatal("expected error when export fails")
	}

	// Errored records leave the pending queue.
	pending, _ := repo.ListPendingExpenses(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("errored expense should not stay pending: %+v", pending)
	}
}

func TestStartupSyncCheckSweepsBothKinds(t *testing.T) {
	w, repo, store := newTestWorker(t)
	ctx := context.Background()

	for day := 1; day <= 3; day++ {
		if _, err := repo.CreateTimeEntry(ctx, core.TimeEntry{
			Date: core.NewDate(2025, 8, day), ClockIn: 540, ClockOut: 1020,
		}); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}
	if _, err := repo.CreateExpense(ctx, core.Expense{
		Date: core.NewDate(2025, 8, 1), Kind: core.Reimburse, Amount: core.Money{Cents: 100},
	}); err != nil {
		t.Fatalf("create expense: %v", err)
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("startup sync: %v", err)
	}

	if len(store.TimeEntries()) != 3 || len(store.Expenses()) != 1 {
		t.Fatalf("expected 3 entries and 1 expense exported, got %d/%d",
			len(store.TimeEntries()), len(store.Expenses()))
	}

	pendingE, _ := repo.ListPendingTimeEntries(ctx, 10)
	pendingX, _ := repo.ListPendingExpenses(ctx, 10)
	if len(pendingE) != 0 || len(pendingX) != 0 {
		t.Fatalf("everything should be synced, pending %d/%d", len(pendingE), len(pendingX))
	}
}

func TestProcessPendingIsQuietWhenClean(t *testing.T) {
	w, _, store := newTestWorker(t)

	if err := w.ProcessPending(context.Background()); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if len(store.TimeEntries()) != 0 || len(store.Expenses()) != 0 {
		t.Fatal("nothing should be exported")
	}
}
