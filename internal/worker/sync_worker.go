package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"tempo/internal/amqp"
	"tempo/internal/core"
	"tempo/internal/log"
	"tempo/internal/sheets"
	"tempo/internal/storage"
)

// SyncWorker pushes timesheet and expense records from SQLite to the
// export target (Google Sheets in production, memory store in tests).
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	writer    sheets.RecordWriter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, writer sheets.RecordWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleMessage processes a single sync queue message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		log.FieldComponent, log.ComponentWorker,
		log.FieldOperation, msg.Op,
		log.FieldKind, msg.Kind,
		"id", msg.ID,
		"version", msg.Version)

	switch msg.Op {
	case amqp.OpDelete:
		// The export sheet is append-only; deletions only affect the
		// local store, so there is nothing to push.
		slog.InfoContext(ctx, "Record deleted locally, no export action",
			"kind", msg.Kind, "id", msg.ID)
		return nil
	case amqp.OpSync:
		switch msg.Kind {
		case amqp.KindTimeEntry:
			return w.syncTimeEntry(ctx, msg.ID)
		case amqp.KindExpense:
			return w.syncExpense(ctx, msg.ID)
		default:
			slog.WarnContext(ctx, "Unknown record kind, dropping message", "kind", msg.Kind)
			return nil
		}
	default:
		slog.WarnContext(ctx, "Unknown operation, dropping message", "op", msg.Op)
		return nil
	}
}

// ProcessPending pushes records that are still pending. This is a
// backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	if err := w.processPendingTimeEntries(ctx, w.batchSize); err != nil {
		return err
	}
	return w.processPendingExpenses(ctx, w.batchSize)
}

// StartupSyncCheck sweeps pending records at worker startup, entries
// and expenses in parallel. Useful to recover from missed AMQP
// messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	batch := w.batchSize * 5

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.processPendingTimeEntries(gctx, batch) })
	g.Go(func() error { return w.processPendingExpenses(gctx, batch) })

	if err := g.Wait(); err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}

	slog.InfoContext(ctx, "Startup sync check completed")
	return nil
}

func (w *SyncWorker) processPendingTimeEntries(ctx context.Context, limit int) error {
	pending, err := w.storage.ListPendingTimeEntries(ctx, limit)
	if err != nil {
		return fmt.Errorf("list pending time entries: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending time entries", "count", len(pending))
	for _, p := range pending {
		if err := w.syncTimeEntry(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync time entry", "id", p.ID, "error", err)
		}
	}
	return nil
}

func (w *SyncWorker) processPendingExpenses(ctx context.Context, limit int) error {
	pending, err := w.storage.ListPendingExpenses(ctx, limit)
	if err != nil {
		return fmt.Errorf("list pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))
	for _, p := range pending {
		if err := w.syncExpense(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync expense", "id", p.ID, "error", err)
		}
	}
	return nil
}

func (w *SyncWorker) syncTimeEntry(ctx context.Context, id int64) error {
	entry, err := w.storage.GetTimeEntry(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted between publish and delivery; nothing to export.
		slog.InfoContext(ctx, "Time entry no longer exists, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get time entry from storage: %w", err)
	}

	rate, err := w.storage.HourlyRate(ctx)
	if err != nil {
		return fmt.Errorf("hourly rate: %w", err)
	}

	ref, err := w.writer.AppendTimeEntry(ctx, entry, rate)
	if err != nil {
		if markErr := w.storage.MarkTimeEntrySyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append time entry to sheet: %w", err)
	}

	if err := w.storage.MarkTimeEntrySynced(ctx, id); err != nil {
		// The export itself worked, the flag catches up on the next sweep.
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced time entry",
		log.FieldComponent, log.ComponentWorker,
		"id", id,
		log.FieldSheetRef, ref,
		log.FieldDate, entry.Date.String(),
		log.FieldMinutes, entry.Minutes())
	return nil
}

func (w *SyncWorker) syncExpense(ctx context.Context, id int64) error {
	expense, err := w.storage.GetExpense(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(ctx, "Expense no longer exists, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	ref, err := w.writer.AppendExpense(ctx, expense)
	if err != nil {
		if markErr := w.storage.MarkExpenseSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append expense to sheet: %w", err)
	}

	if err := w.storage.MarkExpenseSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced expense",
		log.FieldComponent, log.ComponentWorker,
		"id", id,
		log.FieldSheetRef, ref,
		log.FieldKind, string(expense.Kind),
		log.FieldAmountCents, expense.Amount.Cents)
	return nil
}
