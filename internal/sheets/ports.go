package sheets

import (
	"context"

	"tempo/internal/core"
)

// Ports for outbound adapters.
type (
	// TimesheetWriter appends a worked-time row to the export target.
	TimesheetWriter interface {
		AppendTimeEntry(ctx context.Context, e core.TimeEntry, rateCents int64) (rowRef string, err error)
	}

	// ExpenseWriter appends an expense row to the export target.
	ExpenseWriter interface {
		AppendExpense(ctx context.Context, x core.Expense) (rowRef string, err error)
	}

	// RecordWriter is the full outbound surface the sync worker needs.
	RecordWriter interface {
		TimesheetWriter
		ExpenseWriter
	}
)
