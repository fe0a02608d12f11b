package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldEntryID     = "entry_id"
	FieldExpenseID   = "expense_id"
	FieldDate        = "date"
	FieldClockIn     = "clock_in"
	FieldClockOut    = "clock_out"
	FieldMinutes     = "minutes"
	FieldAmountCents = "amount_cents"
	FieldKind        = "kind"
	FieldRateCents   = "rate_cents"
	FieldRangeFrom   = "from"
	FieldRangeTo     = "to"
	FieldSheetRef    = "sheet_ref"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentTimesheet = "timesheet"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpClockIn  = "clock_in"
	OpClockOut = "clock_out"
	OpSync     = "sync"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
