package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"tempo/internal/cache"
	"tempo/internal/core"
	"tempo/internal/log"
	"tempo/internal/middleware/ratelimit"
	"tempo/internal/middleware/security"
	"tempo/internal/middleware/trace"
	appweb "tempo/web"
)

// Service is the application surface the handlers call into.
// Satisfied by *services.TimesheetService.
type Service interface {
	AddTimeEntry(ctx context.Context, e core.TimeEntry) (core.TimeEntry, error)
	EditTimeEntry(ctx context.Context, e core.TimeEntry) error
	RemoveTimeEntry(ctx context.Context, id int64) error
	TimeEntries(ctx context.Context, rng core.DateRange) ([]core.TimeEntry, error)

	AddExpense(ctx context.Context, x core.Expense) (core.Expense, error)
	EditExpense(ctx context.Context, x core.Expense) error
	RemoveExpense(ctx context.Context, id int64) error
	Expenses(ctx context.Context, rng core.DateRange) ([]core.Expense, error)

	Summary(ctx context.Context, rng core.DateRange) (core.Summary, error)

	HourlyRate(ctx context.Context) (int64, error)
	SetHourlyRate(ctx context.Context, cents int64) error

	ClockIn(ctx context.Context) (core.Session, error)
	ClockOut(ctx context.Context) (core.TimeEntry, error)
	DiscardSession(ctx context.Context) error
	ClockStatus(ctx context.Context) (*core.Session, error)
}

type Server struct {
	http.Server
	templates *template.Template
	svc       Service
	logger    *log.Logger

	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	security *security.HeadersMiddleware

	// Summary partials are cached per filter range and purged on any
	// mutation, since every record can shift the totals.
	summaryCache *cache.LRU[core.Summary]

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:          svc,
		logger:       log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentHTTP}),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:       trace.NewMiddleware(extractClientIP),
		security:     security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		summaryCache: cache.NewLRU[core.Summary](100, 5*time.Minute),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.Handle("/", s.page(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.Handle("/entries", s.mutation(s.handleCreateEntry))
	mux.Handle("/entries/update", s.mutation(s.handleUpdateEntry))
	mux.Handle("/entries/delete", s.mutation(s.handleDeleteEntry))

	mux.Handle("/expenses", s.mutation(s.handleCreateExpense))
	mux.Handle("/expenses/update", s.mutation(s.handleUpdateExpense))
	mux.Handle("/expenses/delete", s.mutation(s.handleDeleteExpense))

	mux.Handle("/clock", s.mutation(s.handleClockToggle))
	mux.Handle("/clock/discard", s.mutation(s.handleClockDiscard))
	mux.Handle("/clock/status", s.page(s.handleClockStatus))

	mux.Handle("/settings/rate", s.mutation(s.handleSetRate))

	mux.Handle("/ui/summary", s.page(s.handleSummary))
	mux.Handle("/ui/entries", s.page(s.handleEntriesTable))
	mux.Handle("/ui/expenses", s.page(s.handleExpensesTable))

	return s
}

// page wraps read-only handlers with tracing and security headers.
func (s *Server) page(h http.HandlerFunc) http.Handler {
	return s.tracer.Middleware(s.security.Middleware(h))
}

// mutation additionally rate limits and rejects non-POST methods.
func (s *Server) mutation(h http.HandlerFunc) http.Handler {
	postOnly := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
	limited := s.limiter.Middleware(extractClientIP)(postOnly)
	return s.tracer.Middleware(s.security.Middleware(limited))
}

// invalidateSummaries drops every cached summary partial. Any record
// mutation can move the totals of any window that contains its date, so
// a full purge is the only correct invalidation.
func (s *Server) invalidateSummaries() {
	s.summaryCache.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
