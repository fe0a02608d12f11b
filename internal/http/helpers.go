package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tempo/internal/core"
	"tempo/internal/log"
	"tempo/internal/services"
)

// extractClientIP resolves the client address, considering proxies.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// First hop is the original client.
		if i := strings.IndexByte(ip, ','); i >= 0 {
			return strings.TrimSpace(ip[:i])
		}
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// parseRange reads the date filter from query or form values. An
// explicit from/to pair wins; preset=week|month computes the bounds
// server-side from the current date. Empty values mean unbounded.
func parseRange(r *http.Request) (core.DateRange, error) {
	get := func(key string) string {
		if v := strings.TrimSpace(r.URL.Query().Get(key)); v != "" {
			return v
		}
		return strings.TrimSpace(r.FormValue(key))
	}

	switch get("preset") {
	case "week":
		return core.ThisWeek(time.Now()), nil
	case "month":
		return core.ThisMonth(time.Now()), nil
	}

	var rng core.DateRange
	if v := get("from"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.DateRange{}, err
		}
		rng.From = d
	}
	if v := get("to"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.DateRange{}, err
		}
		rng.To = d
	}
	return rng, nil
}

// parseEntryForm builds a TimeEntry from form fields date, clock_in,
// clock_out and (for updates) id.
func parseEntryForm(r *http.Request) (core.TimeEntry, error) {
	var e core.TimeEntry

	date, err := core.ParseDate(strings.TrimSpace(r.Form.Get("date")))
	if err != nil {
		return e, err
	}
	in, err := core.ParseClock(strings.TrimSpace(r.Form.Get("clock_in")))
	if err != nil {
		return e, err
	}
	out, err := core.ParseClock(strings.TrimSpace(r.Form.Get("clock_out")))
	if err != nil {
		return e, err
	}

	e.Date, e.ClockIn, e.ClockOut = date, in, out
	if v := strings.TrimSpace(r.Form.Get("id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return e, core.ErrNotFound
		}
		e.ID = id
	}
	return e, nil
}

// parseExpenseForm builds an Expense from form fields date,
// description, kind, amount and (for updates) id.
func parseExpenseForm(r *http.Request) (core.Expense, error) {
	var x core.Expense

	date, err := core.ParseDate(strings.TrimSpace(r.Form.Get("date")))
	if err != nil {
		return x, err
	}
	cents, err := core.ParseDecimalToCents(r.Form.Get("amount"))
	if err != nil {
		return x, err
	}

	x.Date = date
	x.Description = sanitizeInput(r.Form.Get("description"))
	x.Kind = core.ExpenseKind(strings.TrimSpace(r.Form.Get("kind")))
	x.Amount = core.Money{Cents: cents}
	if v := strings.TrimSpace(r.Form.Get("id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return x, core.ErrNotFound
		}
		x.ID = id
	}
	return x, nil
}

// parseID reads the id form field.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.Form.Get("id")), 10, 64)
	if err != nil {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// writeDomainError maps domain errors onto status codes and renders an
// inline error fragment: validation failures are 422, unknown records
// 404, everything else 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidClock),
		errors.Is(err, core.ErrInvalidTimeRange),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, services.ErrAlreadyClockedIn),
		errors.Is(err, services.ErrNotClockedIn):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			log.FieldComponent, log.ComponentHTTP,
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
	}

	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(err.Error()) + `</div>`))
}

// badForm renders the fragment for an unreadable form body.
func badForm(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Parse form error",
		log.FieldComponent, log.ComponentHTTP,
		log.FieldError, err,
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	w.WriteHeader(http.StatusBadRequest)
	_, _ = w.Write([]byte(`<div class="error">Malformed request</div>`))
}

// formatDollars renders cents with the currency symbol ("$400.00").
func formatDollars(cents int64) string {
	if cents < 0 {
		return "-$" + core.FormatCents(-cents)
	}
	return "$" + core.FormatCents(cents)
}

// rangeKey is the summary cache key for a filter range.
func rangeKey(rng core.DateRange) string {
	from, to := "", ""
	if !rng.From.IsZero() {
		from = rng.From.String()
	}
	if !rng.To.IsZero() {
		to = rng.To.String()
	}
	return from + ".." + to
}
