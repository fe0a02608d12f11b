package http

import (
	"net/http"
	"time"

	"tempo/internal/core"
	"tempo/internal/log"
)

type entryRow struct {
	ID       int64
	Date     string
	ClockIn  string
	ClockOut string
	Hours    string
}

type expenseRow struct {
	ID          int64
	Date        string
	Description string
	Kind        string
	Amount      string
	// AmountValue is the bare decimal for the edit form input.
	AmountValue string
}

type dayRow struct {
	Date       string
	Hours      string
	Gross      string
	Reimbursed string
	Deducted   string
	Total      string
}

type summaryView struct {
	From       string
	To         string
	Hours      string
	Gross      string
	Reimbursed string
	Deducted   string
	TotalDue   string
	Days       []dayRow
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	rate, err := s.svc.HourlyRate(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Hourly rate error", log.FieldError, err)
	}

	data := struct {
		Today string
		Rate  string
	}{
		Today: core.DateOf(time.Now()).String(),
		Rate:  core.FormatCents(rate),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", log.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleSummary renders the payroll summary partial for the requested
// range. Results are cached per range until the next mutation.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	rng, err := parseRange(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	key := rangeKey(rng)
	sum, found := s.summaryCache.Get(key)
	if !found {
		sum, err = s.svc.Summary(r.Context(), rng)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		s.summaryCache.Set(key, sum)
	} else {
		s.logger.DebugContext(r.Context(), "Summary cache hit", "range", key)
	}

	view := summaryView{
		Hours:      core.FormatCentihours(sum.Centihours()),
		Gross:      formatDollars(sum.GrossCents),
		Reimbursed: formatDollars(sum.ReimbursedCents),
		Deducted:   formatDollars(sum.DeductedCents),
		TotalDue:   formatDollars(sum.TotalDueCents),
	}
	if !rng.From.IsZero() {
		view.From = rng.From.String()
	}
	if !rng.To.IsZero() {
		view.To = rng.To.String()
	}
	for _, d := range sum.Days {
		view.Days = append(view.Days, dayRow{
			Date:       d.Date.String(),
			Hours:      core.FormatCentihours(core.CentihoursOf(d.Minutes)),
			Gross:      formatDollars(d.GrossCents),
			Reimbursed: formatDollars(d.ReimbursedCents),
			Deducted:   formatDollars(d.DeductedCents),
			Total:      formatDollars(d.TotalCents),
		})
	}

	s.renderPartial(w, r, "summary.html", view)
}

// handleEntriesTable renders the time entry table partial.
func (s *Server) handleEntriesTable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	rng, err := parseRange(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	entries, err := s.svc.TimeEntries(r.Context(), rng)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	rows := make([]entryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, entryRow{
			ID:       e.ID,
			Date:     e.Date.String(),
			ClockIn:  e.ClockIn.String(),
			ClockOut: e.ClockOut.String(),
			Hours:    core.FormatCentihours(e.Centihours()),
		})
	}

	s.renderPartial(w, r, "entries.html", struct{ Rows []entryRow }{rows})
}

// handleExpensesTable renders the expense table partial.
func (s *Server) handleExpensesTable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	rng, err := parseRange(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	expenses, err := s.svc.Expenses(r.Context(), rng)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	rows := make([]expenseRow, 0, len(expenses))
	for _, x := range expenses {
		rows = append(rows, expenseRow{
			ID:          x.ID,
			Date:        x.Date.String(),
			Description: x.Description,
			Kind:        string(x.Kind),
			Amount:      formatDollars(x.Amount.Cents),
			AmountValue: core.FormatCents(x.Amount.Cents),
		})
	}

	s.renderPartial(w, r, "expenses.html", struct{ Rows []expenseRow }{rows})
}

func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution error", log.FieldError, err, "template", name)
		_, _ = w.Write([]byte(`<div class="error">Rendering failed</div>`))
	}
}
