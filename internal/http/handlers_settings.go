package http

import (
	"html/template"
	"net/http"

	"tempo/internal/core"
)

// handleSetRate stores the hourly rate from the settings form.
func (s *Server) handleSetRate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w, r, err)
		return
	}

	cents, err := core.ParseDecimalToCents(r.Form.Get("rate"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.svc.SetHourlyRate(r.Context(), cents); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSummaries()
	w.Header().Set("HX-Trigger", "summary:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Hourly rate set to ` +
		template.HTMLEscapeString(formatDollars(cents)) + `</div>`))
}
