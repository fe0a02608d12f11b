package http

import (
	"html/template"
	"net/http"
)

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w, r, err)
		return
	}

	entry, err := parseEntryForm(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	saved, err := s.svc.AddTimeEntry(r.Context(), entry)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSummaries()
	w.Header().Set("HX-Trigger", "entries:changed, summary:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Entry recorded: ` +
		template.HTMLEscapeString(saved.Date.String()) + ` ` +
		template.HTMLEscapeString(saved.ClockIn.String()) + `-` +
		template.HTMLEscapeString(saved.ClockOut.String()) + `</div>`))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w, r, err)
		return
	}

	entry, err := parseEntryForm(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.svc.EditTimeEntry(r.Context(), entry); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSummaries()
	w.Header().Set("HX-Trigger", "entries:changed, summary:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Entry updated</div>`))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w, r, err)
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.svc.RemoveTimeEntry(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSummaries()
	w.Header().Set("HX-Trigger", "entries:changed, summary:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Entry removed</div>`))
}
