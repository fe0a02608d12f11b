package http

import (
	"errors"
	"html/template"
	"net/http"

	"tempo/internal/services"
)

// handleClockToggle clocks in when no session is open and clocks out
// otherwise, mirroring a single start/stop button in the UI.
func (s *Server) handleClockToggle(w http.ResponseWriter, r *http.Request) {
	session, err := s.svc.ClockIn(r.Context())
	if err == nil {
		w.Header().Set("HX-Trigger", "clock:changed")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="success">Clocked in at ` +
			template.HTMLEscapeString(session.ClockIn.String()) + `</div>`))
		return
	}
	if !errors.Is(err, services.ErrAlreadyClockedIn) {
		writeDomainError(w, r, err)
		return
	}

	entry, err := s.svc.ClockOut(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSummaries()
	w.Header().Set("HX-Trigger", "clock:changed, entries:changed, summary:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Clocked out at ` +
		template.HTMLEscapeString(entry.ClockOut.String()) + `</div>`))
}

// handleClockDiscard abandons the open session without recording an
// entry, so a session stuck past midnight does not wedge the clock.
func (s *Server) handleClockDiscard(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DiscardSession(r.Context()); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("HX-Trigger", "clock:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Session discarded</div>`))
}

// handleClockStatus renders the current clock state fragment.
func (s *Server) handleClockStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	session, err := s.svc.ClockStatus(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if session == nil {
		_, _ = w.Write([]byte(`<div id="clock-status" class="clock-status">` +
			`<span class="clocked-out">Clocked out</span>` +
			`<button hx-post="/clock" hx-target="#clock-feedback">Clock In</button></div>`))
		return
	}

	_, _ = w.Write([]byte(`<div id="clock-status" class="clock-status">` +
		`<span class="clocked-in">Clocked in since ` +
		template.HTMLEscapeString(session.ClockIn.String()) + `</span>` +
		`<button hx-post="/clock" hx-target="#clock-feedback">Clock Out</button>` +
		`<button hx-post="/clock/discard" hx-target="#clock-feedback" class="danger">Discard</button></div>`))
}
