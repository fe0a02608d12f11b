package http

import (
	"html/template"
	"net/http"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w, r, err)
		return
	}

	expense, err := parseExpenseForm(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	saved, err := s.svc.AddExpense(r.Context(), expense)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSummaries()
	w.Header().Set("HX-Trigger", "expenses:changed, summary:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Expense recorded: ` +
		template.HTMLEscapeString(saved.Description) + ` ` +
		template.HTMLEscapeString(formatDollars(saved.Amount.Cents)) + `</div>`))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w, r, err)
		return
	}

	expense, err := parseExpenseForm(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.svc.EditExpense(r.Context(), expense); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSummaries()
	w.Header().Set("HX-Trigger", "expenses:changed, summary:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Expense updated</div>`))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badForm(w, r, err)
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if err := s.svc.RemoveExpense(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateSummaries()
	w.Header().Set("HX-Trigger", "expenses:changed, summary:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Expense removed</div>`))
}
