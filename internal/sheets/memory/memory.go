package memory

import (
	"context"
	"fmt"
	"sync"

	"tempo/internal/core"
	ports "tempo/internal/sheets"
)

// Store is an in-memory RecordWriter used for local runs and tests.
type Store struct {
	mu       sync.Mutex
	entries  []core.TimeEntry
	expenses []core.Expense
	failNext error
}

var _ ports.RecordWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendTimeEntry stores the entry and returns a synthetic row reference.
func (s *Store) AppendTimeEntry(_ context.Context, e core.TimeEntry, _ int64) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return "", err
	}
	s.entries = append(s.entries, e)
	return fmt.Sprintf("mem:timesheet:%d", len(s.entries)), nil
}

// AppendExpense stores the expense and returns a synthetic row reference.
func (s *Store) AppendExpense(_ context.Context, x core.Expense) (string, error) {
	if err := x.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return "", err
	}
	s.expenses = append(s.expenses, x)
	return fmt.Sprintf("mem:expenses:%d", len(s.expenses)), nil
}

// FailNext makes the next append return err instead of writing.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *Store) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

// TimeEntries returns a copy of the appended entries.
func (s *Store) TimeEntries() []core.TimeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.TimeEntry(nil), s.entries...)
}

// Expenses returns a copy of the appended expenses.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...)
}
