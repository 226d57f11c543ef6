package memory

import (
	"context"
	"fmt"
	"sync"

	ports "budget/internal/sheets"
)

// Store keeps exported rows in memory. It stands in for a spreadsheet when
// none is configured.
type Store struct {
	mu   sync.Mutex
	rows []ports.Row
}

var _ ports.RowWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r ports.Row) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of the stored rows.
func (s *Store) Rows() []ports.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ports.Row(nil), s.rows...)
}
