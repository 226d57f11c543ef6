package http

import (
	"context"
	"sync"

	"budget/internal/core"
)

// expenseView holds the rendered list rows. It is filled only from the
// tracker's notifications, the same way a browser list is appended to.
type expenseView struct {
	mu   sync.RWMutex
	rows []string
}

func (v *expenseView) handle(_ context.Context, e core.Expense) error {
	v.mu.Lock()
	v.rows = append(v.rows, e.String())
	v.mu.Unlock()
	return nil
}

// Rows returns a copy of the rows in display order.
func (v *expenseView) Rows() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, len(v.rows))
	copy(out, v.rows)
	return out
}
