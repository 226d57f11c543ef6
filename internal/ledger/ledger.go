// Package ledger holds the running budget and the ordered history of
// recorded expenses.
package ledger

import (
	"sync"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// DefaultInitialBudget is used when no budget is configured.
var DefaultInitialBudget = decimal.NewFromInt(1000)

// Ledger is the single holder of budget state. One instance is created at
// startup and lives for the whole process; there is no reset.
//
// Invariant: remaining == initial - sum(expenses[i].Amount).
type Ledger struct {
	mu        sync.RWMutex
	initial   decimal.Decimal
	remaining decimal.Decimal
	expenses  []core.Expense
}

// New creates a ledger starting from the given budget.
func New(initial decimal.Decimal) *Ledger {
	return &Ledger{
		initial:   initial,
		remaining: initial,
	}
}

// AddExpense appends e and deducts its amount. The budget is allowed to go
// negative.
func (l *Ledger) AddExpense(e core.Expense) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expenses = append(l.expenses, e)
	l.remaining = l.remaining.Sub(e.Amount)
}

// Budget returns the remaining budget.
func (l *Ledger) Budget() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.remaining
}

// Initial returns the budget the ledger started from.
func (l *Ledger) Initial() decimal.Decimal {
	return l.initial
}

// Spent returns the sum of all recorded amounts.
func (l *Ledger) Spent() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.initial.Sub(l.remaining)
}

// Expenses returns a copy of the history in insertion order.
func (l *Ledger) Expenses() []core.Expense {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Expense(nil), l.expenses...)
}

// Len returns the number of recorded expenses.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.expenses)
}

// Snapshot is a consistent read of the ledger.
type Snapshot struct {
	Initial   decimal.Decimal
	Remaining decimal.Decimal
	Spent     decimal.Decimal
	Totals    map[core.Category]decimal.Decimal
	Count     int
}

// Snapshot returns initial, remaining and per-category totals taken under a
// single read lock.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	totals := map[core.Category]decimal.Decimal{
		core.Fixed:    decimal.Zero,
		core.Variable: decimal.Zero,
	}
	for _, e := range l.expenses {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return Snapshot{
		Initial:   l.initial,
		Remaining: l.remaining,
		Spent:     l.initial.Sub(l.remaining),
		Totals:    totals,
		Count:     len(l.expenses),
	}
}
