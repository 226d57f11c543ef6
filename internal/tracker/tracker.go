// Package tracker is the single entry point UI layers use to record expenses
// and read the budget.
package tracker

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/ledger"
	applog "budget/internal/log"
	"budget/internal/notify"
)

// Tracker composes the ledger, classification and the notifier.
type Tracker struct {
	ledger   *ledger.Ledger
	notifier *notify.Notifier
	logger   *applog.Logger

	// recordMu serializes Record so handlers observe expenses in commit order.
	recordMu sync.Mutex
}

// New creates a tracker around an existing ledger and notifier. A nil logger
// falls back to a discarding one.
func New(l *ledger.Ledger, n *notify.Notifier, logger *applog.Logger) *Tracker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Tracker{
		ledger:   l,
		notifier: n,
		logger:   logger.WithComponent(applog.ComponentExpense),
	}
}

// NewWithBudget wires a fresh ledger and notifier.
func NewWithBudget(initial decimal.Decimal, logger *applog.Logger) *Tracker {
	return New(ledger.New(initial), notify.New(), logger)
}

// Record classifies the expense, commits it to the ledger and then notifies
// subscribers with it. Handler failures are logged; they never undo the
// commit. Handlers must not call Record.
func (t *Tracker) Record(ctx context.Context, category, name string, amount decimal.Decimal) core.Expense {
	t.recordMu.Lock()
	defer t.recordMu.Unlock()

	e := core.NewExpense(category, name, amount)
	t.ledger.AddExpense(e)

	fields := applog.NewFields().
		WithOperation(applog.OpRecord).
		WithExpense(e.Name, e.Amount.String(), e.Category.String()).
		WithBudget(t.ledger.Budget().String())
	t.logger.InfoContext(ctx, "Expense recorded", fields.ToSlice()...)

	if err := t.notifier.Notify(ctx, e); err != nil {
		t.logger.ErrorContext(ctx, "Expense subscribers failed",
			applog.NewFields().
				WithOperation(applog.OpNotify).
				WithExpense(e.Name, e.Amount.String(), e.Category.String()).
				WithError(err).
				ToSlice()...)
	}

	return e
}

// Budget returns the remaining budget.
func (t *Tracker) Budget() decimal.Decimal {
	return t.ledger.Budget()
}

// Expenses returns the recorded expenses in insertion order.
func (t *Tracker) Expenses() []core.Expense {
	return t.ledger.Expenses()
}

// Summary returns a consistent view of the budget.
func (t *Tracker) Summary() ledger.Snapshot {
	return t.ledger.Snapshot()
}

// Subscribe registers h to be called after every recorded expense.
func (t *Tracker) Subscribe(h notify.Handler) {
	t.notifier.Subscribe(h)
}
