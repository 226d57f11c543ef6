package sheets

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// Row is one exported line: the recorded expense and the budget left after it.
type Row struct {
	Expense         core.Expense
	RemainingBudget decimal.Decimal
	RecordedAt      time.Time
}

// Values returns the cells written for r, in column order:
// recorded at, name, category, amount, remaining budget.
func (r Row) Values() []any {
	return []any{
		r.RecordedAt.UTC().Format("2006-01-02 15:04:05"),
		textCell(r.Expense.Name),
		r.Expense.Category.String(),
		r.Expense.Amount.String(),
		r.RemainingBudget.String(),
	}
}

// textCell keeps user text from being read as a formula by the sheet.
func textCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

// Ports for outbound adapters.
type (
	RowWriter interface {
		Append(ctx context.Context, r Row) (rowRef string, err error)
	}
)
