package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

func TestRowValuesEscapesFormulas(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Rent", "Rent"},
		{`=HYPERLINK("http://evil.example","x")`, `'=HYPERLINK("http://evil.example","x")`},
		{"+1+1", "'+1+1"},
		{"-2", "'-2"},
		{"@SUM(A1)", "'@SUM(A1)"},
		{"Café = good", "Café = good"},
	}

	for _, tt := range tests {
		row := Row{
			Expense:         core.NewExpense("variable", tt.name, decimal.NewFromInt(5)),
			RemainingBudget: decimal.NewFromInt(-300),
			RecordedAt:      time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		}
		values := row.Values()
		if values[1] != tt.want {
			t.Errorf("name cell for %q = %v, want %q", tt.name, values[1], tt.want)
		}
		if values[4] != "-300" {
			t.Errorf("remaining budget cell = %v, want -300", values[4])
		}
	}
}
