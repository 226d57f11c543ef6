package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/core"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLedger_StartsAtInitialBudget(t *testing.T) {
	l := New(DefaultInitialBudget)

	assert.True(t, l.Budget().Equal(amount("1000")))
	assert.True(t, l.Initial().Equal(amount("1000")))
	assert.True(t, l.Spent().IsZero())
	assert.Empty(t, l.Expenses())
	assert.Equal(t, 0, l.Len())
}

func TestLedger_AddExpense(t *testing.T) {
	l := New(DefaultInitialBudget)

	l.AddExpense(core.NewExpense("fixed", "Rent", amount("500")))
	assert.True(t, l.Budget().Equal(amount("500")), "got %s", l.Budget())

	l.AddExpense(core.NewExpense("variable", "Food", amount("120.50")))
	assert.True(t, l.Budget().Equal(amount("379.5")), "got %s", l.Budget())
	assert.True(t, l.Spent().Equal(amount("620.5")))
}

func TestLedger_BudgetMayGoNegative(t *testing.T) {
	l := New(amount("100"))

	l.AddExpense(core.NewExpense("fixed", "Car", amount("250")))

	assert.True(t, l.Budget().Equal(amount("-150")))
}

func TestLedger_InvariantHolds(t *testing.T) {
	l := New(DefaultInitialBudget)
	amounts := []string{"1", "0.01", "33.33", "999.99", "12.5", "-4"}

	sum := decimal.Zero
	for i, a := range amounts {
		l.AddExpense(core.NewExpense("variable", "e", amount(a)))
		sum = sum.Add(amount(a))
		require.True(t, l.Budget().Equal(l.Initial().Sub(sum)), "after %d expenses", i+1)
	}
}

func TestLedger_ExpensesKeepInsertionOrder(t *testing.T) {
	l := New(DefaultInitialBudget)
	names := []string{"a", "b", "c", "d"}
	for _, n := range names {
		l.AddExpense(core.NewExpense("fixed", n, amount("1")))
	}

	got := l.Expenses()
	require.Len(t, got, len(names))
	for i, n := range names {
		assert.Equal(t, n, got[i].Name)
	}
}

func TestLedger_ExpensesIsACopy(t *testing.T) {
	l := New(DefaultInitialBudget)
	l.AddExpense(core.NewExpense("fixed", "Rent", amount("500")))

	got := l.Expenses()
	got[0].Name = "changed"
	_ = append(got, core.NewExpense("fixed", "extra", amount("1")))

	again := l.Expenses()
	require.Len(t, again, 1)
	assert.Equal(t, "Rent", again[0].Name)
}

func TestLedger_Snapshot(t *testing.T) {
	l := New(DefaultInitialBudget)
	l.AddExpense(core.NewExpense("fixed", "Rent", amount("500")))
	l.AddExpense(core.NewExpense("variable", "Food", amount("120.50")))
	l.AddExpense(core.NewExpense("other", "Misc", amount("10")))

	s := l.Snapshot()

	assert.Equal(t, 3, s.Count)
	assert.True(t, s.Initial.Equal(amount("1000")))
	assert.True(t, s.Remaining.Equal(amount("369.5")))
	assert.True(t, s.Spent.Equal(amount("630.5")))
	assert.True(t, s.Totals[core.Fixed].Equal(amount("500")))
	assert.True(t, s.Totals[core.Variable].Equal(amount("130.5")))
}
