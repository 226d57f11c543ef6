package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Fixed    Category = "Fixed"
	Variable Category = "Variable"
)

// Tags accepted from UI layers when recording an expense.
const (
	TagFixed    = "fixed"
	TagVariable = "variable"
)

type (
	Category string

	// Expense is a single recorded outlay. It is a value type: once built by
	// NewExpense it is never mutated.
	Expense struct {
		Name     string
		Amount   decimal.Decimal
		Category Category
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyName     = errors.New("empty expense name")
)

// Classify maps a raw category tag to a Category. Anything other than the
// fixed tag falls back to Variable.
func Classify(tag string) Category {
	if strings.TrimSpace(tag) == TagFixed {
		return Fixed
	}
	return Variable
}

// NewExpense builds an Expense tagged with the category resolved from tag.
// The amount is taken as given; positivity is the caller's precondition.
func NewExpense(tag, name string, amount decimal.Decimal) Expense {
	return Expense{
		Name:     name,
		Amount:   amount,
		Category: Classify(tag),
	}
}

func (c Category) String() string {
	return string(c)
}

// String renders the display row used by the UI layers.
func (e Expense) String() string {
	return fmt.Sprintf("%s (%s): $%s", e.Name, e.Category, e.Amount.String())
}

// Validate checks the UI-layer preconditions for recording e.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}
