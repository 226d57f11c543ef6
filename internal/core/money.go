// Package core provides the expense entity, its classification and amount
// parsing helpers shared by the UI layers.
//
// This file contains functions for parsing monetary amounts from user input
// and formatting budget figures for display.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to a positive decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for malformed input and for zero or negative values,
// which is the only amount validation the tracker performs.
//
// Examples:
//
//	ParseAmount("120.50") -> 120.5, nil
//	ParseAmount("120,50") -> 120.5, nil
//	ParseAmount("0")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatBudget renders an amount with two decimals, e.g. "379.50".
// Negative budgets keep their sign.
func FormatBudget(d decimal.Decimal) string {
	return d.StringFixed(2)
}
