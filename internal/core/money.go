// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from form input
// and formatting them for display. Amounts are exact decimals throughout.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to a decimal amount in cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading dollar sign. Input finer than a cent is rejected rather
// than rounded; trailing zeros are fine. The sign is not checked here;
// callers decide what a zero or negative amount means.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("$1.500") -> 1.5, nil
//	ParseAmount("1.005")  -> ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders whole amounts without a fractional part ("500") and
// everything else with two decimals ("42.50").
func FormatAmount(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.String()
	}
	return d.StringFixed(2)
}

// Dollars renders an amount with a leading dollar sign.
func Dollars(d decimal.Decimal) string {
	return "$" + FormatAmount(d)
}

// Sum adds amounts exactly.
func Sum[T any](rows []T, amount func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(amount(r))
	}
	return total
}
