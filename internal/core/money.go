// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts typed into forms
// and formatting nullable amounts for display.
package core

import (
	"errors"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a form value into a nullable decimal.
//
// An empty (or all-blank) input is the absent amount, not an error. It accepts
// both dot (12.34) and comma (12,34) decimal separators. Zero is a valid,
// present amount; negative values and anything that is not a plain decimal
// number are rejected.
//
// Examples:
//
//	ParseAmount("")      -> absent, nil
//	ParseAmount("12,50") -> 12.5, nil
//	ParseAmount("0")     -> 0, nil
//	ParseAmount("-3")    -> ErrInvalidAmount
func ParseAmount(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.NullDecimal{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.NullDecimal{}, ErrInvalidAmount
	}
	digits := 0
	for _, p := range parts {
		for _, r := range p {
			if !unicode.IsDigit(r) {
				return decimal.NullDecimal{}, ErrInvalidAmount
			}
			digits++
		}
	}
	if digits == 0 {
		return decimal.NullDecimal{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, ErrInvalidAmount
	}
	return decimal.NewNullDecimal(d), nil
}

// Amount wraps a present value.
func Amount(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// FormatAmount renders an amount with two decimals, or "" when absent.
func FormatAmount(n decimal.NullDecimal) string {
	if !n.Valid {
		return ""
	}
	return n.Decimal.StringFixed(2)
}

// FormatMoney renders a present decimal followed by its currency code.
func FormatMoney(d decimal.Decimal, currency string) string {
	s := d.StringFixed(2)
	if currency = strings.TrimSpace(currency); currency != "" {
		return s + " " + currency
	}
	return s
}

// nonZero is the filter engine's notion of "has an amount": zero counts as
// absent here, unlike the exactly-one rule where zero is present.
func nonZero(n decimal.NullDecimal) bool {
	return n.Valid && !n.Decimal.IsZero()
}

func positive(n decimal.NullDecimal) bool {
	return n.Valid && n.Decimal.Sign() > 0
}
