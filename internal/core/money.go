// Package core holds the ledger's entities and the rules that apply to a
// single record: validation, ordering and the reimbursement lifecycle.
//
// This file contains the Amount type. Amounts are decimals in currency units
// rounded half away from zero to two places whenever they are created or
// edited; aggregations add them exactly and only round for display.
package core

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// AmountPlaces is the number of decimal places kept on create/edit.
const AmountPlaces = 2

// Amount is a positive decimal number of currency units.
type Amount struct {
	decimal.Decimal
}

// NewAmount rounds d to AmountPlaces.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d.Round(AmountPlaces)}
}

// AmountFromFloat is a convenience for literals and tests.
func AmountFromFloat(f float64) Amount {
	return NewAmount(decimal.NewFromFloat(f))
}

// ZeroAmount is the value used for missing or unreadable amounts.
var ZeroAmount = Amount{Decimal: decimal.Zero}

// ParseAmount converts user input to an Amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, rejects
// signs and anything that is not digits, and rounds to two places. Zero is
// rejected: a transaction always moves money.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,345") -> 12.35
//	ParseAmount("-1")     -> ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ZeroAmount, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return ZeroAmount, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return ZeroAmount, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroAmount, ErrInvalidAmount
	}
	a := NewAmount(d)
	if err := a.Validate(); err != nil {
		return ZeroAmount, err
	}
	return a, nil
}

// Validate reports ErrInvalidAmount for zero or negative amounts.
func (a Amount) Validate() error {
	if !a.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Float returns the amount as float64 for display and charting only.
func (a Amount) Float() float64 {
	f, _ := a.Decimal.Float64()
	return f
}

// MarshalJSON writes the amount as a bare JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON never fails: numbers and numeric strings are accepted, anything
// else (null, booleans, garbage) decodes as zero so that one bad record cannot
// take down a whole snapshot.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*a = ZeroAmount
			return nil
		}
		raw = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		*a = ZeroAmount
		return nil
	}
	*a = Amount{Decimal: d}
	return nil
}
