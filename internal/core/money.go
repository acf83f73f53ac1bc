// Package core defines the canonical transaction record shared by the
// whole pipeline: day-granularity dates, integer-cents money and the
// built-in flow tags.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a signed amount of euro cents. Amounts are kept as integers
// from the parse boundary onward so aggregation never accumulates binary
// floating-point drift. Positive is credit, negative is debit.
type Money struct {
	Cents int64
}

var hundred = decimal.NewFromInt(100)

// ParseAmountToCents converts a decimal amount string into cents.
//
// Both dot and European comma decimal separators are accepted; when a
// comma is present it is treated as the decimal separator and dots as
// thousands grouping ("1.234,56" -> 123456). The third decimal digit is
// rounded half away from zero. Invalid input yields a FormatError; the
// normalizer swallows it per row with a zero amount.
func ParseAmountToCents(s string) (int64, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "€"), "€")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, &FormatError{Field: "amount", Value: raw}
	}

	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &FormatError{Field: "amount", Value: raw}
	}
	return d.Mul(hundred).Round(0).IntPart(), nil
}

// Euros returns the value as float euros for display only. Calculations
// stay in cents.
func (m Money) Euros() float64 {
	return float64(m.Cents) / 100.0
}

// Abs returns the magnitude in cents.
func (m Money) Abs() int64 {
	if m.Cents < 0 {
		return -m.Cents
	}
	return m.Cents
}

// Money serializes as a bare integer number of cents so exports
// round-trip exactly.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(m.Cents, 10)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	cents, err := strconv.ParseInt(strings.Trim(string(b), `"`), 10, 64)
	if err != nil {
		return &FormatError{Field: "amount", Value: string(b)}
	}
	m.Cents = cents
	return nil
}
