// Package core provides the expense record model and money handling.
//
// Amounts travel as JSON numbers or strings depending on the producer, so
// Amount keeps the raw text and parses on demand with shopspring/decimal.
package core

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySuffix is appended to every displayed amount.
const CurrencySuffix = " €"

// Amount is a decimal currency value kept in its received textual form.
type Amount struct {
	raw string
}

// NewAmount wraps a raw textual amount.
func NewAmount(raw string) Amount {
	return Amount{raw: strings.TrimSpace(raw)}
}

// UnmarshalJSON accepts numbers, strings and null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		a.raw = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		a.raw = strings.TrimSpace(s)
		return nil
	}
	a.raw = string(b)
	return nil
}

// MarshalJSON emits the amount as a JSON number when it parses, as a string
// otherwise and as null when absent.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.raw == "" {
		return []byte("null"), nil
	}
	if d, ok := a.Decimal(); ok {
		return []byte(d.String()), nil
	}
	return json.Marshal(a.raw)
}

// Raw returns the amount as received.
func (a Amount) Raw() string { return a.raw }

// IsSet reports whether any value was received.
func (a Amount) IsSet() bool { return a.raw != "" }

// Decimal parses the amount. ok is false for absent or unparsable values.
func (a Amount) Decimal() (decimal.Decimal, bool) {
	d, err := ParseDecimal(a.raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// OrZero returns the parsed value, or zero when the value cannot be parsed.
func (a Amount) OrZero() decimal.Decimal {
	d, _ := a.Decimal()
	return d
}

// ParseDecimal converts a decimal string to a decimal value.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// ignores ordinary and non-breaking spaces used as thousands separators.
//
// Examples:
//
//	ParseDecimal("12.5")     -> 12.5
//	ParseDecimal("12,50")    -> 12.5
//	ParseDecimal("1 234,00") -> 1234
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "").Replace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatFixed renders a value with exactly two fraction digits, dot separated.
func FormatFixed(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatCurrency renders an amount for display. Unparsable amounts display
// as zero, matching how they order.
func FormatCurrency(a Amount) string {
	return FormatFixed(a.OrZero()) + CurrencySuffix
}
