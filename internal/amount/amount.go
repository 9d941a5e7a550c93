// Package amount implements the ledger's fixed-point scalar type.
//
// Amount is a signed integer counting units of 1/10000, so ordinary
// arithmetic on the underlying int64 is exact: no binary floating point
// ever touches a balance.
package amount

import (
	"fmt"
	"strconv"
	"strings"
)

// scale is the number of fractional decimal digits an Amount carries.
const scale = 4

const scaleFactor = 10000

// Amount is a fixed-point value with exactly 4 fractional decimal digits,
// stored as the underlying integer number of 1/10000ths.
type Amount int64

// Zero is the additive identity.
const Zero Amount = 0

// ParseError reports a malformed decimal literal passed to Parse.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("amount: cannot parse %q: %s", e.Input, e.Reason)
}

// Parse reads a decimal literal with 0-4 fractional digits, e.g. "12",
// "12.5", "12.1234". Anything with more than 4 fractional digits is
// rejected rather than truncated, so Parse/String round-trip exactly.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ParseError{Input: s, Reason: "empty"}
	}

	neg := false
	rest := s
	switch rest[0] {
	case '-':
		neg = true
		rest = rest[1:]
	case '+':
		rest = rest[1:]
	}
	if rest == "" {
		return 0, &ParseError{Input: s, Reason: "no digits"}
	}

	intPart, fracPart, hasFrac := strings.Cut(rest, ".")
	if intPart == "" {
		return 0, &ParseError{Input: s, Reason: "missing integer part"}
	}
	if !isAllDigits(intPart) {
		return 0, &ParseError{Input: s, Reason: "non-digit in integer part"}
	}
	if hasFrac {
		if len(fracPart) > scale {
			return 0, &ParseError{Input: s, Reason: "more than 4 fractional digits"}
		}
		if !isAllDigits(fracPart) {
			return 0, &ParseError{Input: s, Reason: "non-digit in fractional part"}
		}
	}

	intVal, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, &ParseError{Input: s, Reason: "integer part overflow"}
	}

	fracVal := int64(0)
	if hasFrac && fracPart != "" {
		padded := fracPart + strings.Repeat("0", scale-len(fracPart))
		fracVal, err = strconv.ParseInt(padded, 10, 64)
		if err != nil {
			return 0, &ParseError{Input: s, Reason: "fractional part overflow"}
		}
	}

	units := intVal*scaleFactor + fracVal
	if neg {
		units = -units
	}
	return Amount(units), nil
}

// String renders the amount with exactly 4 fractional digits, e.g.
// "12.5000", "-0.0001". Never uses scientific notation.
func (a Amount) String() string {
	units := int64(a)
	neg := units < 0
	if neg {
		units = -units
	}
	intPart := units / scaleFactor
	fracPart := units % scaleFactor
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%04d", sign, intPart, fracPart)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Add returns a+b. Callers that can't bound their inputs (e.g. an
// accumulator fed by untrusted input records) should use AddChecked
// instead.
func (a Amount) Add(b Amount) Amount { return a + b }

// AddChecked returns a+b and reports whether the addition overflowed
// int64. On overflow the returned Amount is the zero value and must be
// discarded by the caller.
func (a Amount) AddChecked(b Amount) (Amount, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// Sub returns a-b.
func (a Amount) Sub(b Amount) Amount { return a - b }

// Neg returns -a.
func (a Amount) Neg() Amount { return -a }

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool { return a < b }

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool { return a < 0 }
