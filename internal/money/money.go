// Package money implements the fixed-point monetary value used throughout
// the ledger. Amounts are always integer minor units (cents); nothing in
// this package or its callers touches float64 for a stored amount.
package money

import (
	"errors"
	"fmt"
)

// Money is an amount in integer minor units (cents). The zero value is zero.
type Money int64

// ErrNegative is returned where a negative amount is never valid.
var ErrNegative = errors.New("money: negative amount")

// Zero is the additive identity.
const Zero Money = 0

func (m Money) Add(other Money) Money { return m + other }
func (m Money) Sub(other Money) Money { return m - other }
func (m Money) Neg() Money             { return -m }

func (m Money) IsZero() bool     { return m == 0 }
func (m Money) IsPositive() bool { return m > 0 }
func (m Money) IsNegative() bool { return m < 0 }

func (m Money) Abs() Money {
	if m < 0 {
		return -m
	}
	return m
}

func (m Money) Cmp(other Money) int {
	switch {
	case m < other:
		return -1
	case m > other:
		return 1
	default:
		return 0
	}
}

// String renders the amount as a decimal string with 2 fraction digits,
// e.g. Money(12345) -> "123.45". Presentation only; never parsed back by
// the core.
func (m Money) String() string {
	neg := m < 0
	v := int64(m)
	if neg {
		v = -v
	}
	whole, frac := v/100, v%100
	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%02d", sign, whole, frac)
}

// DivEqual divides m into n equal shares, rounding down, and returns the
// per-share amount plus the remainder (0 <= remainder < n) that must be
// distributed one minor unit at a time to preserve Sum(shares) == m.
// Requires n > 0; a non-positive n is a programmer error and panics, since
// SplitCalculator is the only caller and always validates n first.
func (m Money) DivEqual(n int) (share Money, remainder int) {
	if n <= 0 {
		panic("money: DivEqual requires n > 0")
	}
	share = Money(int64(m) / int64(n))
	remainder = int(int64(m) % int64(n))
	return share, remainder
}

// MulBp computes floor(m * bp / 10000) using integer arithmetic throughout,
// where bp is a basis-point value in [0, 10000].
func (m Money) MulBp(bp int) Money {
	return Money(int64(m) * int64(bp) / 10000)
}

// Sum returns the total of a slice of amounts.
func Sum(amounts []Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}

// RoundHalfEven rounds a sub-cent numerator/denominator (e.g. computing a
// share as numerator/denominator cents) to the nearest cent, breaking ties
// to the even cent. Used wherever a conversion produces a fractional cent
// instead of the exact integer division SplitCalculator otherwise relies on.
func RoundHalfEven(numerator, denominator int64) Money {
	if denominator == 0 {
		return 0
	}
	neg := (numerator < 0) != (denominator < 0)
	if numerator < 0 {
		numerator = -numerator
	}
	if denominator < 0 {
		denominator = -denominator
	}
	whole := numerator / denominator
	rem := numerator % denominator
	twice := rem * 2
	switch {
	case twice > denominator:
		whole++
	case twice == denominator && whole%2 == 1:
		whole++
	}
	if neg {
		whole = -whole
	}
	return Money(whole)
}
