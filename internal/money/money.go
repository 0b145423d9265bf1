// Package money provides fixed-point currency arithmetic in minor units.
// All engine math happens on Money values; floats appear only transiently
// when applying a percentage, and the result is rounded back immediately.
package money

import (
	"fmt"
	"math"
)

// Money is an amount in minor currency units (centavos).
type Money int64

// Percent returns round(m × pct / 100).
func (m Money) Percent(pct float64) Money {
	return Money(math.Round(float64(m) * pct / 100))
}

// CeilDiv splits m into n parts, rounding up (toward positive infinity,
// so negative amounts round toward zero). The caller is responsible for
// n > 0.
func (m Money) CeilDiv(n int64) Money {
	q := int64(m) / n
	if int64(m)%n != 0 && m > 0 {
		q++
	}
	return Money(q)
}

// FromFloat converts a numeric amount of minor units to Money,
// rounding half away from zero. Used only at the input boundary where
// discount and surcharge values arrive as JSON numbers.
func FromFloat(v float64) Money {
	return Money(math.Round(v))
}

// Max0 clamps negative amounts to zero.
func Max0(m Money) Money {
	if m < 0 {
		return 0
	}
	return m
}

// Min returns the smaller of a and b.
func Min(a, b Money) Money {
	if a < b {
		return a
	}
	return b
}

// String formats the amount as major.minor, e.g. 10050 -> "100.50".
// Display formatting with locale rules belongs to the UI; this is for
// logs and error messages only.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
