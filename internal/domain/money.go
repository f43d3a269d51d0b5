package domain

import (
	"github.com/shopspring/decimal"
)

// Cents is an amount in minor currency units. All money arithmetic is integer.
type Cents int64

// Abs returns the absolute value.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// Decimal converts to major units (e.g. 1234 -> 12.34).
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats the amount as "1234.56".
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// FromMajor converts a major-unit decimal into Cents, rounding half away from zero.
func FromMajor(d decimal.Decimal) Cents {
	return Cents(d.Shift(2).Round(0).IntPart())
}

// SplitInstallments divides total into n installments.
// The division remainder is assigned to the last installment.
func SplitInstallments(total Cents, n int) []Cents {
	if n <= 0 {
		return nil
	}
	base := total / Cents(n)
	parts := make([]Cents, n)
	for i := range parts {
		parts[i] = base
	}
	parts[n-1] += total - base*Cents(n)
	return parts
}
