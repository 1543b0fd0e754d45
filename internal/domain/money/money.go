// Package money holds the integer-currency arithmetic shared by every cost
// calculation.
//
// All amounts are int64 values in the smallest denomination (yen). The only
// rounding rule is round-half-up to the nearest integer, applied through Round.
// Intermediate products are carried as exact rationals so that
//
//	commonCost * subtotal / total
//
// neither loses precision nor overflows int64 before it is rounded.
package money

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when a negative amount reaches a calculator.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrZeroDenominator is returned when a rational is built with a zero denominator.
	ErrZeroDenominator = errors.New("zero denominator")

	// ErrOverflow is returned when a sum or rounded result does not fit in int64.
	ErrOverflow = errors.New("amount overflows int64")
)

var two = decimal.NewFromInt(2)

// Rational is an exact non-reduced fraction of two integers.
type Rational struct {
	num decimal.Decimal
	den decimal.Decimal
}

// NewRational builds num/den. den must be positive.
func NewRational(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, ErrZeroDenominator
	}
	if den < 0 {
		return Rational{}, fmt.Errorf("%w: denominator %d", ErrInvalidAmount, den)
	}
	return Rational{num: decimal.NewFromInt(num), den: decimal.NewFromInt(den)}, nil
}

// Mul returns r * n.
func (r Rational) Mul(n int64) Rational {
	return Rational{num: r.num.Mul(decimal.NewFromInt(n)), den: r.den}
}

// String renders the fraction as "num/den".
func (r Rational) String() string {
	return r.num.String() + "/" + r.den.String()
}

// Round rounds r half-up to the nearest integer.
// Negative rationals are rejected with ErrInvalidAmount.
func Round(r Rational) (int64, error) {
	if r.den.IsZero() {
		return 0, ErrZeroDenominator
	}
	if r.num.IsNegative() {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, r)
	}

	q, rem := r.num.QuoRem(r.den, 0)
	if rem.Mul(two).Cmp(r.den) >= 0 {
		q = q.Add(decimal.NewFromInt(1))
	}

	bi := q.BigInt()
	if !bi.IsInt64() {
		return 0, fmt.Errorf("%w: %s", ErrOverflow, q)
	}
	return bi.Int64(), nil
}

// Share returns Round(total * part / whole), the part of total that falls to
// part out of whole. whole must be positive.
func Share(total, part, whole int64) (int64, error) {
	if total < 0 || part < 0 {
		return 0, fmt.Errorf("%w: share of %d for part %d", ErrInvalidAmount, total, part)
	}
	r, err := NewRational(part, whole)
	if err != nil {
		return 0, err
	}
	return Round(r.Mul(total))
}

// Divide returns Round(total / n). n must be positive.
func Divide(total int64, n int) (int64, error) {
	r, err := NewRational(total, int64(n))
	if err != nil {
		return 0, err
	}
	return Round(r)
}

// Validate rejects negative amounts, naming the offending field.
func Validate(field string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: %s is %d", ErrInvalidAmount, field, amount)
	}
	return nil
}

// ValueOrZero treats an absent amount as 0.
func ValueOrZero(amount *int64) int64 {
	if amount == nil {
		return 0
	}
	return *amount
}

// Sum adds non-negative amounts, treating nil as 0. The first negative amount
// is reported with its field name; names and amounts are paired by index.
func Sum(names []string, amounts ...*int64) (int64, error) {
	var total int64
	for i, a := range amounts {
		v := ValueOrZero(a)
		name := fmt.Sprintf("amount[%d]", i)
		if i < len(names) {
			name = names[i]
		}
		if err := Validate(name, v); err != nil {
			return 0, err
		}
		next, err := Add(total, v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		total = next
	}
	return total, nil
}

// Add returns a + b for non-negative amounts, or ErrOverflow when the sum
// does not fit in int64.
func Add(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("%w: %d + %d", ErrInvalidAmount, a, b)
	}
	if a > math.MaxInt64-b {
		return 0, fmt.Errorf("%w: %d + %d", ErrOverflow, a, b)
	}
	return a + b, nil
}

// Ptr returns a pointer to v. Handy for optional amount fields.
func Ptr(v int64) *int64 {
	return &v
}
