// Package money bounds decimal amounts to what a NUMERIC(14,2) column stores
// exactly.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	// Scale is the number of decimal places an amount may carry.
	Scale = 2

	integerDigits = 12
	minExponent   = -18
)

var (
	ErrOutOfRange = errors.New("amount out of range")
	ErrTooPrecise = errors.New("amount has more than two decimal places")
)

var limit = decimal.New(1, integerDigits)

// Check reports whether d fits NUMERIC(14,2) without rounding. The exponent is
// checked before any arithmetic, since decimal operations rescale to it.
func Check(d decimal.Decimal) error {
	exp := d.Exponent()
	if exp > integerDigits {
		return ErrOutOfRange
	}
	if exp < minExponent {
		return ErrTooPrecise
	}
	if d.Abs().Cmp(limit) >= 0 {
		return ErrOutOfRange
	}
	if !d.Equal(d.Truncate(Scale)) {
		return ErrTooPrecise
	}
	return nil
}
