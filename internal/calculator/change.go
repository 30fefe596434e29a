package calculator

import (
	"errors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ChangeFromClose computes the absolute and percent change of price against the previous close.
func ChangeFromClose(price, prevClose decimal.Decimal) (change, pct decimal.Decimal, err error) {
	if !prevClose.IsPositive() {
		return decimal.Zero, decimal.Zero, errors.New("previous close must be positive")
	}
	change = price.Sub(prevClose)
	pct = change.Div(prevClose).Mul(hundred)
	return change.Round(2), pct.Round(2), nil
}

// Nullable wraps v as a valid NullDecimal rounded to places, or null when v is zero.
func Nullable(v float64, places int32) decimal.NullDecimal {
	if v == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(v).Round(places))
}
