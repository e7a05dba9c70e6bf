package mathutil

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places of every amount exchanged with
// the trading engines.
const Precision = 8

var (
	// ErrInvalidPrice ...
	ErrInvalidPrice = errors.New("price must be positive")
	// ErrInvalidSlippage ...
	ErrInvalidSlippage = errors.New("slippage factor must be at least 1")
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidDivider ...
	ErrInvalidDivider = errors.New("divider must be positive")
)

// EffectivePrice returns the ask price increased by the slippage allowance
// (ie. 1.2 for 20%) to guarantee the fill of a market order.
func EffectivePrice(ask, slippageFactor decimal.Decimal) (decimal.Decimal, error) {
	if !ask.IsPositive() {
		return decimal.Zero, ErrInvalidPrice
	}
	if slippageFactor.LessThan(decimal.NewFromInt(1)) {
		return decimal.Zero, ErrInvalidSlippage
	}
	return ask.Mul(slippageFactor), nil
}

// PurchasableAmount returns quoteAmount/divider rounded down to Precision
// decimal places, so that the returned amount times divider never exceeds
// quoteAmount.
func PurchasableAmount(quoteAmount, divider decimal.Decimal) (decimal.Decimal, error) {
	if !quoteAmount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if !divider.IsPositive() {
		return decimal.Zero, ErrInvalidDivider
	}
	// QuoRem truncates the quotient, that is a floor for positive operands.
	q, _ := quoteAmount.QuoRem(divider, Precision)
	return q, nil
}

// Floor rounds amount down to Precision decimal places.
func Floor(amount decimal.Decimal) decimal.Decimal {
	return amount.RoundFloor(Precision)
}
