package mathutil

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidFee ...
	ErrInvalidFee = errors.New("fees must not be negative")

	hundred = decimal.NewFromInt(100)
)

// Fees groups the fees charged on top of the price of a leg.
type Fees struct {
	// DexFeePercent is a percentage, ie. 0.15 means 0.15%.
	DexFeePercent decimal.Decimal
	// NetworkFee is a fixed amount expressed in the quote currency of the leg.
	NetworkFee decimal.Decimal
}

// Validate ...
func (f Fees) Validate() error {
	if f.DexFeePercent.IsNegative() || f.NetworkFee.IsNegative() {
		return ErrInvalidFee
	}
	return nil
}

// DexFee returns the fee charged by the engine on the given price.
func DexFee(price, dexFeePercent decimal.Decimal) decimal.Decimal {
	return price.Mul(dexFeePercent).Div(hundred)
}

// RequiredQuoteAmount returns the amount of quote currency required to buy one
// unit of base currency at price once fees are added:
// price + price*dexFeePercent/100 + networkFee.
func RequiredQuoteAmount(
	price, dexFeePercent, networkFee decimal.Decimal,
) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Zero, ErrInvalidPrice
	}
	if dexFeePercent.IsNegative() || networkFee.IsNegative() {
		return decimal.Zero, ErrInvalidFee
	}
	return price.Add(DexFee(price, dexFeePercent)).Add(networkFee), nil
}

// LegAmount returns the amount of base currency purchasable with quoteAmount
// at the given price and fees, rounded down to Precision.
func LegAmount(quoteAmount, price decimal.Decimal, fees Fees) (decimal.Decimal, error) {
	divider, err := RequiredQuoteAmount(price, fees.DexFeePercent, fees.NetworkFee)
	if err != nil {
		return decimal.Zero, err
	}
	return PurchasableAmount(quoteAmount, divider)
}

// RouteAmount chains two legs: quoteAmount is converted into the
// intermediate currency at intermediateAsk, then the result is converted into
// base currency at baseAsk. It returns both amounts.
func RouteAmount(
	quoteAmount, intermediateAsk, baseAsk decimal.Decimal,
	firstLegFees, secondLegFees Fees,
) (intermediateAmount, baseAmount decimal.Decimal, err error) {
	intermediateAmount, err = LegAmount(quoteAmount, intermediateAsk, firstLegFees)
	if err != nil {
		return
	}
	baseAmount, err = LegAmount(intermediateAmount, baseAsk, secondLegFees)
	return
}
