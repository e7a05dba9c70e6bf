package mathutil_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-privateswap/pkg/mathutil"
)

func TestRequiredQuoteAmount(t *testing.T) {
	tests := []struct {
		name            string
		price           string
		dexFeePercent   string
		networkFee      string
		quoteAmount     string
		expectedDivider string
		expectedAmount  string
	}{
		{
			name:            "intermediate_over_quote",
			price:           "0.5",
			dexFeePercent:   "0.15",
			networkFee:      "0.0001",
			quoteAmount:     "100",
			expectedDivider: "0.50085",
			expectedAmount:  "199.66057701",
		},
		{
			name:            "base_over_intermediate",
			price:           "4",
			dexFeePercent:   "0.15",
			networkFee:      "0.0001",
			quoteAmount:     "199.66057701",
			expectedDivider: "4.0061",
			expectedAmount:  "49.83913956",
		},
		{
			name:            "no_fees",
			price:           "3",
			dexFeePercent:   "0",
			networkFee:      "0",
			quoteAmount:     "1",
			expectedDivider: "3",
			expectedAmount:  "0.33333333",
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			divider, err := mathutil.RequiredQuoteAmount(
				decimal.RequireFromString(tt.price),
				decimal.RequireFromString(tt.dexFeePercent),
				decimal.RequireFromString(tt.networkFee),
			)
			require.NoError(t, err)
			require.True(t, decimal.RequireFromString(tt.expectedDivider).Equal(divider))

			amount, err := mathutil.PurchasableAmount(
				decimal.RequireFromString(tt.quoteAmount), divider,
			)
			require.NoError(t, err)
			require.Equal(t, tt.expectedAmount, amount.StringFixed(mathutil.Precision))
		})
	}
}

func TestPurchasableAmountNeverOverspends(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	randDecimal := func(max int64, exp int32) decimal.Decimal {
		return decimal.New(r.Int63n(max)+1, exp)
	}

	for i := 0; i < 2000; i++ {
		price := randDecimal(1e10, -8)
		dexFee := randDecimal(500, -2)
		networkFee := randDecimal(1e5, -8)
		quoteAmount := randDecimal(1e12, -8)

		divider, err := mathutil.RequiredQuoteAmount(price, dexFee, networkFee)
		require.NoError(t, err)

		amount, err := mathutil.PurchasableAmount(quoteAmount, divider)
		require.NoError(t, err)
		require.True(t, amount.Mul(divider).LessThanOrEqual(quoteAmount))
		require.True(t, amount.Exponent() >= -mathutil.Precision)

		next := amount.Add(decimal.New(1, -mathutil.Precision))
		require.True(t, next.Mul(divider).GreaterThan(quoteAmount))
	}
}

func TestEffectivePrice(t *testing.T) {
	price, err := mathutil.EffectivePrice(
		decimal.RequireFromString("0.5"), decimal.RequireFromString("1.2"),
	)
	require.NoError(t, err)
	require.Equal(t, "0.6", price.String())

	_, err = mathutil.EffectivePrice(decimal.Zero, decimal.RequireFromString("1.2"))
	require.ErrorIs(t, err, mathutil.ErrInvalidPrice)

	_, err = mathutil.EffectivePrice(decimal.NewFromInt(1), decimal.RequireFromString("0.9"))
	require.ErrorIs(t, err, mathutil.ErrInvalidSlippage)
}

func TestRouteAmount(t *testing.T) {
	fees := mathutil.Fees{
		DexFeePercent: decimal.RequireFromString("0.15"),
		NetworkFee:    decimal.RequireFromString("0.0001"),
	}
	intermediate, base, err := mathutil.RouteAmount(
		decimal.NewFromInt(100),
		decimal.RequireFromString("0.5"),
		decimal.NewFromInt(4),
		fees, fees,
	)
	require.NoError(t, err)
	require.Equal(t, "199.66057701", intermediate.String())
	require.Equal(t, "49.83913956", base.String())
}

func TestFailingAmounts(t *testing.T) {
	_, err := mathutil.RequiredQuoteAmount(
		decimal.NewFromInt(1), decimal.NewFromInt(-1), decimal.Zero,
	)
	require.ErrorIs(t, err, mathutil.ErrInvalidFee)

	_, err = mathutil.PurchasableAmount(decimal.Zero, decimal.NewFromInt(1))
	require.ErrorIs(t, err, mathutil.ErrInvalidAmount)

	_, err = mathutil.PurchasableAmount(decimal.NewFromInt(1), decimal.Zero)
	require.ErrorIs(t, err, mathutil.ErrInvalidDivider)
}
