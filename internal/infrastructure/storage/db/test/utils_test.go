package db_test

import (
	"crypto/rand"
	"encoding/hex"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
)

func makeRandomLeg(status domain.OrderStatus) domain.SwapRecord {
	return domain.SwapRecord{
		Order: domain.Order{
			Uuid:                randomId(),
			Engine:              "hop",
			BaseCurrency:        randomHex(3),
			QuoteCurrency:       randomHex(3),
			QuoteCurrencyAmount: decimal.RequireFromString("199.66057701"),
			Amount:              decimal.RequireFromString("49.83913956"),
			Price:               decimal.RequireFromString("4.8"),
			IsMarket:            true,
			Status:              status,
			TimeStarted:         time.Now(),
		},
		RequestOptions: domain.RequestOptions{
			Side:           domain.SideBuy,
			SlippageFactor: decimal.RequireFromString("1.2"),
			DexFeePercent:  decimal.RequireFromString("0.15"),
			NetworkFee:     decimal.RequireFromString("0.0001"),
		},
	}
}

func makeRandomPrivateOrder(status domain.PrivateOrderStatus) domain.SwapRecord {
	record := makeRandomLeg(domain.OrderStatusPending)
	record.Order.Engine = "main"
	now := time.Now()
	record.Privacy = &domain.PrivacyContext{
		Status:                     status,
		BaseCurrency:               randomHex(3),
		QuoteCurrency:              record.Order.QuoteCurrency,
		IntermediateCurrency:       record.Order.BaseCurrency,
		QuoteCurrencyAmount:        decimal.NewFromInt(100),
		ExpectedBaseCurrencyAmount: decimal.RequireFromString("49.83913956"),
		InitialMainBalance:         decimal.RequireFromString("10.0"),
		InitialIntermediateBalance: decimal.RequireFromString("3.5"),
		Stage:                      domain.StageSubmitRelToIntermediate,
		LastCompletedStage:         domain.StageSubmitRelToIntermediate,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}
	return record
}

// requireSameRecord compares records by value, decimals and times included,
// regardless of their in-memory representation.
func requireSameRecord(t *testing.T, expected, got domain.SwapRecord) {
	t.Helper()

	want, have := expected.Order, got.Order
	require.Equal(t, want.Uuid, have.Uuid)
	require.Equal(t, want.Engine, have.Engine)
	require.Equal(t, want.BaseCurrency, have.BaseCurrency)
	require.Equal(t, want.QuoteCurrency, have.QuoteCurrency)
	require.True(t, want.QuoteCurrencyAmount.Equal(have.QuoteCurrencyAmount))
	require.True(t, want.Amount.Equal(have.Amount))
	require.True(t, want.Price.Equal(have.Price))
	require.Equal(t, want.IsMarket, have.IsMarket)
	require.Equal(t, want.Status, have.Status)
	require.True(t, want.TimeStarted.Equal(have.TimeStarted))
	require.Equal(t, expected.RequestOptions.Side, got.RequestOptions.Side)
	require.True(t, expected.RequestOptions.SlippageFactor.Equal(got.RequestOptions.SlippageFactor))
	require.True(t, expected.RequestOptions.NetworkFee.Equal(got.RequestOptions.NetworkFee))
	require.Equal(t, expected.Hidden, got.Hidden)

	if expected.Privacy == nil {
		require.Nil(t, got.Privacy)
		return
	}
	require.NotNil(t, got.Privacy)
	ep, gp := expected.Privacy, got.Privacy
	require.Equal(t, ep.Status, gp.Status)
	require.Equal(t, ep.BaseCurrency, gp.BaseCurrency)
	require.Equal(t, ep.BaseResOrderUuid, gp.BaseResOrderUuid)
	require.True(t, ep.QuoteCurrencyAmount.Equal(gp.QuoteCurrencyAmount))
	require.True(t, ep.ExpectedBaseCurrencyAmount.Equal(gp.ExpectedBaseCurrencyAmount))
	require.True(t, ep.InitialMainBalance.Equal(gp.InitialMainBalance))
	require.True(t, ep.InitialIntermediateBalance.Equal(gp.InitialIntermediateBalance))
	require.True(t, ep.Withdrawn.Equal(gp.Withdrawn))
	require.Equal(t, ep.Stage, gp.Stage)
	require.Equal(t, ep.LastCompletedStage, gp.LastCompletedStage)
	require.Equal(t, ep.FailedStage, gp.FailedStage)
	require.Equal(t, ep.FailureReason, gp.FailureReason)
	require.True(t, ep.CreatedAt.Equal(gp.CreatedAt))
}

func randomHex(len int) string {
	return hex.EncodeToString(randomBytes(len))
}

func randomId() string {
	return uuid.New().String()
}

func randomBytes(len int) []byte {
	b := make([]byte, len)
	//nolint
	rand.Read(b)
	return b
}
