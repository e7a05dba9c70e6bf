package legtracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-privateswap/internal/core/application"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/legtracker"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports/mocks"
	"github.com/tdex-network/tdex-privateswap/internal/infrastructure/storage/db/inmemory"
)

func TestTrackOnce(t *testing.T) {
	ctx := context.Background()
	ledger := inmemory.NewSwapLedger()

	legs := []domain.Order{
		newLeg("pending", "main", domain.OrderStatusPending, true),
		newLeg("matched", "main", domain.OrderStatusMatched, true),
		newLeg("backward", "main", domain.OrderStatusSwapping, true),
		newLeg("unreachable", "main", domain.OrderStatusPending, true),
		newLeg("completed", "main", domain.OrderStatusCompleted, true),
		newLeg("limit", "main", domain.OrderStatusUnmatched, false),
		newLeg("other", "unknown", domain.OrderStatusPending, true),
	}
	for _, leg := range legs {
		require.NoError(t, ledger.Insert(ctx, domain.SwapRecord{Order: leg}))
	}

	engine := mocks.NewMockTradingEngine(t, "main")
	engine.On("GetOrderStatus", mock.Anything, "pending").
		Return(domain.OrderStatusSwapping, nil).Once()
	engine.On("GetOrderStatus", mock.Anything, "matched").
		Return(domain.OrderStatusMatched, nil).Once()
	engine.On("GetOrderStatus", mock.Anything, "backward").
		Return(domain.OrderStatusPending, nil).Once()
	engine.On("GetOrderStatus", mock.Anything, "unreachable").
		Return(nil, errors.New("connection refused")).Once()

	engines, err := application.NewEngineRegistry(engine)
	require.NoError(t, err)
	svc, err := legtracker.NewService(ledger, engines, time.Second)
	require.NoError(t, err)

	err = svc.TrackOnce(ctx)
	require.NoError(t, err)

	expected := map[string]domain.OrderStatus{
		"pending":     domain.OrderStatusSwapping,
		"matched":     domain.OrderStatusMatched,
		"backward":    domain.OrderStatusSwapping,
		"unreachable": domain.OrderStatusPending,
		"completed":   domain.OrderStatusCompleted,
		"limit":       domain.OrderStatusUnmatched,
		"other":       domain.OrderStatusPending,
	}
	for uuid, status := range expected {
		record, err := ledger.Get(ctx, uuid)
		require.NoError(t, err)
		require.Equal(t, status, record.Order.Status, uuid)
	}
}

func TestScheduledTracking(t *testing.T) {
	ctx := context.Background()
	ledger := inmemory.NewSwapLedger()
	leg := newLeg("leg-1", "hop", domain.OrderStatusPending, true)
	require.NoError(t, ledger.Insert(ctx, domain.SwapRecord{Order: leg}))

	engine := mocks.NewMockTradingEngine(t, "hop")
	engine.On("GetOrderStatus", mock.Anything, "leg-1").
		Return(domain.OrderStatusCompleted, nil).Once()

	engines, err := application.NewEngineRegistry(engine)
	require.NoError(t, err)
	svc, err := legtracker.NewService(ledger, engines, 10*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, svc.Start())
	// Starting twice is a no-op.
	require.NoError(t, svc.Start())

	require.Eventually(t, func() bool {
		record, err := ledger.Get(ctx, "leg-1")
		return err == nil && record.Order.Status == domain.OrderStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Stop())
}

func TestNewServiceFailure(t *testing.T) {
	engines, err := application.NewEngineRegistry(mocks.NewMockTradingEngine(t, "main"))
	require.NoError(t, err)

	svc, err := legtracker.NewService(nil, engines, time.Second)
	require.Error(t, err)
	require.Nil(t, svc)

	svc, err = legtracker.NewService(inmemory.NewSwapLedger(), nil, time.Second)
	require.Error(t, err)
	require.Nil(t, svc)
}

func newLeg(uuid, engine string, status domain.OrderStatus, isMarket bool) domain.Order {
	return domain.Order{
		Uuid:                uuid,
		Engine:              engine,
		BaseCurrency:        "XMR",
		QuoteCurrency:       "USDT",
		QuoteCurrencyAmount: decimal.NewFromInt(100),
		Amount:              decimal.NewFromInt(200),
		Price:               decimal.RequireFromString("0.5"),
		IsMarket:            isMarket,
		Status:              status,
		TimeStarted:         time.Now(),
	}
}
