package orderbook_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-privateswap/internal/core/application"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/orderbook"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports/mocks"
)

var (
	ctx    = context.Background()
	engine = orderbook.Engines{Direct: "direct", Main: "main", Hop: "hop"}
	route  = orderbook.RouteRequest{Base: "LTC", Quote: "BTC", Intermediate: "RES"}
)

func TestFetchRoute(t *testing.T) {
	direct := mocks.NewMockTradingEngine(t, "direct")
	main := mocks.NewMockTradingEngine(t, "main")
	hop := mocks.NewMockTradingEngine(t, "hop")

	direct.On("GetOrderBook", mock.Anything, "LTC", "BTC").Return(book("LTC", "BTC", "2.0"), nil)
	main.On("GetOrderBook", mock.Anything, "RES", "BTC").Return(book("RES", "BTC", "0.5"), nil)
	hop.On("GetOrderBook", mock.Anything, "LTC", "RES").Return(book("LTC", "RES", "4.0"), nil)

	svc := newService(t, direct, main, hop)
	r, err := svc.FetchRoute(ctx, route)
	require.NoError(t, err)

	ask, err := r.Intermediate.BestAsk()
	require.NoError(t, err)
	require.Equal(t, "0.5", ask.Price.String())

	ask, err = r.Final.BestAsk()
	require.NoError(t, err)
	require.Equal(t, "4", ask.Price.String())
	require.Equal(t, "LTC/BTC", r.Direct.Pair())
}

func TestFailingFetchRoute(t *testing.T) {
	failure := errors.New("connection refused")

	tests := []struct {
		name  string
		setup func(direct, main, hop *mocks.MockTradingEngine)
	}{
		{
			name: "direct_unreachable",
			setup: func(direct, main, hop *mocks.MockTradingEngine) {
				direct.On("GetOrderBook", mock.Anything, "LTC", "BTC").Return(nil, failure)
				main.On("GetOrderBook", mock.Anything, "RES", "BTC").Return(book("RES", "BTC", "0.5"), nil).Maybe()
				hop.On("GetOrderBook", mock.Anything, "LTC", "RES").Return(book("LTC", "RES", "4.0"), nil).Maybe()
			},
		},
		{
			name: "hop_unreachable",
			setup: func(direct, main, hop *mocks.MockTradingEngine) {
				direct.On("GetOrderBook", mock.Anything, "LTC", "BTC").Return(book("LTC", "BTC", "2.0"), nil).Maybe()
				main.On("GetOrderBook", mock.Anything, "RES", "BTC").Return(book("RES", "BTC", "0.5"), nil).Maybe()
				hop.On("GetOrderBook", mock.Anything, "LTC", "RES").Return(nil, failure)
			},
		},
		{
			name: "malformed_book",
			setup: func(direct, main, hop *mocks.MockTradingEngine) {
				direct.On("GetOrderBook", mock.Anything, "LTC", "BTC").Return(book("LTC", "BTC", "2.0"), nil).Maybe()
				main.On("GetOrderBook", mock.Anything, "RES", "BTC").Return(book("RES", "BTC", "-0.5"), nil)
				hop.On("GetOrderBook", mock.Anything, "LTC", "RES").Return(book("LTC", "RES", "4.0"), nil).Maybe()
			},
		},
		{
			name: "empty_asks",
			setup: func(direct, main, hop *mocks.MockTradingEngine) {
				direct.On("GetOrderBook", mock.Anything, "LTC", "BTC").Return(book("LTC", "BTC", "2.0"), nil)
				main.On("GetOrderBook", mock.Anything, "RES", "BTC").Return(domain.Quote{BaseCurrency: "RES", QuoteCurrency: "BTC"}, nil)
				hop.On("GetOrderBook", mock.Anything, "LTC", "RES").Return(book("LTC", "RES", "4.0"), nil)
			},
		},
		{
			name: "wrong_pair",
			setup: func(direct, main, hop *mocks.MockTradingEngine) {
				direct.On("GetOrderBook", mock.Anything, "LTC", "BTC").Return(book("LTC", "BTC", "2.0"), nil).Maybe()
				main.On("GetOrderBook", mock.Anything, "RES", "BTC").Return(book("RES", "BTC", "0.5"), nil).Maybe()
				hop.On("GetOrderBook", mock.Anything, "LTC", "RES").Return(book("RES", "LTC", "0.25"), nil)
			},
		},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			direct := mocks.NewMockTradingEngine(t, "direct")
			main := mocks.NewMockTradingEngine(t, "main")
			hop := mocks.NewMockTradingEngine(t, "hop")
			tt.setup(direct, main, hop)

			svc := newService(t, direct, main, hop)
			r, err := svc.FetchRoute(ctx, route)
			require.ErrorIs(t, err, application.ErrOrderBookUnavailable)
			require.Nil(t, r)
		})
	}
}

func TestGetOrderBookCache(t *testing.T) {
	direct := mocks.NewMockTradingEngine(t, "direct")
	main := mocks.NewMockTradingEngine(t, "main")
	hop := mocks.NewMockTradingEngine(t, "hop")
	direct.On("GetOrderBook", mock.Anything, "LTC", "BTC").
		Return(book("LTC", "BTC", "2.0"), nil).Once()

	registry, err := application.NewEngineRegistry(direct, main, hop)
	require.NoError(t, err)
	svc, err := orderbook.NewService(registry, engine, newMapCache(), time.Minute)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		b, err := svc.GetOrderBook(ctx, "", "LTC", "BTC")
		require.NoError(t, err)
		require.Equal(t, "LTC/BTC", b.Pair())
	}
}

func TestNewServiceFailing(t *testing.T) {
	main := mocks.NewMockTradingEngine(t, "main")
	registry, err := application.NewEngineRegistry(main)
	require.NoError(t, err)

	_, err = orderbook.NewService(nil, engine, nil, 0)
	require.Error(t, err)

	_, err = orderbook.NewService(registry, engine, nil, 0)
	require.ErrorIs(t, err, application.ErrEngineNotFound)

	sameEngine := orderbook.Engines{Direct: "main", Main: "main", Hop: "main"}
	_, err = orderbook.NewService(registry, sameEngine, newMapCache(), 0)
	require.Error(t, err)
}

func newService(t *testing.T, engines ...ports.TradingEngine) *orderbook.Service {
	registry, err := application.NewEngineRegistry(engines...)
	require.NoError(t, err)
	svc, err := orderbook.NewService(registry, engine, nil, 0)
	require.NoError(t, err)
	return svc
}

func book(base, quote, ask string) domain.Quote {
	price := decimal.RequireFromString(ask)
	return domain.Quote{
		BaseCurrency:  base,
		QuoteCurrency: quote,
		Asks: []domain.PricePoint{
			{Price: price, Amount: decimal.NewFromInt(1000)},
		},
		Bids: []domain.PricePoint{
			{Price: price.Mul(decimal.RequireFromString("0.9")).Abs(), Amount: decimal.NewFromInt(1000)},
		},
	}
}

type mapCache struct {
	lock  sync.Mutex
	books map[string]domain.Quote
}

func newMapCache() *mapCache {
	return &mapCache{books: make(map[string]domain.Quote)}
}

func (c *mapCache) Get(key string) (domain.Quote, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	b, ok := c.books[key]
	return b, ok
}

func (c *mapCache) Set(key string, quote domain.Quote, _ time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.books[key] = quote
}
