package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// **** TradingEngine ****

// MockTradingEngine is a testify mock of ports.TradingEngine.
type MockTradingEngine struct {
	mock.Mock
	name string
}

// NewMockTradingEngine returns a mock engine registered with the given name
// whose expectations are asserted at the end of the test.
func NewMockTradingEngine(t testingT, name string) *MockTradingEngine {
	m := &MockTradingEngine{name: name}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTradingEngine) Name() string {
	return m.name
}

func (m *MockTradingEngine) GetOrderBook(
	ctx context.Context, base, quote string,
) (domain.Quote, error) {
	args := m.Called(ctx, base, quote)

	var res domain.Quote
	if a := args.Get(0); a != nil {
		res = a.(domain.Quote)
	}
	return res, args.Error(1)
}

func (m *MockTradingEngine) CreateMarketOrder(
	ctx context.Context, order ports.MarketOrder,
) (ports.MarketOrderReply, error) {
	args := m.Called(ctx, order)

	var res ports.MarketOrderReply
	if a := args.Get(0); a != nil {
		res = a.(ports.MarketOrderReply)
	}
	return res, args.Error(1)
}

func (m *MockTradingEngine) CreateLimitOrder(
	ctx context.Context, base, quote string, price decimal.Decimal,
) (bool, error) {
	args := m.Called(ctx, base, quote, price)
	return args.Bool(0), args.Error(1)
}

func (m *MockTradingEngine) Withdraw(
	ctx context.Context, asset, address string, amount decimal.Decimal,
) (string, error) {
	args := m.Called(ctx, asset, address, amount)
	return args.String(0), args.Error(1)
}

func (m *MockTradingEngine) GetBalance(
	ctx context.Context, asset string,
) (decimal.Decimal, error) {
	args := m.Called(ctx, asset)

	res := decimal.Zero
	if a := args.Get(0); a != nil {
		res = a.(decimal.Decimal)
	}
	return res, args.Error(1)
}

func (m *MockTradingEngine) GetDepositAddress(
	ctx context.Context, asset string,
) (string, error) {
	args := m.Called(ctx, asset)
	return args.String(0), args.Error(1)
}

func (m *MockTradingEngine) GetOrderStatus(
	ctx context.Context, uuid string,
) (domain.OrderStatus, error) {
	args := m.Called(ctx, uuid)

	var res domain.OrderStatus
	if a := args.Get(0); a != nil {
		res = a.(domain.OrderStatus)
	}
	return res, args.Error(1)
}

// **** StatusPublisher ****

// MockStatusPublisher is a testify mock of ports.StatusPublisher.
type MockStatusPublisher struct {
	mock.Mock
}

// NewMockStatusPublisher ...
func NewMockStatusPublisher(t testingT) *MockStatusPublisher {
	m := &MockStatusPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockStatusPublisher) PublishStatus(
	ctx context.Context, event domain.StatusEvent,
) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
