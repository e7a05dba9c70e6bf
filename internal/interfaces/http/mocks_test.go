package httpinterface_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/privateorder"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/submitter"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
)

// **** OrderBookService ****

type mockOrderBookService struct {
	mock.Mock
}

func (m *mockOrderBookService) GetOrderBook(
	ctx context.Context, engine, base, quote string,
) (domain.Quote, error) {
	args := m.Called(ctx, engine, base, quote)

	var res domain.Quote
	if a := args.Get(0); a != nil {
		res = a.(domain.Quote)
	}
	return res, args.Error(1)
}

// **** OrderService ****

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) SubmitMarketOrder(
	ctx context.Context, req submitter.MarketOrderRequest,
) (*submitter.MarketOrderReply, error) {
	args := m.Called(ctx, req)

	var res *submitter.MarketOrderReply
	if a := args.Get(0); a != nil {
		res = a.(*submitter.MarketOrderReply)
	}
	return res, args.Error(1)
}

func (m *mockOrderService) SubmitLimitOrder(
	ctx context.Context, req submitter.LimitOrderRequest,
) (*submitter.LimitOrderReply, error) {
	args := m.Called(ctx, req)

	var res *submitter.LimitOrderReply
	if a := args.Get(0); a != nil {
		res = a.(*submitter.LimitOrderReply)
	}
	return res, args.Error(1)
}

// **** PrivateOrderService ****

type mockPrivateOrderService struct {
	mock.Mock
}

func (m *mockPrivateOrderService) Submit(
	ctx context.Context, req privateorder.PrivateOrderRequest,
) (*domain.PrivateOrder, error) {
	args := m.Called(ctx, req)

	var res *domain.PrivateOrder
	if a := args.Get(0); a != nil {
		res = a.(*domain.PrivateOrder)
	}
	return res, args.Error(1)
}

func (m *mockPrivateOrderService) Get(
	ctx context.Context, uuid string,
) (*domain.PrivateOrder, error) {
	args := m.Called(ctx, uuid)

	var res *domain.PrivateOrder
	if a := args.Get(0); a != nil {
		res = a.(*domain.PrivateOrder)
	}
	return res, args.Error(1)
}

func (m *mockPrivateOrderService) List(
	ctx context.Context, onlyOpen bool,
) ([]domain.PrivateOrder, error) {
	args := m.Called(ctx, onlyOpen)

	var res []domain.PrivateOrder
	if a := args.Get(0); a != nil {
		res = a.([]domain.PrivateOrder)
	}
	return res, args.Error(1)
}

func (m *mockPrivateOrderService) Cancel(ctx context.Context, uuid string) error {
	args := m.Called(ctx, uuid)
	return args.Error(0)
}

func (m *mockPrivateOrderService) Report(
	ctx context.Context, uuid string,
) (*privateorder.RecoveryReport, error) {
	args := m.Called(ctx, uuid)

	var res *privateorder.RecoveryReport
	if a := args.Get(0); a != nil {
		res = a.(*privateorder.RecoveryReport)
	}
	return res, args.Error(1)
}
