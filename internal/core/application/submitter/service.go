package submitter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-privateswap/internal/core/application"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
)

type Service struct {
	engines ports.EngineRegistry
	ledger  domain.SwapLedger
}

// NewService returns the order submitter. Every accepted order is recorded
// in the ledger before returning.
func NewService(engines ports.EngineRegistry, ledger domain.SwapLedger) (*Service, error) {
	if engines == nil {
		return nil, fmt.Errorf("missing engine registry")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing swap ledger")
	}
	return &Service{engines, ledger}, nil
}

// SubmitMarketOrder submits the leg and records it. If the engine declines
// the order, the reply is not accepted and ErrOrderRejected is returned. If
// the leg can't be recorded, the reply carries the uuid of the untracked
// swap along with ErrPersistence.
func (s *Service) SubmitMarketOrder(
	ctx context.Context, req MarketOrderRequest,
) (*MarketOrderReply, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	engine, err := s.engines.Get(req.Engine)
	if err != nil {
		return nil, err
	}

	res, err := engine.CreateMarketOrder(ctx, ports.MarketOrder{
		BaseCurrency:  req.BaseCurrency,
		QuoteCurrency: req.QuoteCurrency,
		Side:          req.Side,
		Amount:        req.Amount,
		Price:         req.Price,
	})
	if err != nil {
		return nil, err
	}
	if !res.Accepted() {
		log.Debugf(
			"market order %s %s/%s declined by %s",
			req.Side, req.BaseCurrency, req.QuoteCurrency, req.Engine,
		)
		return &MarketOrderReply{Accepted: false}, application.ErrOrderRejected
	}

	req.Options.Side = req.Side
	record := domain.SwapRecord{
		Order: domain.Order{
			Uuid:                res.Uuid,
			Engine:              req.Engine,
			BaseCurrency:        req.BaseCurrency,
			QuoteCurrency:       req.QuoteCurrency,
			QuoteCurrencyAmount: req.QuoteAmount,
			Amount:              req.Amount,
			Price:               req.Price,
			IsMarket:            true,
			Status:              domain.OrderStatusPending,
			TimeStarted:         time.Now(),
		},
		RequestOptions: req.Options,
		Privacy:        req.Privacy,
	}

	reply := &MarketOrderReply{SwapUuid: res.Uuid, Accepted: true}
	if err := s.ledger.Insert(ctx, record); err != nil {
		log.WithError(err).Errorf("failed to record swap %s submitted to %s", res.Uuid, req.Engine)
		return reply, fmt.Errorf("%w: swap %s: %w", application.ErrPersistence, res.Uuid, err)
	}

	log.Debugf("recorded swap %s on %s", res.Uuid, req.Engine)
	return reply, nil
}

// SubmitLimitOrder places a limit order. Engines don't return an identifier
// for limit orders, so a synthetic one is generated and recorded with zero
// amounts.
func (s *Service) SubmitLimitOrder(
	ctx context.Context, req LimitOrderRequest,
) (*LimitOrderReply, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	engine, err := s.engines.Get(req.Engine)
	if err != nil {
		return nil, err
	}

	ok, err := engine.CreateLimitOrder(ctx, req.BaseCurrency, req.QuoteCurrency, req.Price)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &LimitOrderReply{Success: false}, application.ErrOrderRejected
	}

	syntheticUuid := uuid.New().String()
	record := domain.SwapRecord{
		Order: domain.Order{
			Uuid:                syntheticUuid,
			Engine:              req.Engine,
			BaseCurrency:        req.BaseCurrency,
			QuoteCurrency:       req.QuoteCurrency,
			QuoteCurrencyAmount: decimal.Zero,
			Amount:              decimal.Zero,
			Price:               req.Price,
			IsMarket:            false,
			Status:              domain.OrderStatusUnmatched,
			TimeStarted:         time.Now(),
		},
	}

	reply := &LimitOrderReply{Success: true, SyntheticUuid: syntheticUuid}
	if err := s.ledger.Insert(ctx, record); err != nil {
		return reply, fmt.Errorf("%w: swap %s: %w", application.ErrPersistence, syntheticUuid, err)
	}
	return reply, nil
}
