package submitter

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
)

// MarketOrderRequest is a single leg to submit to an engine. Privacy, if
// set, is persisted with the leg's ledger row.
type MarketOrderRequest struct {
	Engine        string
	BaseCurrency  string
	QuoteCurrency string
	Side          domain.Side
	// Amount of base currency to trade.
	Amount decimal.Decimal
	// QuoteAmount is the amount of quote currency committed to the leg.
	QuoteAmount decimal.Decimal
	// Price is the price ceiling of the order.
	Price   decimal.Decimal
	Options domain.RequestOptions
	Privacy *domain.PrivacyContext
}

func (r MarketOrderRequest) validate() error {
	if r.Engine == "" {
		return fmt.Errorf("missing engine")
	}
	if r.BaseCurrency == "" || r.QuoteCurrency == "" {
		return domain.ErrMissingCurrency
	}
	if r.Side != domain.SideBuy && r.Side != domain.SideSell {
		return fmt.Errorf("invalid side %q", r.Side)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	if !r.Price.IsPositive() {
		return fmt.Errorf("price must be positive")
	}
	return nil
}

// MarketOrderReply ...
type MarketOrderReply struct {
	SwapUuid string
	Accepted bool
}

// LimitOrderRequest is a limit order to place on an engine's book.
type LimitOrderRequest struct {
	Engine        string
	BaseCurrency  string
	QuoteCurrency string
	Price         decimal.Decimal
}

func (r LimitOrderRequest) validate() error {
	if r.Engine == "" {
		return fmt.Errorf("missing engine")
	}
	if r.BaseCurrency == "" || r.QuoteCurrency == "" {
		return domain.ErrMissingCurrency
	}
	if !r.Price.IsPositive() {
		return fmt.Errorf("price must be positive")
	}
	return nil
}

// LimitOrderReply ...
type LimitOrderReply struct {
	Success       bool
	SyntheticUuid string
}
