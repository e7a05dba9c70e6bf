package privateorder

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/orderbook"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/submitter"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
	"github.com/tdex-network/tdex-privateswap/pkg/mathutil"
)

const (
	defaultLedgerRetries       = 5
	defaultLedgerRetryInterval = 100 * time.Millisecond
	terminalWriteTimeout       = 10 * time.Second
)

// Gateway is the order book gateway used to price the legs.
type Gateway interface {
	FetchRoute(ctx context.Context, req orderbook.RouteRequest) (*orderbook.Route, error)
	FetchOrderBook(ctx context.Context, engine, base, quote string) (domain.Quote, error)
}

// Submitter submits and records the legs.
type Submitter interface {
	SubmitMarketOrder(
		ctx context.Context, req submitter.MarketOrderRequest,
	) (*submitter.MarketOrderReply, error)
}

// Observer waits for legs to settle.
type Observer interface {
	WaitForIncrease(
		ctx context.Context, engine, asset string, baseline decimal.Decimal,
	) (decimal.Decimal, error)
	WaitForLegStatus(
		ctx context.Context, ledger domain.SwapLedger, uuid string,
	) (domain.OrderStatus, error)
}

// Config holds the dependencies and the settings of the orchestrator.
type Config struct {
	Ledger    domain.SwapLedger
	Engines   ports.EngineRegistry
	Gateway   Gateway
	Submitter Submitter
	Observer  Observer
	Publisher ports.StatusPublisher

	MainEngine           string
	HopEngine            string
	IntermediateCurrency string

	SlippageFactor    decimal.Decimal
	DexFeePercent     decimal.Decimal
	DefaultNetworkFee decimal.Decimal
	// NetworkFees overrides DefaultNetworkFee per currency.
	NetworkFees map[string]decimal.Decimal

	LedgerRetries       uint64
	LedgerRetryInterval time.Duration
}

func (c *Config) validate() error {
	if c.Ledger == nil {
		return fmt.Errorf("missing swap ledger")
	}
	if c.Engines == nil {
		return fmt.Errorf("missing engine registry")
	}
	if c.Gateway == nil {
		return fmt.Errorf("missing order book gateway")
	}
	if c.Submitter == nil {
		return fmt.Errorf("missing order submitter")
	}
	if c.Observer == nil {
		return fmt.Errorf("missing balance observer")
	}
	if c.Publisher == nil {
		return fmt.Errorf("missing status publisher")
	}
	if c.MainEngine == c.HopEngine {
		return fmt.Errorf("main and intermediate-hop engines must differ")
	}
	for _, name := range []string{c.MainEngine, c.HopEngine} {
		if _, err := c.Engines.Get(name); err != nil {
			return err
		}
	}
	if c.IntermediateCurrency == "" {
		return fmt.Errorf("missing intermediate currency")
	}
	if c.SlippageFactor.LessThan(decimal.NewFromInt(1)) {
		return mathutil.ErrInvalidSlippage
	}
	fees := mathutil.Fees{DexFeePercent: c.DexFeePercent, NetworkFee: c.DefaultNetworkFee}
	if err := fees.Validate(); err != nil {
		return err
	}
	for _, fee := range c.NetworkFees {
		if fee.IsNegative() {
			return mathutil.ErrInvalidFee
		}
	}
	if c.LedgerRetries == 0 {
		c.LedgerRetries = defaultLedgerRetries
	}
	if c.LedgerRetryInterval <= 0 {
		c.LedgerRetryInterval = defaultLedgerRetryInterval
	}
	return nil
}

// fees returns the fees of a leg whose quote currency is the given one.
func (c *Config) fees(quoteCurrency string) mathutil.Fees {
	networkFee := c.DefaultNetworkFee
	if fee, ok := c.NetworkFees[quoteCurrency]; ok {
		networkFee = fee
	}
	return mathutil.Fees{DexFeePercent: c.DexFeePercent, NetworkFee: networkFee}
}

func (c *Config) requestOptions(quoteCurrency string) domain.RequestOptions {
	fees := c.fees(quoteCurrency)
	return domain.RequestOptions{
		Side:           domain.SideBuy,
		SlippageFactor: c.SlippageFactor,
		DexFeePercent:  fees.DexFeePercent,
		NetworkFee:     fees.NetworkFee,
	}
}

// PrivateOrderRequest asks to buy BaseCurrency spending QuoteAmount of
// QuoteCurrency, routing the value through the intermediate currency.
type PrivateOrderRequest struct {
	BaseCurrency  string
	QuoteCurrency string
	QuoteAmount   decimal.Decimal
}

func (r PrivateOrderRequest) validate(intermediate string) error {
	if r.BaseCurrency == "" || r.QuoteCurrency == "" {
		return domain.ErrMissingCurrency
	}
	if r.BaseCurrency == r.QuoteCurrency {
		return fmt.Errorf("%w: base and quote currencies must differ", ErrInvalidRequest)
	}
	if r.BaseCurrency == intermediate || r.QuoteCurrency == intermediate {
		return fmt.Errorf(
			"%w: %s can't be traded privately against itself", ErrInvalidRequest, intermediate,
		)
	}
	if !r.QuoteAmount.IsPositive() {
		return fmt.Errorf("%w: quote amount must be positive", ErrInvalidRequest)
	}
	return nil
}

// RecoveryReport describes where the funds of a private order are expected
// to be. It's meant for manual recovery of failed orders and never moves
// any fund.
type RecoveryReport struct {
	Order   domain.PrivateOrder
	Running bool
	// FundsLocation is a human readable description of where the funds are
	// expected to be, given the last completed stage.
	FundsLocation string
	// Balances of the intermediate currency on the main and intermediate-hop
	// engines, nil if the engine could not be reached.
	MainBalance *decimal.Decimal
	HopBalance  *decimal.Decimal
	Legs        []domain.Order
}
