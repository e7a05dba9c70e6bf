package ports

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
)

// Engine roles used by the private order flow.
const (
	EngineMain   = "main"
	EngineHop    = "hop"
	EngineDirect = "direct"
)

// MarketOrder is the request of a market order to a trading engine.
type MarketOrder struct {
	BaseCurrency  string
	QuoteCurrency string
	Side          domain.Side
	Amount        decimal.Decimal
	Price         decimal.Decimal
}

// MarketOrderReply is what the engine returns for a market order. An empty
// Uuid means the engine declined the order.
type MarketOrderReply struct {
	Uuid string
}

// Accepted returns whether the engine took the order.
func (r MarketOrderReply) Accepted() bool {
	return r.Uuid != ""
}

// TradingEngine defines the methods of a trading engine process the daemon
// talks to.
type TradingEngine interface {
	// Name returns the role the engine has been registered with.
	Name() string
	// GetOrderBook returns the current book for the given pair.
	GetOrderBook(ctx context.Context, base, quote string) (domain.Quote, error)
	// CreateMarketOrder submits a market order.
	CreateMarketOrder(ctx context.Context, order MarketOrder) (MarketOrderReply, error)
	// CreateLimitOrder places a limit order on the book.
	CreateLimitOrder(ctx context.Context, base, quote string, price decimal.Decimal) (bool, error)
	// Withdraw sends amount of asset to the given address, it returns the
	// identifier of the withdrawal transaction.
	Withdraw(ctx context.Context, asset, address string, amount decimal.Decimal) (string, error)
	// GetBalance returns the spendable balance of the given asset.
	GetBalance(ctx context.Context, asset string) (decimal.Decimal, error)
	// GetDepositAddress returns an address of the engine's wallet for asset.
	GetDepositAddress(ctx context.Context, asset string) (string, error)
	// GetOrderStatus returns the lifecycle status of a previously submitted
	// order.
	GetOrderStatus(ctx context.Context, uuid string) (domain.OrderStatus, error)
}

// EngineRegistry resolves engines by role.
type EngineRegistry interface {
	Get(name string) (TradingEngine, error)
	Names() []string
}
