package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle status of a single leg as reported by the
// trading engine the leg was submitted to.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusUnmatched OrderStatus = "unmatched"
	OrderStatusMatched   OrderStatus = "matched"
	OrderStatusSwapping  OrderStatus = "swapping"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusUnmatched: 1,
	OrderStatusMatched:   2,
	OrderStatusSwapping:  3,
	OrderStatusCompleted: 4,
	OrderStatusFailed:    4,
}

// ParseOrderStatus returns the OrderStatus matching the given string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := orderStatusRank[status]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownOrderStatus, s)
	}
	return status, nil
}

// IsTerminal returns whether the leg reached its final status.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

func (s OrderStatus) String() string {
	return string(s)
}

// Side is the direction of an order relative to its base currency.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Order is a single leg submitted to one trading engine.
type Order struct {
	Uuid                string
	Engine              string
	BaseCurrency        string
	QuoteCurrency       string
	QuoteCurrencyAmount decimal.Decimal
	Amount              decimal.Decimal
	Price               decimal.Decimal
	IsMarket            bool
	Status              OrderStatus
	TimeStarted         time.Time
}

// UpdateStatus moves the leg forward in its lifecycle. Engines are polled,
// therefore intermediate statuses may be skipped, but the status never moves
// backward and terminal statuses are final. Re-applying the current status is
// a no-op and returns false.
func (o *Order) UpdateStatus(status OrderStatus) (bool, error) {
	next, ok := orderStatusRank[status]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownOrderStatus, status)
	}
	if o.Status == status {
		return false, nil
	}
	if o.Status.IsTerminal() {
		return false, fmt.Errorf(
			"%w: leg %s is already %s", ErrInvalidStatusTransition, o.Uuid, o.Status,
		)
	}
	if status != OrderStatusFailed && next < orderStatusRank[o.Status] {
		return false, fmt.Errorf(
			"%w: leg %s from %s to %s",
			ErrInvalidStatusTransition, o.Uuid, o.Status, status,
		)
	}
	o.Status = status
	return true, nil
}

// RequestOptions are the parameters the leg has been built with, kept for
// audit purposes.
type RequestOptions struct {
	Side           Side
	SlippageFactor decimal.Decimal
	DexFeePercent  decimal.Decimal
	NetworkFee     decimal.Decimal
}
