package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PricePoint is a single level of an order book side.
type PricePoint struct {
	Price  decimal.Decimal
	Amount decimal.Decimal
}

// Quote is an immutable snapshot of the order book of a trading pair, as
// reported by a trading engine. It's replaced wholesale on every fetch.
type Quote struct {
	BaseCurrency  string
	QuoteCurrency string
	Bids          []PricePoint
	Asks          []PricePoint
}

// Pair returns the trading pair of the quote in BASE/QUOTE form.
func (q Quote) Pair() string {
	return PairName(q.BaseCurrency, q.QuoteCurrency)
}

// BestAsk returns the lowest ask of the book.
func (q Quote) BestAsk() (PricePoint, error) {
	if len(q.Asks) <= 0 {
		return PricePoint{}, ErrEmptyOrderBook
	}
	best := q.Asks[0]
	for _, p := range q.Asks[1:] {
		if p.Price.LessThan(best.Price) {
			best = p
		}
	}
	return best, nil
}

// BestBid returns the highest bid of the book.
func (q Quote) BestBid() (PricePoint, error) {
	if len(q.Bids) <= 0 {
		return PricePoint{}, ErrEmptyOrderBook
	}
	best := q.Bids[0]
	for _, p := range q.Bids[1:] {
		if p.Price.GreaterThan(best.Price) {
			best = p
		}
	}
	return best, nil
}

// Validate makes sure every level of the book carries a positive price and a
// non negative amount.
func (q Quote) Validate() error {
	if q.BaseCurrency == "" || q.QuoteCurrency == "" {
		return ErrMissingCurrency
	}
	for _, side := range [][]PricePoint{q.Bids, q.Asks} {
		for _, p := range side {
			if !p.Price.IsPositive() {
				return fmt.Errorf("%s: %w", q.Pair(), ErrInvalidPricePoint)
			}
			if p.Amount.IsNegative() {
				return fmt.Errorf("%s: %w", q.Pair(), ErrInvalidPricePoint)
			}
		}
	}
	return nil
}

// PairName returns the canonical name of a trading pair.
func PairName(base, quote string) string {
	return fmt.Sprintf("%s/%s", base, quote)
}
