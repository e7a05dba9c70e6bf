package ristrettocache

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
)

const (
	numCounters = 1e4
	maxCost     = 1 << 20
	bufferItems = 64
)

type quoteCache struct {
	cache *ristretto.Cache
}

// NewQuoteCache returns an in-memory cache of order book snapshots. Every
// snapshot costs as many units as its levels.
func NewQuoteCache() (ports.QuoteCache, func(), error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: bufferItems,
	})
	if err != nil {
		return nil, nil, err
	}
	return &quoteCache{cache}, cache.Close, nil
}

func (c *quoteCache) Get(key string) (domain.Quote, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return domain.Quote{}, false
	}
	quote, ok := v.(domain.Quote)
	return quote, ok
}

// Set stores the snapshot and waits for it to be visible to readers.
func (c *quoteCache) Set(key string, quote domain.Quote, ttl time.Duration) {
	cost := int64(len(quote.Bids) + len(quote.Asks) + 1)
	if c.cache.SetWithTTL(key, quote, cost, ttl) {
		c.cache.Wait()
	}
}
