package ports

import (
	"time"

	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
)

// QuoteCache keeps short lived order book snapshots.
type QuoteCache interface {
	Get(key string) (domain.Quote, bool)
	Set(key string, quote domain.Quote, ttl time.Duration)
}
