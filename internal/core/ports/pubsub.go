package ports

import (
	"context"

	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
)

// StatusPublisher delivers private order status events to a subscriber, like
// webhooks, websocket clients or metrics.
type StatusPublisher interface {
	PublishStatus(ctx context.Context, event domain.StatusEvent) error
}
