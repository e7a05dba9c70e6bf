package pubsub

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
)

// Service fans out private order status events to every registered
// publisher. A failing publisher never affects the others nor the caller.
type Service struct {
	publishers []ports.StatusPublisher
}

func NewService(publishers ...ports.StatusPublisher) *Service {
	list := make([]ports.StatusPublisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			list = append(list, p)
		}
	}
	return &Service{list}
}

// PublishStatus delivers the event to all publishers in order. Errors are
// logged and never returned.
func (s *Service) PublishStatus(ctx context.Context, event domain.StatusEvent) error {
	for _, p := range s.publishers {
		if err := p.PublishStatus(ctx, event); err != nil {
			log.WithError(err).Warnf(
				"failed to publish status %s of private order %s",
				event.Status, event.PrivateOrderUuid,
			)
		}
	}
	return nil
}
