package webhookpubsub

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

type Webhook struct {
	ID         string        `json:"id"`
	ActionType WebhookAction `json:"action_type"`
	Endpoint   string        `json:"endpoint"`
	Secret     string        `json:"secret,omitempty"`
}

func NewWebhook(actionType WebhookAction, endpoint, secret string) (*Webhook, error) {
	if actionType < PrivateOrderUpdated || actionType > AllActions {
		return nil, fmt.Errorf("%w: %d", ErrUnknownWebhookAction, actionType)
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, ErrInvalidEndpoint
	}
	id := uuid.New().String()
	return &Webhook{id, actionType, endpoint, secret}, nil
}

func (h *Webhook) IsSecured() bool {
	return len(h.Secret) > 0
}

// matches returns whether the hook must be invoked for the given action.
func (h *Webhook) matches(action WebhookAction) bool {
	return h.ActionType == AllActions || h.ActionType == action
}
