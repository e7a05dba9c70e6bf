package webhookpubsub

import "github.com/tdex-network/tdex-privateswap/internal/core/domain"

// webhook action types
const (
	PrivateOrderUpdated WebhookAction = iota
	PrivateOrderCompleted
	PrivateOrderFailed
	AllActions
)

var (
	actionToString = map[WebhookAction]string{
		PrivateOrderUpdated:   "PRIVATE_ORDER_UPDATED",
		PrivateOrderCompleted: "PRIVATE_ORDER_COMPLETED",
		PrivateOrderFailed:    "PRIVATE_ORDER_FAILED",
		AllActions:            "*",
	}
	stringToAction = map[string]WebhookAction{
		"PRIVATE_ORDER_UPDATED":   PrivateOrderUpdated,
		"PRIVATE_ORDER_COMPLETED": PrivateOrderCompleted,
		"PRIVATE_ORDER_FAILED":    PrivateOrderFailed,
		"*":                       AllActions,
	}
)

type WebhookAction int

func WebhookActionFromString(actionStr string) (WebhookAction, bool) {
	action, ok := stringToAction[actionStr]
	return action, ok
}

// actionForStatus returns the action a status transition belongs to.
// Cancellations are notified as failures.
func actionForStatus(status domain.PrivateOrderStatus) WebhookAction {
	switch status {
	case domain.PrivateOrderStatusCompleted:
		return PrivateOrderCompleted
	case domain.PrivateOrderStatusFailed, domain.PrivateOrderStatusCancelled:
		return PrivateOrderFailed
	default:
		return PrivateOrderUpdated
	}
}

func (wa WebhookAction) String() string {
	actionStr, ok := actionToString[wa]
	if !ok {
		actionStr = "UNKNOWN"
	}
	return actionStr
}
