package domain

import "time"

// StatusEvent notifies a status transition of a private order.
type StatusEvent struct {
	PrivateOrderUuid   string
	PreviousStatus     PrivateOrderStatus
	Status             PrivateOrderStatus
	Stage              Stage
	LastCompletedStage Stage
	BaseResOrderUuid   string
	Reason             string
	Timestamp          time.Time
}

// Payload returns the serializable form of the event used by publishers.
func (e StatusEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"private_order_uuid":   e.PrivateOrderUuid,
		"previous_status":      e.PreviousStatus.String(),
		"status":               e.Status.String(),
		"stage":                e.Stage.String(),
		"last_completed_stage": e.LastCompletedStage.String(),
		"base_res_order_uuid":  e.BaseResOrderUuid,
		"reason":               e.Reason,
		"timestamp":            e.Timestamp.Unix(),
	}
}
