package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PrivateOrderStatus is the status of the logical order routed through the
// intermediate privacy asset.
type PrivateOrderStatus string

const (
	PrivateOrderStatusSwappingRelRes  PrivateOrderStatus = "swapping_rel_res"
	PrivateOrderStatusPrivatizing     PrivateOrderStatus = "privatizing"
	PrivateOrderStatusSwappingResBase PrivateOrderStatus = "swapping_res_base"
	PrivateOrderStatusCompleted       PrivateOrderStatus = "completed"
	PrivateOrderStatusFailed          PrivateOrderStatus = "failed"
	PrivateOrderStatusCancelled       PrivateOrderStatus = "cancelled"
)

// forward edges of the lifecycle, failed and cancelled are reachable from any
// non terminal status.
var privateOrderEdges = map[PrivateOrderStatus]PrivateOrderStatus{
	PrivateOrderStatusSwappingRelRes:  PrivateOrderStatusPrivatizing,
	PrivateOrderStatusPrivatizing:     PrivateOrderStatusSwappingResBase,
	PrivateOrderStatusSwappingResBase: PrivateOrderStatusCompleted,
}

// ParsePrivateOrderStatus returns the PrivateOrderStatus matching s.
func ParsePrivateOrderStatus(s string) (PrivateOrderStatus, error) {
	status := PrivateOrderStatus(s)
	switch status {
	case PrivateOrderStatusSwappingRelRes,
		PrivateOrderStatusPrivatizing,
		PrivateOrderStatusSwappingResBase,
		PrivateOrderStatusCompleted,
		PrivateOrderStatusFailed,
		PrivateOrderStatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownPrivateOrderStatus, s)
	}
}

// IsTerminal ...
func (s PrivateOrderStatus) IsTerminal() bool {
	return s == PrivateOrderStatusCompleted ||
		s == PrivateOrderStatusFailed ||
		s == PrivateOrderStatusCancelled
}

func (s PrivateOrderStatus) String() string {
	return string(s)
}

// CanTransition returns whether moving from s to next follows the lifecycle.
func (s PrivateOrderStatus) CanTransition(next PrivateOrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == PrivateOrderStatusFailed || next == PrivateOrderStatusCancelled {
		return true
	}
	return privateOrderEdges[s] == next
}

// PrivacyContext is attached to the ledger row of the first leg of a private
// order and holds the state of the whole pipeline.
type PrivacyContext struct {
	Status                     PrivateOrderStatus
	BaseCurrency               string
	QuoteCurrency              string
	IntermediateCurrency       string
	QuoteCurrencyAmount        decimal.Decimal
	ExpectedBaseCurrencyAmount decimal.Decimal
	BaseResOrderUuid           string
	InitialMainBalance         decimal.Decimal
	InitialIntermediateBalance decimal.Decimal
	Withdrawn                  decimal.Decimal
	WithdrawalTxID             string
	Stage                      Stage
	LastCompletedStage         Stage
	FailedStage                Stage
	FailureReason              string
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// UpdateStatus moves the private order to the given status. Re-applying the
// current status is a no-op and returns false.
func (p *PrivacyContext) UpdateStatus(status PrivateOrderStatus) (bool, error) {
	if _, err := ParsePrivateOrderStatus(string(status)); err != nil {
		return false, err
	}
	if p.Status == status {
		return false, nil
	}
	if !p.Status.CanTransition(status) {
		return false, fmt.Errorf(
			"%w: private order from %s to %s",
			ErrInvalidStatusTransition, p.Status, status,
		)
	}
	p.Status = status
	return true, nil
}

// CompleteStage records stage as the last one durably completed. Stages never
// go backward.
func (p *PrivacyContext) CompleteStage(stage Stage) (bool, error) {
	if !stage.IsValid() {
		return false, fmt.Errorf("%w: %d", ErrUnknownStage, stage)
	}
	if stage == p.LastCompletedStage {
		return false, nil
	}
	if stage < p.LastCompletedStage {
		return false, fmt.Errorf(
			"%w: stage %s already completed", ErrInvalidStatusTransition, p.LastCompletedStage,
		)
	}
	p.LastCompletedStage = stage
	return true, nil
}

// PrivateOrder is the user facing view of a private order.
type PrivateOrder struct {
	Uuid                       string
	BaseCurrency               string
	QuoteCurrency              string
	IntermediateCurrency       string
	QuoteCurrencyAmount        decimal.Decimal
	ExpectedBaseCurrencyAmount decimal.Decimal
	BaseResOrderUuid           string
	Status                     PrivateOrderStatus
	InitialMainBalance         decimal.Decimal
	InitialIntermediateBalance decimal.Decimal
	Withdrawn                  decimal.Decimal
	WithdrawalTxID             string
	Stage                      Stage
	LastCompletedStage         Stage
	FailedStage                Stage
	FailureReason              string
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// IsTerminal ...
func (o PrivateOrder) IsTerminal() bool {
	return o.Status.IsTerminal()
}
