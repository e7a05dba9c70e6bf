package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// SwapField names a single field of a ledger row that can be updated in place.
type SwapField string

const (
	FieldStatus                  SwapField = "status"
	FieldHidden                  SwapField = "hidden"
	FieldPrivacyStatus           SwapField = "privacy.status"
	FieldPrivacyBaseResOrderUuid SwapField = "privacy.baseResOrderUuid"
	FieldPrivacyStage            SwapField = "privacy.stage"
	FieldPrivacyLastCompleted    SwapField = "privacy.lastCompletedStage"
	FieldPrivacyFailedStage      SwapField = "privacy.failedStage"
	FieldPrivacyFailureReason    SwapField = "privacy.failureReason"
	FieldPrivacyWithdrawn        SwapField = "privacy.withdrawn"
	FieldPrivacyWithdrawalTxID   SwapField = "privacy.withdrawalTxId"
	FieldPrivacyExpectedAmount   SwapField = "privacy.expectedBaseCurrencyAmount"
)

// SwapRecord is a row of the swap ledger: one per leg submitted to a trading
// engine. The first leg of a private order also carries its privacy context.
type SwapRecord struct {
	Order          Order
	RequestOptions RequestOptions
	Privacy        *PrivacyContext
	Hidden         bool
}

// Uuid ...
func (r SwapRecord) Uuid() string {
	return r.Order.Uuid
}

// IsPrivate returns whether the row is the root of a private order.
func (r SwapRecord) IsPrivate() bool {
	return r.Privacy != nil
}

// IsOpen returns whether either the leg or its private order, if any, is
// still in progress.
func (r SwapRecord) IsOpen() bool {
	if r.Privacy != nil && !r.Privacy.Status.IsTerminal() {
		return true
	}
	return !r.Order.Status.IsTerminal()
}

// SetField applies value to the given field. It returns false without error
// if the row already holds that value, so that updates can be safely retried.
func (r *SwapRecord) SetField(field SwapField, value string) (bool, error) {
	switch field {
	case FieldStatus:
		status, err := ParseOrderStatus(value)
		if err != nil {
			return false, err
		}
		return r.Order.UpdateStatus(status)
	case FieldHidden:
		hidden, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%w: %s=%s", ErrInvalidFieldValue, field, value)
		}
		if r.Hidden == hidden {
			return false, nil
		}
		if hidden && r.IsOpen() {
			return false, ErrSwapNotRemovable
		}
		r.Hidden = hidden
		return true, nil
	}

	if r.Privacy == nil {
		return false, fmt.Errorf("%w: %s", ErrNotPrivateSwap, r.Order.Uuid)
	}

	changed, err := r.setPrivacyField(field, value)
	if err != nil || !changed {
		return changed, err
	}
	r.Privacy.UpdatedAt = time.Now()
	return true, nil
}

func (r *SwapRecord) setPrivacyField(field SwapField, value string) (bool, error) {
	p := r.Privacy

	switch field {
	case FieldPrivacyStatus:
		status, err := ParsePrivateOrderStatus(value)
		if err != nil {
			return false, err
		}
		return p.UpdateStatus(status)
	case FieldPrivacyBaseResOrderUuid:
		if value == "" {
			return false, fmt.Errorf("%w: %s must not be empty", ErrInvalidFieldValue, field)
		}
		if p.BaseResOrderUuid == value {
			return false, nil
		}
		if p.BaseResOrderUuid != "" {
			return false, fmt.Errorf(
				"%w: %s already linked to %s", ErrInvalidFieldValue, field, p.BaseResOrderUuid,
			)
		}
		p.BaseResOrderUuid = value
		return true, nil
	case FieldPrivacyStage, FieldPrivacyLastCompleted, FieldPrivacyFailedStage:
		stage, err := ParseStage(value)
		if err != nil {
			return false, err
		}
		switch field {
		case FieldPrivacyLastCompleted:
			return p.CompleteStage(stage)
		case FieldPrivacyFailedStage:
			if p.FailedStage == stage {
				return false, nil
			}
			p.FailedStage = stage
		default:
			if p.Stage == stage {
				return false, nil
			}
			p.Stage = stage
		}
		return true, nil
	case FieldPrivacyFailureReason:
		if p.FailureReason == value {
			return false, nil
		}
		p.FailureReason = value
		return true, nil
	case FieldPrivacyWithdrawn, FieldPrivacyExpectedAmount:
		amount, err := decimal.NewFromString(value)
		if err != nil {
			return false, fmt.Errorf("%w: %s=%s", ErrInvalidFieldValue, field, value)
		}
		target := &p.Withdrawn
		if field == FieldPrivacyExpectedAmount {
			target = &p.ExpectedBaseCurrencyAmount
		}
		if target.Equal(amount) {
			return false, nil
		}
		*target = amount
		return true, nil
	case FieldPrivacyWithdrawalTxID:
		if p.WithdrawalTxID == value {
			return false, nil
		}
		p.WithdrawalTxID = value
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
}

// PrivateOrder returns the logical order view of a private row.
func (r SwapRecord) PrivateOrder() (*PrivateOrder, error) {
	p := r.Privacy
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotPrivateSwap, r.Order.Uuid)
	}
	return &PrivateOrder{
		Uuid:                       r.Order.Uuid,
		BaseCurrency:               p.BaseCurrency,
		QuoteCurrency:              p.QuoteCurrency,
		IntermediateCurrency:       p.IntermediateCurrency,
		QuoteCurrencyAmount:        p.QuoteCurrencyAmount,
		ExpectedBaseCurrencyAmount: p.ExpectedBaseCurrencyAmount,
		BaseResOrderUuid:           p.BaseResOrderUuid,
		Status:                     p.Status,
		InitialMainBalance:         p.InitialMainBalance,
		InitialIntermediateBalance: p.InitialIntermediateBalance,
		Withdrawn:                  p.Withdrawn,
		WithdrawalTxID:             p.WithdrawalTxID,
		Stage:                      p.Stage,
		LastCompletedStage:         p.LastCompletedStage,
		FailedStage:                p.FailedStage,
		FailureReason:              p.FailureReason,
		CreatedAt:                  p.CreatedAt,
		UpdatedAt:                  p.UpdatedAt,
	}, nil
}
