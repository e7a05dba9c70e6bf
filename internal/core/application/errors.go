package application

import "errors"

var (
	// ErrOrderBookUnavailable is returned when one or more order book fetches
	// failed. Callers may retry the whole fetch.
	ErrOrderBookUnavailable = errors.New("order book unavailable")
	// ErrOrderRejected is returned when an engine declined an order, commonly
	// because of insufficient spendable funds. It's terminal for the leg.
	ErrOrderRejected = errors.New("order rejected by the trading engine, check your funds")
	// ErrWithdrawalFailed is terminal for the whole private order, the
	// withdrawal is never retried.
	ErrWithdrawalFailed = errors.New("withdrawal to intermediate process failed")
	// ErrStageOutcomeUnknown is returned when the daemon stopped while a
	// withdrawal or an order submission was in flight, and can't tell whether
	// it went through. Such stages are never replayed.
	ErrStageOutcomeUnknown = errors.New("stage outcome unknown, manual recovery required")
	// ErrStageTimedOut is returned when a polling stage exceeded its bound.
	ErrStageTimedOut = errors.New("stage timed out")
	// ErrPersistence is returned when the ledger could not durably record the
	// progress of a pipeline.
	ErrPersistence = errors.New("ledger write failed")
	// ErrEngineNotFound ...
	ErrEngineNotFound = errors.New("trading engine not found")
)
