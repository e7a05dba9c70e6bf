package domain

import "errors"

var (
	// ErrEmptyOrderBook is returned when asking the best price of an empty side
	// of the book.
	ErrEmptyOrderBook = errors.New("order book side is empty")
	// ErrInvalidPricePoint ...
	ErrInvalidPricePoint = errors.New("order book contains an invalid price point")
	// ErrMissingCurrency ...
	ErrMissingCurrency = errors.New("missing base or quote currency")
)

var (
	// ErrSwapNotFound is returned when the ledger has no row for the given uuid.
	ErrSwapNotFound = errors.New("swap not found")
	// ErrSwapAlreadyExists is returned when inserting a row with a uuid already
	// in use.
	ErrSwapAlreadyExists = errors.New("swap already exists")
	// ErrSwapNotRemovable is returned when trying to remove a row that is
	// either not terminal or still referenced by an active private order.
	ErrSwapNotRemovable = errors.New("swap is not terminal or still in use")
	// ErrMissingSwapUuid ...
	ErrMissingSwapUuid = errors.New("missing swap uuid")
	// ErrUnknownField is returned by UpdateField for fields that can't be set.
	ErrUnknownField = errors.New("unknown or read-only swap field")
	// ErrNotPrivateSwap is returned when updating privacy fields of a row
	// without privacy context.
	ErrNotPrivateSwap = errors.New("swap has no privacy context")
	// ErrInvalidFieldValue ...
	ErrInvalidFieldValue = errors.New("invalid value for swap field")
)

var (
	// ErrInvalidStatusTransition is returned when a status change does not
	// follow the allowed lifecycle edges.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrUnknownOrderStatus ...
	ErrUnknownOrderStatus = errors.New("unknown order status")
	// ErrUnknownPrivateOrderStatus ...
	ErrUnknownPrivateOrderStatus = errors.New("unknown private order status")
	// ErrUnknownStage ...
	ErrUnknownStage = errors.New("unknown stage")
)
