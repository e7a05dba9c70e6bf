package domain

import "context"

// SwapFilter narrows down the rows returned by SwapLedger.Query.
type SwapFilter struct {
	// OnlyPrivate returns only the root rows of private orders.
	OnlyPrivate bool
	// OnlyOpen drops rows whose leg and private order are both terminal.
	OnlyOpen bool
	// IncludeHidden returns also soft-hidden rows.
	IncludeHidden bool
}

// Match returns whether the record satisfies the filter.
func (f SwapFilter) Match(r SwapRecord) bool {
	if f.OnlyPrivate && !r.IsPrivate() {
		return false
	}
	if f.OnlyOpen && !r.IsOpen() {
		return false
	}
	if !f.IncludeHidden && r.Hidden {
		return false
	}
	return true
}

// SwapLedger is the abstraction for any kind of database intended to persist
// one row per leg submitted to a trading engine. Every method is an atomic
// single-row operation.
type SwapLedger interface {
	// Insert adds a new row, it fails if the uuid is already in use.
	Insert(ctx context.Context, record SwapRecord) error
	// Get returns the row with the given uuid.
	Get(ctx context.Context, uuid string) (*SwapRecord, error)
	// UpdateField sets a single field of the row. Setting a field to the value
	// it already holds is a no-op.
	UpdateField(ctx context.Context, uuid string, field SwapField, value string) error
	// Remove deletes a terminal row not referenced by any open private order.
	Remove(ctx context.Context, uuid string) error
	// Query returns all rows matching the filter, oldest first.
	Query(ctx context.Context, filter SwapFilter) ([]SwapRecord, error)
	// Close releases the resources held by the ledger.
	Close() error
}
