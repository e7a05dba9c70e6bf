package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
)

type swapLedger struct {
	swaps  map[string]domain.SwapRecord
	locker *sync.RWMutex
}

// NewSwapLedger returns a new inmemory SwapLedger implementation.
func NewSwapLedger() domain.SwapLedger {
	return &swapLedger{
		swaps:  make(map[string]domain.SwapRecord),
		locker: &sync.RWMutex{},
	}
}

func (l *swapLedger) Insert(_ context.Context, record domain.SwapRecord) error {
	l.locker.Lock()
	defer l.locker.Unlock()

	uuid := record.Order.Uuid
	if uuid == "" {
		return domain.ErrMissingSwapUuid
	}
	if _, ok := l.swaps[uuid]; ok {
		return fmt.Errorf("%w: %s", domain.ErrSwapAlreadyExists, uuid)
	}

	l.swaps[uuid] = copyRecord(record)
	return nil
}

func (l *swapLedger) Get(_ context.Context, uuid string) (*domain.SwapRecord, error) {
	l.locker.RLock()
	defer l.locker.RUnlock()

	record, ok := l.swaps[uuid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSwapNotFound, uuid)
	}
	r := copyRecord(record)
	return &r, nil
}

func (l *swapLedger) UpdateField(
	_ context.Context, uuid string, field domain.SwapField, value string,
) error {
	l.locker.Lock()
	defer l.locker.Unlock()

	record, ok := l.swaps[uuid]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSwapNotFound, uuid)
	}

	// Work on a copy so that a failing update leaves the row untouched.
	updated := copyRecord(record)
	changed, err := updated.SetField(field, value)
	if err != nil {
		return err
	}
	if changed {
		l.swaps[uuid] = updated
	}
	return nil
}

func (l *swapLedger) Remove(_ context.Context, uuid string) error {
	l.locker.Lock()
	defer l.locker.Unlock()

	record, ok := l.swaps[uuid]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSwapNotFound, uuid)
	}
	if record.IsOpen() {
		return fmt.Errorf("%w: %s", domain.ErrSwapNotRemovable, uuid)
	}
	for _, r := range l.swaps {
		if r.Privacy != nil && r.Privacy.BaseResOrderUuid == uuid && r.IsOpen() {
			return fmt.Errorf(
				"%w: %s is linked to private order %s",
				domain.ErrSwapNotRemovable, uuid, r.Order.Uuid,
			)
		}
	}

	delete(l.swaps, uuid)
	return nil
}

func (l *swapLedger) Query(
	_ context.Context, filter domain.SwapFilter,
) ([]domain.SwapRecord, error) {
	l.locker.RLock()
	defer l.locker.RUnlock()

	records := make([]domain.SwapRecord, 0, len(l.swaps))
	for _, r := range l.swaps {
		if filter.Match(r) {
			records = append(records, copyRecord(r))
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		ti, tj := records[i].Order.TimeStarted, records[j].Order.TimeStarted
		if ti.Equal(tj) {
			return records[i].Order.Uuid < records[j].Order.Uuid
		}
		return ti.Before(tj)
	})
	return records, nil
}

func (l *swapLedger) Close() error {
	return nil
}

func copyRecord(r domain.SwapRecord) domain.SwapRecord {
	if r.Privacy != nil {
		p := *r.Privacy
		r.Privacy = &p
	}
	return r
}
