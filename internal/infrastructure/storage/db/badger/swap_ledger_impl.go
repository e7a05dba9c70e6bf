package dbbadger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

const maxConflictRetries = 5

type swapLedger struct {
	store *badgerhold.Store
	done  chan struct{}
	once  sync.Once
}

// NewSwapLedger opens (or creates if not exists) the ledger under the given
// datadir. An empty datadir opens an in-memory ledger.
func NewSwapLedger(datadir string, logger badger.Logger) (domain.SwapLedger, error) {
	done := make(chan struct{})
	store, err := createDb(datadir, logger, done)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}
	return &swapLedger{store: store, done: done}, nil
}

func (l *swapLedger) Insert(_ context.Context, record domain.SwapRecord) error {
	if record.Order.Uuid == "" {
		return domain.ErrMissingSwapUuid
	}

	swap := mapDomainSwapToInfraSwap(record)
	if err := l.store.Insert(swap.Uuid, swap); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("%w: %s", domain.ErrSwapAlreadyExists, swap.Uuid)
		}
		return err
	}
	return nil
}

func (l *swapLedger) Get(_ context.Context, uuid string) (*domain.SwapRecord, error) {
	var swap Swap
	if err := l.store.Get(uuid, &swap); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSwapNotFound, uuid)
		}
		return nil, err
	}
	return mapInfraSwapToDomainSwap(swap)
}

func (l *swapLedger) UpdateField(
	_ context.Context, uuid string, field domain.SwapField, value string,
) error {
	return l.withRetry(func(tx *badger.Txn) error {
		var swap Swap
		if err := l.store.TxGet(tx, uuid, &swap); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrSwapNotFound, uuid)
			}
			return err
		}

		record, err := mapInfraSwapToDomainSwap(swap)
		if err != nil {
			return err
		}

		changed, err := record.SetField(field, value)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		return l.store.TxUpdate(tx, uuid, mapDomainSwapToInfraSwap(*record))
	})
}

func (l *swapLedger) Remove(_ context.Context, uuid string) error {
	return l.withRetry(func(tx *badger.Txn) error {
		var swap Swap
		if err := l.store.TxGet(tx, uuid, &swap); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrSwapNotFound, uuid)
			}
			return err
		}

		record, err := mapInfraSwapToDomainSwap(swap)
		if err != nil {
			return err
		}
		if record.IsOpen() {
			return fmt.Errorf("%w: %s", domain.ErrSwapNotRemovable, uuid)
		}

		var parents []Swap
		query := badgerhold.Where("Privacy.BaseResOrderUuid").Eq(uuid)
		if err := l.store.TxFind(tx, &parents, query); err != nil {
			return err
		}
		for _, p := range parents {
			parent, err := mapInfraSwapToDomainSwap(p)
			if err != nil {
				return err
			}
			if parent.IsOpen() {
				return fmt.Errorf(
					"%w: %s is linked to private order %s",
					domain.ErrSwapNotRemovable, uuid, parent.Order.Uuid,
				)
			}
		}

		return l.store.TxDelete(tx, uuid, Swap{})
	})
}

func (l *swapLedger) Query(
	_ context.Context, filter domain.SwapFilter,
) ([]domain.SwapRecord, error) {
	var query *badgerhold.Query
	if filter.OnlyPrivate {
		query = badgerhold.Where("IsPrivate").Eq(true)
	}

	var swaps []Swap
	if err := l.store.Find(&swaps, query); err != nil {
		return nil, err
	}

	records := make([]domain.SwapRecord, 0, len(swaps))
	for _, s := range swaps {
		record, err := mapInfraSwapToDomainSwap(s)
		if err != nil {
			return nil, err
		}
		if filter.Match(*record) {
			records = append(records, *record)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Order.TimeStarted.Before(records[j].Order.TimeStarted)
	})
	return records, nil
}

func (l *swapLedger) Close() error {
	l.once.Do(func() { close(l.done) })
	return l.store.Close()
}

// withRetry runs fn in a read-write transaction, retrying in case of
// conflicting concurrent writes on the same row.
func (l *swapLedger) withRetry(fn func(tx *badger.Txn) error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = l.store.Badger().Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}
