package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	dbbadger "github.com/tdex-network/tdex-privateswap/internal/infrastructure/storage/db/badger"
	"github.com/tdex-network/tdex-privateswap/internal/infrastructure/storage/db/inmemory"
)

var ctx = context.Background()

type ledgerFactory struct {
	name string
	new  func(t *testing.T) domain.SwapLedger
}

var ledgerFactories = []ledgerFactory{
	{
		name: "badger",
		new: func(t *testing.T) domain.SwapLedger {
			ledger, err := dbbadger.NewSwapLedger("", nil)
			require.NoError(t, err)
			t.Cleanup(func() { ledger.Close() })
			return ledger
		},
	},
	{
		name: "badger_on_disk",
		new: func(t *testing.T) domain.SwapLedger {
			ledger, err := dbbadger.NewSwapLedger(t.TempDir(), nil)
			require.NoError(t, err)
			t.Cleanup(func() { ledger.Close() })
			return ledger
		},
	},
	{
		name: "inmemory",
		new: func(t *testing.T) domain.SwapLedger {
			return inmemory.NewSwapLedger()
		},
	},
}

func TestSwapLedgerImplementations(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T, ledger domain.SwapLedger)
	}{
		{"testInsertAndGet", testInsertAndGet},
		{"testInsertDuplicate", testInsertDuplicate},
		{"testGetMissing", testGetMissing},
		{"testUpdateStatusIdempotent", testUpdateStatusIdempotent},
		{"testUpdatePrivacyFields", testUpdatePrivacyFields},
		{"testFailingUpdateLeavesRowUntouched", testFailingUpdateLeavesRowUntouched},
		{"testRemove", testRemove},
		{"testQuery", testQuery},
	}

	for i := range ledgerFactories {
		factory := ledgerFactories[i]

		t.Run(factory.name, func(t *testing.T) {
			t.Parallel()

			for j := range tests {
				tt := tests[j]
				t.Run(tt.name, func(t *testing.T) {
					t.Parallel()
					tt.run(t, factory.new(t))
				})
			}
		})
	}
}

func testInsertAndGet(t *testing.T, ledger domain.SwapLedger) {
	leg := makeRandomLeg(domain.OrderStatusPending)
	private := makeRandomPrivateOrder(domain.PrivateOrderStatusSwappingRelRes)

	for _, record := range []domain.SwapRecord{leg, private} {
		require.NoError(t, ledger.Insert(ctx, record))

		got, err := ledger.Get(ctx, record.Uuid())
		require.NoError(t, err)
		requireSameRecord(t, record, *got)
	}
}

func testInsertDuplicate(t *testing.T, ledger domain.SwapLedger) {
	leg := makeRandomLeg(domain.OrderStatusPending)
	require.NoError(t, ledger.Insert(ctx, leg))

	err := ledger.Insert(ctx, leg)
	require.ErrorIs(t, err, domain.ErrSwapAlreadyExists)

	leg.Order.Uuid = ""
	err = ledger.Insert(ctx, leg)
	require.ErrorIs(t, err, domain.ErrMissingSwapUuid)
}

func testGetMissing(t *testing.T, ledger domain.SwapLedger) {
	_, err := ledger.Get(ctx, randomId())
	require.ErrorIs(t, err, domain.ErrSwapNotFound)

	err = ledger.UpdateField(ctx, randomId(), domain.FieldStatus, "completed")
	require.ErrorIs(t, err, domain.ErrSwapNotFound)

	err = ledger.Remove(ctx, randomId())
	require.ErrorIs(t, err, domain.ErrSwapNotFound)
}

func testUpdateStatusIdempotent(t *testing.T, ledger domain.SwapLedger) {
	leg := makeRandomLeg(domain.OrderStatusSwapping)
	require.NoError(t, ledger.Insert(ctx, leg))

	require.NoError(t, ledger.UpdateField(ctx, leg.Uuid(), domain.FieldStatus, "completed"))
	once, err := ledger.Get(ctx, leg.Uuid())
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusCompleted, once.Order.Status)

	require.NoError(t, ledger.UpdateField(ctx, leg.Uuid(), domain.FieldStatus, "completed"))
	twice, err := ledger.Get(ctx, leg.Uuid())
	require.NoError(t, err)
	require.Equal(t, *once, *twice)
}

func testUpdatePrivacyFields(t *testing.T, ledger domain.SwapLedger) {
	private := makeRandomPrivateOrder(domain.PrivateOrderStatusSwappingRelRes)
	require.NoError(t, ledger.Insert(ctx, private))
	uuid := private.Uuid()
	finalLeg := randomId()

	updates := []struct {
		field domain.SwapField
		value string
	}{
		{domain.FieldPrivacyStatus, "privatizing"},
		{domain.FieldPrivacyWithdrawn, "199.66057701"},
		{domain.FieldPrivacyLastCompleted, domain.StageWithdrawToIntermediateProcess.String()},
		{domain.FieldPrivacyStatus, "swapping_res_base"},
		{domain.FieldPrivacyBaseResOrderUuid, finalLeg},
	}
	for _, u := range updates {
		require.NoError(t, ledger.UpdateField(ctx, uuid, u.field, u.value))
		before, err := ledger.Get(ctx, uuid)
		require.NoError(t, err)

		require.NoError(t, ledger.UpdateField(ctx, uuid, u.field, u.value))
		after, err := ledger.Get(ctx, uuid)
		require.NoError(t, err)
		require.Equal(t, *before, *after)
	}

	got, err := ledger.Get(ctx, uuid)
	require.NoError(t, err)
	require.Equal(t, domain.PrivateOrderStatusSwappingResBase, got.Privacy.Status)
	require.Equal(t, finalLeg, got.Privacy.BaseResOrderUuid)
	require.Equal(t, "199.66057701", got.Privacy.Withdrawn.String())
	require.Equal(t, domain.StageWithdrawToIntermediateProcess, got.Privacy.LastCompletedStage)
}

func testFailingUpdateLeavesRowUntouched(t *testing.T, ledger domain.SwapLedger) {
	private := makeRandomPrivateOrder(domain.PrivateOrderStatusSwappingRelRes)
	require.NoError(t, ledger.Insert(ctx, private))
	uuid := private.Uuid()

	err := ledger.UpdateField(ctx, uuid, domain.FieldPrivacyStatus, "completed")
	require.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	err = ledger.UpdateField(ctx, uuid, domain.FieldPrivacyStatus, "unknown")
	require.ErrorIs(t, err, domain.ErrUnknownPrivateOrderStatus)

	leg := makeRandomLeg(domain.OrderStatusCompleted)
	require.NoError(t, ledger.Insert(ctx, leg))
	err = ledger.UpdateField(ctx, leg.Uuid(), domain.FieldPrivacyStatus, "privatizing")
	require.ErrorIs(t, err, domain.ErrNotPrivateSwap)

	got, err := ledger.Get(ctx, uuid)
	require.NoError(t, err)
	requireSameRecord(t, private, *got)
}

func testRemove(t *testing.T, ledger domain.SwapLedger) {
	open := makeRandomLeg(domain.OrderStatusSwapping)
	require.NoError(t, ledger.Insert(ctx, open))
	err := ledger.Remove(ctx, open.Uuid())
	require.ErrorIs(t, err, domain.ErrSwapNotRemovable)

	finalLeg := makeRandomLeg(domain.OrderStatusCompleted)
	require.NoError(t, ledger.Insert(ctx, finalLeg))

	private := makeRandomPrivateOrder(domain.PrivateOrderStatusSwappingResBase)
	private.Order.Status = domain.OrderStatusCompleted
	private.Privacy.BaseResOrderUuid = finalLeg.Uuid()
	require.NoError(t, ledger.Insert(ctx, private))

	err = ledger.Remove(ctx, finalLeg.Uuid())
	require.ErrorIs(t, err, domain.ErrSwapNotRemovable)
	err = ledger.Remove(ctx, private.Uuid())
	require.ErrorIs(t, err, domain.ErrSwapNotRemovable)

	err = ledger.UpdateField(ctx, private.Uuid(), domain.FieldPrivacyStatus, "completed")
	require.NoError(t, err)

	require.NoError(t, ledger.Remove(ctx, finalLeg.Uuid()))
	require.NoError(t, ledger.Remove(ctx, private.Uuid()))

	_, err = ledger.Get(ctx, private.Uuid())
	require.ErrorIs(t, err, domain.ErrSwapNotFound)
}

func testQuery(t *testing.T, ledger domain.SwapLedger) {
	openLeg := makeRandomLeg(domain.OrderStatusMatched)
	closedLeg := makeRandomLeg(domain.OrderStatusFailed)
	hiddenLeg := makeRandomLeg(domain.OrderStatusCompleted)
	private := makeRandomPrivateOrder(domain.PrivateOrderStatusPrivatizing)
	private.Order.Status = domain.OrderStatusCompleted

	for _, r := range []domain.SwapRecord{openLeg, closedLeg, hiddenLeg, private} {
		require.NoError(t, ledger.Insert(ctx, r))
	}
	require.NoError(t, ledger.UpdateField(ctx, hiddenLeg.Uuid(), domain.FieldHidden, "true"))

	all, err := ledger.Query(ctx, domain.SwapFilter{IncludeHidden: true})
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		require.False(t, all[i].Order.TimeStarted.Before(all[i-1].Order.TimeStarted))
	}

	visible, err := ledger.Query(ctx, domain.SwapFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 3)

	open, err := ledger.Query(ctx, domain.SwapFilter{OnlyOpen: true})
	require.NoError(t, err)
	require.Len(t, open, 2)

	privates, err := ledger.Query(ctx, domain.SwapFilter{OnlyPrivate: true, OnlyOpen: true})
	require.NoError(t, err)
	require.Len(t, privates, 1)
	require.Equal(t, private.Uuid(), privates[0].Uuid())
}
