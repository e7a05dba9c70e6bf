package metrics_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	"github.com/tdex-network/tdex-privateswap/internal/infrastructure/metrics"
)

func TestPublisher(t *testing.T) {
	publisher := metrics.NewPublisher()
	ctx := context.Background()

	events := []domain.StatusEvent{
		{Status: domain.PrivateOrderStatusSwappingRelRes, Stage: domain.StageSubmitRelToIntermediate},
		{Status: domain.PrivateOrderStatusPrivatizing, Stage: domain.StageWithdrawToIntermediateProcess},
		{Status: domain.PrivateOrderStatusFailed, Stage: domain.StagePollIntermediateBalance},
		{Status: domain.PrivateOrderStatusSwappingRelRes, Stage: domain.StageSubmitRelToIntermediate},
		{Status: domain.PrivateOrderStatusFailed, Stage: domain.StageWithdrawToIntermediateProcess},
	}
	for _, e := range events {
		require.NoError(t, publisher.PublishStatus(ctx, e))
	}

	count, err := testutil.GatherAndCount(
		publisher.Registry(), "privswap_private_orders_transitions_total",
	)
	require.NoError(t, err)
	require.Equal(t, 3, count)

	count, err = testutil.GatherAndCount(
		publisher.Registry(), "privswap_private_orders_failures_total",
	)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	families, err := publisher.Registry().Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, f := range families {
		if f.GetName() != "privswap_private_orders_transitions_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			values[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	require.Equal(t, map[string]float64{
		"swapping_rel_res": 2,
		"privatizing":      1,
		"failed":           2,
	}, values)
}
