package circuitbreaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/require"
)

func TestReadyToTrip(t *testing.T) {
	tests := []struct {
		name   string
		counts gobreaker.Counts
		trip   bool
	}{
		{"no_requests", gobreaker.Counts{}, false},
		{"few_failures", gobreaker.Counts{Requests: 5, TotalFailures: 5}, false},
		{"low_ratio", gobreaker.Counts{Requests: 20, TotalFailures: 5}, false},
		{"trips", gobreaker.Counts{Requests: 20, TotalFailures: 15}, true},
	}

	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.trip, readyToTrip(tt.counts))
		})
	}
}

func TestCircuitBreakerOpens(t *testing.T) {
	cb := NewCircuitBreaker("test")
	failure := errors.New("unreachable")

	for i := 0; i <= MaxNumOfFailingRequests; i++ {
		_, err := cb.Execute(func() (interface{}, error) {
			return nil, failure
		})
		require.ErrorIs(t, err, failure)
	}

	require.Equal(t, gobreaker.StateOpen, cb.State())
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, nil
	})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}
