package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
)

const namespace = "privswap"

// Publisher turns private order status events into prometheus metrics.
type Publisher struct {
	registry *prometheus.Registry

	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

// NewPublisher returns a publisher whose metrics, along with the go runtime
// and process ones, are registered to a dedicated registry.
func NewPublisher() *Publisher {
	registry := prometheus.NewRegistry()

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "private_orders",
		Name:      "transitions_total",
		Help:      "Number of private order status transitions by target status.",
	}, []string{"status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "private_orders",
		Name:      "failures_total",
		Help:      "Number of failed private orders by failed stage.",
	}, []string{"stage"})

	registry.MustRegister(
		transitions,
		failures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Publisher{registry, transitions, failures}
}

// Registry ...
func (p *Publisher) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Publisher) PublishStatus(_ context.Context, event domain.StatusEvent) error {
	p.transitions.WithLabelValues(event.Status.String()).Inc()
	if event.Status == domain.PrivateOrderStatusFailed {
		p.failures.WithLabelValues(event.Stage.String()).Inc()
	}
	return nil
}
