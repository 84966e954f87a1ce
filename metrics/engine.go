package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ruteri/share-engine/interfaces"
)

// EngineMetrics counts share engine operations by outcome.
type EngineMetrics struct {
	operations *prometheus.CounterVec
	errors     *prometheus.CounterVec
}

// NewEngineMetrics creates the engine counters and registers them with reg.
func NewEngineMetrics(namespace string, reg prometheus.Registerer) (*EngineMetrics, error) {
	m := &EngineMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "operations_total",
			Help:      "Number of share engine operations by operation name.",
		}, []string{"op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "errors_total",
			Help:      "Number of failed share engine operations by operation name and error kind.",
		}, []string{"op", "kind"}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.errors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe implements engine.Observer.
func (m *EngineMetrics) Observe(op string, err error) {
	m.operations.WithLabelValues(op).Inc()
	if err != nil {
		m.errors.WithLabelValues(op, errorKind(err)).Inc()
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, interfaces.ErrInvalidThreshold):
		return "invalid_threshold"
	case errors.Is(err, interfaces.ErrInsufficientShares):
		return "insufficient_shares"
	case errors.Is(err, interfaces.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, interfaces.ErrShareNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
