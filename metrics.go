package main

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeOK           = "ok"
	outcomeNotFound     = "not_found"
	outcomeInvalidInput = "invalid_input"
	outcomeForbidden    = "forbidden"
	outcomeStoreFailure = "store_failure"
	outcomePartial      = "partial"
)

// Metrics counts access layer operations by caller and outcome.
type Metrics struct {
	operations *prometheus.CounterVec
}

// NewMetrics creates the access layer collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "reasonbot",
			Subsystem: "access",
			Name:      "operations_total",
			Help:      "Total access layer operations by operation, caller and outcome",
		}, []string{"operation", "caller", "outcome"}),
	}
	reg.MustRegister(m.operations)
	return m
}

func (m *Metrics) observe(op Operation, caller CallerContext, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op.String(), caller.Kind.String(), outcome).Inc()
}
