package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	InvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gqlambda_invocations_total",
			Help: "Total number of handler invocations by handler and response status.",
		},
		[]string{"handler", "status"},
	)

	InvocationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gqlambda_invocation_duration_seconds",
			Help:    "Duration of handler invocations in seconds.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"handler"},
	)

	ContextFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gqlambda_context_failures_total",
			Help: "Total number of context provider failures by handler.",
		},
		[]string{"handler"},
	)

	TracedRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gqlambda_traced_requests_total",
			Help: "Total number of GraphQL requests executed with tracing enabled, by tracing mode.",
		},
		[]string{"mode"},
	)
)

// Collectors returns every gqlambda metric.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		InvocationsTotal,
		InvocationDurationSeconds,
		ContextFailuresTotal,
		TracedRequestsTotal,
	}
}

// Register registers all gqlambda metrics with reg, or with the default
// Prometheus registry when reg is nil.
func Register(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(Collectors()...)
}
