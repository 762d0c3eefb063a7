// Package metrics provides Prometheus metrics for the dispatch pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the dispatcher's Prometheus metrics.
type Collector struct {
	// RequestsTotal counts dispatched requests by route pattern and outcome
	// (ok, not_found, app_error, fault).
	RequestsTotal *prometheus.CounterVec

	// RequestDuration measures dispatch time per route pattern.
	RequestDuration *prometheus.HistogramVec

	// RequestsInFlight gauges concurrently dispatching requests.
	RequestsInFlight prometheus.Gauge

	// BindingFailures counts binding resolutions that ended not-found.
	BindingFailures *prometheus.CounterVec

	// Teardowns counts completed request teardowns. It should track
	// RequestsTotal exactly; divergence means a leak.
	Teardowns prometheus.Counter
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a collector on a specific registry. Tests use
// this to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := func(c prometheus.Collector) prometheus.Collector {
		reg.MustRegister(c)
		return c
	}

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "honertia",
			Name:      "requests_total",
			Help:      "Total number of dispatched requests",
		},
		[]string{"method", "pattern", "outcome"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "honertia",
			Name:      "request_duration_seconds",
			Help:      "Dispatch duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "pattern"},
	)
	requestsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "honertia",
			Name:      "requests_in_flight",
			Help:      "Requests currently dispatching",
		},
	)
	bindingFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "honertia",
			Name:      "binding_failures_total",
			Help:      "Binding resolutions that ended not-found",
		},
		[]string{"pattern"},
	)
	teardowns := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "honertia",
			Name:      "teardowns_total",
			Help:      "Completed request teardowns",
		},
	)

	factory(requestsTotal)
	factory(requestDuration)
	factory(requestsInFlight)
	factory(bindingFailures)
	factory(teardowns)

	return &Collector{
		RequestsTotal:    requestsTotal,
		RequestDuration:  requestDuration,
		RequestsInFlight: requestsInFlight,
		BindingFailures:  bindingFailures,
		Teardowns:        teardowns,
	}
}
