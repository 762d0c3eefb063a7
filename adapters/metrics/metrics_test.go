package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/PatrickOgilvie/honertia/adapters/metrics"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}

	m.RequestsTotal.WithLabelValues("GET", "/projects/{project}", "ok").Inc()
	m.Teardowns.Inc()

	if got := testutil.ToFloat64(m.Teardowns); got != 1 {
		t.Errorf("teardowns = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/projects/{project}", "ok")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}
