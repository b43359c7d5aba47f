package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/scopelink/errors"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NotNil(t, registry)
	require.NotNil(t, registry.PrometheusRegistry())
	require.NotNil(t, registry.CoreMetrics())

	// Core metrics must be gatherable without error
	_, err := registry.PrometheusRegistry().Gather()
	assert.NoError(t, err)
}

func TestRegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter_total",
		Help: "test counter",
	})

	require.NoError(t, registry.RegisterCounter("session", "test_counter", counter))

	// Duplicate key is rejected as invalid
	other := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "other_counter_total",
		Help: "other counter",
	})
	err := registry.RegisterCounter("session", "test_counter", other)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegisterGaugeAndVecs(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge", Help: "test gauge",
	})
	require.NoError(t, registry.RegisterGauge("session", "test_gauge", gauge))

	counterVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_vec_total", Help: "test vec",
	}, []string{"reason"})
	require.NoError(t, registry.RegisterCounterVec("session", "test_vec", counterVec))

	gaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "test_gauge_vec", Help: "test gauge vec",
	}, []string{"backend"})
	require.NoError(t, registry.RegisterGaugeVec("session", "test_gauge_vec", gaugeVec))

	histVec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "test_hist_seconds", Help: "test hist",
	}, []string{"shape"})
	require.NoError(t, registry.RegisterHistogramVec("session", "test_hist", histVec))
}

func TestRegisterPrometheusConflict(t *testing.T) {
	registry := NewMetricsRegistry()

	// Two collectors with the same fully-qualified name under different
	// registry keys conflict at the Prometheus level.
	first := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conflicting_total", Help: "first",
	})
	second := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conflicting_total", Help: "first",
	})

	require.NoError(t, registry.RegisterCounter("a", "conflicting", first))
	err := registry.RegisterCounter("b", "conflicting", second)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestUnregister(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "removable_total", Help: "removable",
	})
	require.NoError(t, registry.RegisterCounter("session", "removable", counter))

	assert.True(t, registry.Unregister("session", "removable"))
	assert.False(t, registry.Unregister("session", "removable"))
	assert.False(t, registry.Unregister("session", "never_registered"))

	// Re-registration after unregister succeeds
	require.NoError(t, registry.RegisterCounter("session", "removable", counter))
}

func TestServerAddress(t *testing.T) {
	registry := NewMetricsRegistry()

	srv := NewServer(0, "", registry)
	assert.Equal(t, "http://localhost:9090/metrics", srv.Address())

	srv = NewServer(9123, "/m", registry)
	assert.Equal(t, "http://localhost:9123/m", srv.Address())
}
