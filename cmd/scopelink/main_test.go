package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/scopelink/backend"
	"github.com/c360/scopelink/backend/devdata"
	"github.com/c360/scopelink/metric"
)

func deviceFetchCount(t *testing.T, registry *metric.MetricsRegistry, status string) float64 {
	t.Helper()
	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	for _, fam := range families {
		if fam.GetName() != "scopelink_discovery_fetches_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "status" && label.GetValue() == status {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestFetchDevices_RecordsOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"datastreams":[{"UUID":"dev-1","color":"#ff0000"}]}`))
	}))
	t.Cleanup(server.Close)
	address := strings.TrimPrefix(server.URL, "http://")

	registry := metric.NewMetricsRegistry()

	devices, err := fetchDevices(context.Background(), devdata.New(), address, registry)
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, 1.0, deviceFetchCount(t, registry, "success"))

	_, err = fetchDevices(context.Background(), devdata.New(), "127.0.0.1:1", registry)
	require.Error(t, err)
	assert.Equal(t, 1.0, deviceFetchCount(t, registry, "error"))
}

func TestFetchDevices_NilRegistry(t *testing.T) {
	_, err := fetchDevices(context.Background(), devdata.New(), "127.0.0.1:1", nil)
	require.Error(t, err)
}

func TestSelectDevices(t *testing.T) {
	discovered := []backend.Device{
		{UUID: "dev-1", Color: "#ff0000"},
		{UUID: "dev-2", Color: "#00ff00"},
	}

	assert.Equal(t, []string{"dev-1", "dev-2"}, selectDevices("", discovered))
	assert.Equal(t, []string{"dev-2"}, selectDevices("dev-2", discovered))
	assert.Equal(t, []string{"x", "y"}, selectDevices(" x , y ,", discovered))
	assert.Nil(t, selectDevices(",", nil))
}
