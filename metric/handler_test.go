package metric

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_StartServesUntilStop(t *testing.T) {
	const port = 19283

	registry := NewMetricsRegistry()
	server := NewServer(port, "/metrics", registry)

	// Start blocks while serving, so callers run it in a goroutine.
	done := make(chan error, 1)
	go func() { done <- server.Start() }()
	t.Cleanup(func() { _ = server.Stop() })

	url := fmt.Sprintf("http://localhost:%d/metrics", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	// Still serving: Start must not have returned yet.
	select {
	case err := <-done:
		t.Fatalf("Start returned while server should be running: %v", err)
	default:
	}

	require.NoError(t, server.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err) // graceful close is not an error
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestServer_StartNilRegistry(t *testing.T) {
	server := NewServer(19284, "/metrics", nil)
	require.Error(t, server.Start())
}
