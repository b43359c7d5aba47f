// Package main implements the scopelink command-line streaming client.
// It resolves a telemetry backend by name, discovers its devices, opens
// a streaming session, and writes decoded samples as JSON lines to
// stdout until interrupted.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/c360/scopelink/backend"
	"github.com/c360/scopelink/backend/devdata"
	"github.com/c360/scopelink/backend/omniscope"
	"github.com/c360/scopelink/metric"
	"github.com/c360/scopelink/session"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "scopelink"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("scopelink failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	if cfg.ShowHelp {
		printDetailedHelp()
		return nil
	}
	if cfg.ShowVersion {
		fmt.Printf("%s %s (build %s)\n", appName, Version, BuildTime)
		return nil
	}
	if err := validateFlags(cfg); err != nil {
		return err
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	registry, err := buildRegistry()
	if err != nil {
		return err
	}

	if cfg.ListBackends {
		for _, name := range registry.Names() {
			fmt.Println(name)
		}
		return nil
	}

	b, err := registry.Resolve(cfg.Backend)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsRegistry *metric.MetricsRegistry
	sessionOpts := []session.Option{session.WithLogger(logger)}
	if cfg.MetricsPort > 0 {
		metricsRegistry = metric.NewMetricsRegistry()
		sessionOpts = append(sessionOpts, session.WithMetrics(metricsRegistry))

		metricsServer := metric.NewServer(cfg.MetricsPort, "/metrics", metricsRegistry)
		// Start blocks until the server stops; run it alongside the session.
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() { _ = metricsServer.Stop() }()
		logger.Info("metrics server started", "address", metricsServer.Address())
	}

	devices, err := fetchDevices(ctx, b, cfg.Address, metricsRegistry)
	if err != nil {
		return err
	}
	logger.Info("devices discovered", "backend", b.Name(), "count", len(devices))

	if cfg.ListDevices {
		enc := json.NewEncoder(os.Stdout)
		for _, d := range devices {
			if err := enc.Encode(d); err != nil {
				return err
			}
		}
		return nil
	}

	uuids := selectDevices(cfg.Devices, devices)
	if len(uuids) == 0 {
		return fmt.Errorf("no devices to stream from %s", cfg.Address)
	}

	s, err := session.New(b, session.Config{
		Address:        cfg.Address,
		DeviceUUIDs:    uuids,
		Rate:           cfg.Rate,
		Format:         cfg.Format,
		BufferSize:     cfg.BufferSize,
		OverflowPolicy: cfg.OverflowPolicy,
	}, sessionOpts...)
	if err != nil {
		return err
	}

	if err := s.Start(ctx); err != nil {
		return err
	}

	drainErr := drainSamples(ctx, s)

	if err := s.Stop(cfg.ShutdownTimeout); err != nil {
		logger.Warn("session shutdown", "error", err)
	}
	if drainErr != nil {
		return drainErr
	}
	return s.Err()
}

// buildRegistry assembles the backend registry. All known backends are
// registered here, once, at startup.
func buildRegistry() (*backend.Registry, error) {
	registry := backend.NewRegistry()
	if err := devdata.Register(registry); err != nil {
		return nil, err
	}
	if err := omniscope.Register(registry); err != nil {
		return nil, err
	}
	return registry, nil
}

// fetchDevices runs discovery and records the outcome counter when
// metrics are enabled.
func fetchDevices(
	ctx context.Context,
	b backend.Backend,
	address string,
	registry *metric.MetricsRegistry,
) ([]backend.Device, error) {
	devices, err := b.FetchDevices(ctx, address)
	if registry != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		registry.CoreMetrics().DeviceFetches.WithLabelValues(b.Name(), status).Inc()
	}
	return devices, err
}

// selectDevices resolves the -devices flag against the discovery result.
// An empty flag streams every discovered device in directory order.
func selectDevices(flagValue string, discovered []backend.Device) []string {
	if flagValue == "" {
		uuids := make([]string, 0, len(discovered))
		for _, d := range discovered {
			uuids = append(uuids, d.UUID)
		}
		return uuids
	}

	var uuids []string
	for _, raw := range strings.Split(flagValue, ",") {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			uuids = append(uuids, trimmed)
		}
	}
	return uuids
}

// drainSamples writes decoded samples to stdout as JSON lines until the
// context is cancelled or the session fails.
func drainSamples(ctx context.Context, s *session.Session) error {
	enc := json.NewEncoder(os.Stdout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, sample := range s.ReadBatch(256) {
				if err := enc.Encode(sample); err != nil {
					return err
				}
			}
			if s.State() == session.StateFailed {
				return nil // terminal error is surfaced via s.Err()
			}
		}
	}
}
