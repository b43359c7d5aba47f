package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	Backend         string
	Address         string
	Devices         string
	Rate            int
	Format          string
	BufferSize      int
	OverflowPolicy  string
	MetricsPort     int
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
	Debug           bool
	ListBackends    bool
	ListDevices     bool
	ShowVersion     bool
	ShowHelp        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.Backend, "backend",
		getEnv("SCOPELINK_BACKEND", "DevDataServer"),
		"Backend name to stream from (env: SCOPELINK_BACKEND)")

	flag.StringVar(&cfg.Address, "address",
		getEnv("SCOPELINK_ADDRESS", "localhost:8080"),
		"Backend host:port (env: SCOPELINK_ADDRESS)")

	flag.StringVar(&cfg.Devices, "devices",
		getEnv("SCOPELINK_DEVICES", ""),
		"Comma-separated device UUIDs; empty streams all discovered devices (env: SCOPELINK_DEVICES)")

	flag.IntVar(&cfg.Rate, "rate",
		getEnvInt("SCOPELINK_RATE", 60),
		"Sample rate in Hz (env: SCOPELINK_RATE)")

	flag.StringVar(&cfg.Format, "format",
		getEnv("SCOPELINK_FORMAT", "json"),
		"Stream format: json, csv (env: SCOPELINK_FORMAT)")

	flag.IntVar(&cfg.BufferSize, "buffer-size",
		getEnvInt("SCOPELINK_BUFFER_SIZE", 1024),
		"Sample hand-off buffer capacity (env: SCOPELINK_BUFFER_SIZE)")

	flag.StringVar(&cfg.OverflowPolicy, "overflow-policy",
		getEnv("SCOPELINK_OVERFLOW_POLICY", "drop_oldest"),
		"Buffer overflow policy: drop_oldest, drop_newest, block (env: SCOPELINK_OVERFLOW_POLICY)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("SCOPELINK_METRICS_PORT", 0),
		"Prometheus metrics port, 0 to disable (env: SCOPELINK_METRICS_PORT)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("SCOPELINK_SHUTDOWN_TIMEOUT", 10*time.Second),
		"Graceful shutdown timeout (env: SCOPELINK_SHUTDOWN_TIMEOUT)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SCOPELINK_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: SCOPELINK_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SCOPELINK_LOG_FORMAT", "text"),
		"Log format: json, text (env: SCOPELINK_LOG_FORMAT)")

	flag.BoolVar(&cfg.Debug, "debug",
		getEnvBool("SCOPELINK_DEBUG", false),
		"Enable debug mode (env: SCOPELINK_DEBUG)")

	flag.BoolVar(&cfg.ListBackends, "list-backends", false, "List registered backends and exit")
	flag.BoolVar(&cfg.ListDevices, "list-devices", false, "Fetch and list devices, then exit")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")

	// Custom usage
	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	// Override log level if debug is set
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp || cfg.ListBackends {
		return nil
	}

	if cfg.Address == "" {
		return fmt.Errorf("address is required")
	}

	if cfg.Rate <= 0 {
		return fmt.Errorf("invalid rate: %d", cfg.Rate)
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	// Validate log format
	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	// Validate metrics port
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Telemetry Backend Streaming Client

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # List registered backends
  %s --list-backends

  # Discover devices on an OmnAIScope server
  %s --backend="OmnAIScope DataServer" --address=localhost:8080 --list-devices

  # Stream two devices as CSV at 100 Hz
  %s --address=localhost:8080 --devices=dev-1,dev-2 --rate=100 --format=csv

  # Run with environment variables
  export SCOPELINK_ADDRESS=scope.local:8080
  export SCOPELINK_LOG_LEVEL=debug
  %s

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
