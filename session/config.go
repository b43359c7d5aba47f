package session

import (
	"fmt"
	"time"

	"github.com/c360/scopelink/errors"
	"github.com/c360/scopelink/pkg/buffer"
	"github.com/c360/scopelink/pkg/retry"
)

const (
	defaultBufferSize  = 1024
	defaultDialTimeout = 10 * time.Second

	// How long to wait for the greeting frame on backends that send one.
	greetingTimeout = 5 * time.Second
)

// Config describes one streaming session.
type Config struct {
	// Address is the backend's host:port.
	Address string

	// DeviceUUIDs is the ordered device list to subscribe to. The order
	// is the column order for positional frame decoding.
	DeviceUUIDs []string

	// Rate is the sample rate in Hz.
	Rate int

	// Format is the stream format name (one of the backend's formats).
	Format string

	// BufferSize bounds the sample hand-off buffer. Default 1024.
	BufferSize int

	// OverflowPolicy names the hand-off overflow policy: "drop_oldest"
	// (default), "drop_newest", or "block".
	OverflowPolicy string

	// DialTimeout bounds the WebSocket handshake. Default 10s.
	DialTimeout time.Duration

	// Retry configures backoff for the initial dial. Zero value means
	// retry.DefaultConfig.
	Retry retry.Config
}

// Validate checks the config and fills in defaults for zero values.
func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Session", "Validate",
			"address validation")
	}
	if len(c.DeviceUUIDs) == 0 {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Session", "Validate",
			"device list validation")
	}
	if c.Rate <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Session", "Validate",
			fmt.Sprintf("rate %d validation", c.Rate))
	}
	if c.Format == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Session", "Validate",
			"format validation")
	}
	if c.BufferSize < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Session", "Validate",
			fmt.Sprintf("buffer size %d validation", c.BufferSize))
	}

	if c.BufferSize == 0 {
		c.BufferSize = defaultBufferSize
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = defaultDialTimeout
	}
	if c.Retry == (retry.Config{}) {
		c.Retry = retry.DefaultConfig()
	}
	return nil
}

// overflowPolicy resolves the configured policy name.
func (c *Config) overflowPolicy() buffer.OverflowPolicy {
	return buffer.ParsePolicy(c.OverflowPolicy)
}
