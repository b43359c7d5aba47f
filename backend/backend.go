package backend

import "context"

// Well-known stream format names shared across backends.
const (
	FormatJSON   = "json"
	FormatCSV    = "csv"
	FormatBinary = "binary"
)

// Backend is the uniform contract for one telemetry server dialect.
// One instance serves one streaming session: the UUID ordering passed to
// SubscribePayload is the same ordering the caller must thread to Decode
// for positional frames.
type Backend interface {
	// Name returns the backend's registry name.
	Name() string

	// Formats returns the stream formats this backend can subscribe with.
	Formats() []string

	// FetchDevices issues one bounded-timeout discovery request against
	// host:port and returns the normalized device list. Any transport,
	// HTTP, or parse failure returns an error wrapping ErrDeviceFetch;
	// a partial list is never returned.
	FetchDevices(ctx context.Context, address string) ([]Device, error)

	// StreamEndpoint returns the WebSocket URL for host:port.
	StreamEndpoint(address string) string

	// SubscribePayload builds the payload sent after the stream opens.
	// Formats outside Formats(), and formats whose payload construction
	// is not implemented, return an error wrapping ErrUnsupportedFormat.
	SubscribePayload(uuids []string, rate int, format string) ([]byte, error)

	// Decode converts one inbound frame into a Sample. The order slice is
	// the subscription's UUID ordering; self-describing frames override it
	// with their own. Returns ErrUnsupportedFrame for shapes the backend
	// does not recognize and ErrMalformedFrame for recognized shapes with
	// invalid fields. Both are scoped to the one frame.
	Decode(frame []byte, order []string) (Sample, error)

	// RequiresGreeting reports whether the server sends one informational
	// frame after the stream opens. When true, exactly one frame must be
	// received and passed to ConsumeGreeting before SubscribePayload's
	// result is sent.
	RequiresGreeting() bool

	// ConsumeGreeting handles the greeting frame. Default behavior for
	// backends that require one is to inspect or log it and discard it.
	ConsumeGreeting(frame []byte)
}

// Factory creates a fresh backend instance. Each Resolve call gets its
// own instance so sessions never share decoder or greeting state.
type Factory func() Backend
