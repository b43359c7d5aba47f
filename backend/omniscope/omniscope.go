// Package omniscope implements the OmnAIScope DataServer backend dialect
// (v0.4.0 wire protocol): device discovery over GET /UUID, streaming over
// /ws, self-describing JSON and CSV frames, one greeting frame before
// subscribe. The binary format is advertised by the server but payload
// construction for it is not implemented here.
package omniscope

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/c360/scopelink/backend"
	"github.com/c360/scopelink/errors"
)

// Name is the registry name for this backend.
const Name = "OmnAIScope DataServer"

const (
	discoveryPath    = "/UUID"
	streamPath       = "/ws"
	discoveryTimeout = 5 * time.Second
)

var formats = []string{backend.FormatJSON, backend.FormatCSV, backend.FormatBinary}

// Backend talks the OmnAIScope DataServer dialect. One instance serves
// one streaming session.
type Backend struct {
	client  *http.Client
	decoder *backend.Decoder
	logger  *slog.Logger
}

// New creates an OmnAIScope backend instance logging through slog.Default.
func New() *Backend {
	return NewWithLogger(slog.Default())
}

// NewWithLogger creates an OmnAIScope backend instance with an explicit
// logger for the greeting frame.
func NewWithLogger(logger *slog.Logger) *Backend {
	return &Backend{
		client: &http.Client{Timeout: discoveryTimeout},
		decoder: backend.NewDecoder(
			backend.SelfDescribingJSONMatcher{},
			backend.DelimitedTextMatcher{},
		),
		logger: logger,
	}
}

// Register adds this backend to the registry.
func Register(r *backend.Registry) error {
	return r.Register(Name, func() backend.Backend { return New() })
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// Formats implements backend.Backend.
func (b *Backend) Formats() []string { return slices.Clone(formats) }

// discoveryResponse is the GET /UUID body. Colors arrive as a parallel
// list aligned with devices by index, not inline.
type discoveryResponse struct {
	Devices []struct {
		UUID    string `json:"UUID"`
		AltUUID string `json:"uuid"`
	} `json:"devices"`
	Colors []struct {
		Color backend.RGB `json:"color"`
	} `json:"colors"`
}

// FetchDevices implements backend.Backend.
func (b *Backend) FetchDevices(ctx context.Context, address string) ([]backend.Device, error) {
	url := fmt.Sprintf("http://%s%s", address, discoveryPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fetchErr("request construction", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fetchErr("discovery request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fetchErr("discovery request",
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body)))
	}

	var parsed discoveryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fetchErr("response parse", err)
	}

	devices := make([]backend.Device, 0, len(parsed.Devices))
	for idx, d := range parsed.Devices {
		uid := d.UUID
		if uid == "" {
			uid = d.AltUUID
		}
		if uid == "" {
			return nil, fetchErr("response parse",
				fmt.Errorf("device at index %d without UUID", idx))
		}

		color := backend.PlaceholderColor()
		if idx < len(parsed.Colors) {
			color = parsed.Colors[idx].Color.Hex()
		}
		devices = append(devices, backend.Device{UUID: uid, Color: color})
	}
	return devices, nil
}

// StreamEndpoint implements backend.Backend.
func (b *Backend) StreamEndpoint(address string) string {
	return fmt.Sprintf("ws://%s%s", address, streamPath)
}

// SubscribePayload implements backend.Backend. The binary format is
// declared by the server but its payload construction is unimplemented.
func (b *Backend) SubscribePayload(uuids []string, rate int, format string) ([]byte, error) {
	if format == backend.FormatBinary {
		return nil, errors.WrapInvalid(errors.ErrUnsupportedFormat, Name, "SubscribePayload",
			"binary payload construction")
	}
	if !slices.Contains(formats, format) {
		return nil, errors.WrapInvalid(errors.ErrUnsupportedFormat, Name, "SubscribePayload",
			fmt.Sprintf("format %q validation", format))
	}
	sub, err := backend.NewSubscription(uuids, rate, format)
	if err != nil {
		return nil, err
	}
	return []byte(sub.Payload()), nil
}

// Decode implements backend.Backend.
func (b *Backend) Decode(frame []byte, order []string) (backend.Sample, error) {
	return b.decoder.Decode(frame, order)
}

// RequiresGreeting implements backend.Backend. OmnAIScope sends one
// informational frame immediately after the stream opens; the client
// must consume it before subscribing.
func (b *Backend) RequiresGreeting() bool { return true }

// ConsumeGreeting implements backend.Backend. The greeting's content is
// informational only; it is logged and discarded.
func (b *Backend) ConsumeGreeting(frame []byte) {
	b.logger.Debug("consumed greeting frame",
		"backend", Name,
		"bytes", len(frame),
		"frame", string(frame))
}

func fetchErr(action string, cause error) error {
	return errors.WrapTransient(
		fmt.Errorf("%w: %w", errors.ErrDeviceFetch, cause),
		Name, "FetchDevices", action)
}
