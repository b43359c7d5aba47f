// Package devdata implements the DevDataServer backend dialect: device
// discovery over GET /v1/get_devices, streaming over /v1/subscribe_ws,
// positional JSON and CSV frames, no greeting.
package devdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/c360/scopelink/backend"
	"github.com/c360/scopelink/errors"
)

// Name is the registry name for this backend.
const Name = "DevDataServer"

const (
	discoveryPath    = "/v1/get_devices"
	streamPath       = "/v1/subscribe_ws"
	discoveryTimeout = 5 * time.Second
)

var formats = []string{backend.FormatJSON, backend.FormatCSV}

// Backend talks the DevDataServer dialect. One instance serves one
// streaming session.
type Backend struct {
	client  *http.Client
	decoder *backend.Decoder
}

// New creates a DevDataServer backend instance.
func New() *Backend {
	return &Backend{
		client: &http.Client{Timeout: discoveryTimeout},
		decoder: backend.NewDecoder(
			backend.PositionalJSONMatcher{},
			backend.DelimitedTextMatcher{},
		),
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

// discoveryResponse is the GET /v1/get_devices body. The color field is
// either a hex string or an {r,g,b} object; both occur in the wild.
type discoveryResponse struct {
	Datastreams []struct {
		UUID  string          `json:"UUID"`
		Color json.RawMessage `json:"color"`
	} `json:"datastreams"`
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

	devices := make([]backend.Device, 0, len(parsed.Datastreams))
	for _, ds := range parsed.Datastreams {
		if ds.UUID == "" {
			return nil, fetchErr("response parse", fmt.Errorf("datastream without UUID"))
		}
		color, err := normalizeColorField(ds.Color)
		if err != nil {
			return nil, fetchErr("color normalization", err)
		}
		devices = append(devices, backend.Device{UUID: ds.UUID, Color: color})
	}
	return devices, nil
}

// normalizeColorField accepts a hex string or an {r,g,b} object, and
// synthesizes a placeholder when the field is absent.
func normalizeColorField(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return backend.PlaceholderColor(), nil
	}

	var hex string
	if err := json.Unmarshal(raw, &hex); err == nil {
		return backend.NormalizeColor(hex)
	}

	var rgb backend.RGB
	if err := json.Unmarshal(raw, &rgb); err == nil {
		return rgb.Hex(), nil
	}

	return "", fmt.Errorf("unrecognized color field %s", string(raw))
}

// StreamEndpoint implements backend.Backend.
func (b *Backend) StreamEndpoint(address string) string {
	return fmt.Sprintf("ws://%s%s", address, streamPath)
}

// SubscribePayload implements backend.Backend.
func (b *Backend) SubscribePayload(uuids []string, rate int, format string) ([]byte, error) {
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

// RequiresGreeting implements backend.Backend. DevDataServer expects the
// client to talk first.
func (b *Backend) RequiresGreeting() bool { return false }

// ConsumeGreeting implements backend.Backend.
func (b *Backend) ConsumeGreeting(_ []byte) {}

func fetchErr(action string, cause error) error {
	return errors.WrapTransient(
		fmt.Errorf("%w: %w", errors.ErrDeviceFetch, cause),
		Name, "FetchDevices", action)
}
