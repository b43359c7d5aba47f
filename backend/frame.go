package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/c360/scopelink/errors"
	"github.com/c360/scopelink/pkg/timestamp"
)

// ShapeMatcher recognizes one inbound wire shape and decodes frames of
// that shape. Match must be cheap and side-effect free; Decode owns the
// full parse and reports ErrMalformedFrame for frames that matched the
// shape but carry invalid fields.
type ShapeMatcher interface {
	// Name identifies the shape in logs and metrics labels.
	Name() string

	// Match reports whether the frame belongs to this shape.
	Match(frame []byte) bool

	// Decode converts a matched frame into a Sample using order as the
	// UUID column ordering unless the shape carries its own.
	Decode(frame []byte, order []string) (Sample, error)
}

// Decoder dispatches frames across an ordered list of shape matchers.
// The first matcher whose Match returns true decodes the frame; a frame
// no matcher claims is rejected with ErrUnsupportedFrame. Matchers hold
// no mutable state, so a rejected or malformed frame never affects
// decoding of subsequent frames.
type Decoder struct {
	matchers []ShapeMatcher
}

// NewDecoder builds a decoder trying matchers in the given order.
func NewDecoder(matchers ...ShapeMatcher) *Decoder {
	return &Decoder{matchers: matchers}
}

// Decode runs the dispatch policy over one frame.
func (d *Decoder) Decode(frame []byte, order []string) (Sample, error) {
	for _, m := range d.matchers {
		if m.Match(frame) {
			return m.Decode(frame, order)
		}
	}
	return Sample{}, errors.WrapInvalid(errors.ErrUnsupportedFrame, "Decoder", "Decode",
		"frame shape dispatch")
}

// startsJSON reports whether the first significant byte opens a JSON
// object or array.
func startsJSON(frame []byte) bool {
	trimmed := bytes.TrimLeft(frame, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// zipValues pairs UUIDs with values, stopping at the shorter sequence.
// Trailing UUIDs simply receive no value.
func zipValues(order []string, values []float64) map[string]float64 {
	n := min(len(order), len(values))
	out := make(map[string]float64, n)
	for i := 0; i < n; i++ {
		out[order[i]] = values[i]
	}
	return out
}

func malformed(matcher string, err error) error {
	return errors.WrapInvalid(errors.ErrMalformedFrame, matcher, "Decode",
		fmt.Sprintf("frame parse (%v)", err))
}

func malformedField(matcher, detail string) error {
	return errors.WrapInvalid(errors.ErrMalformedFrame, matcher, "Decode", detail)
}

// PositionalJSONMatcher decodes the positional JSON shape: an object with
// a single fractional-seconds "timestamp" and a one-sample "data" array
// of per-device values, zipped to the subscription ordering.
//
//	{"timestamp": 1700000000.123, "data": [[1.5, 2.5]]}
type PositionalJSONMatcher struct{}

// Name implements ShapeMatcher.
func (PositionalJSONMatcher) Name() string { return "positional-json" }

// Match implements ShapeMatcher.
func (PositionalJSONMatcher) Match(frame []byte) bool { return startsJSON(frame) }

// Decode implements ShapeMatcher.
func (m PositionalJSONMatcher) Decode(frame []byte, order []string) (Sample, error) {
	var msg struct {
		Timestamp *float64    `json:"timestamp"`
		Data      [][]float64 `json:"data"`
	}
	if err := json.Unmarshal(frame, &msg); err != nil {
		return Sample{}, malformed("PositionalJSON", err)
	}
	if msg.Timestamp == nil {
		return Sample{}, malformedField("PositionalJSON", "missing timestamp field")
	}
	if len(msg.Data) == 0 {
		return Sample{}, malformedField("PositionalJSON", "missing data field")
	}

	return Sample{
		Timestamp: timestamp.FromUnixSeconds(*msg.Timestamp),
		Values:    zipValues(order, msg.Data[0]),
	}, nil
}

// SelfDescribingJSONMatcher decodes the self-describing JSON shape: the
// payload carries its own device ordering, which is authoritative over
// the subscription ordering.
//
//	{"data": [{"timestamp": 1700000000.0, "value": [3.0, 4.0]}], "devices": ["x", "y"]}
type SelfDescribingJSONMatcher struct{}

// Name implements ShapeMatcher.
func (SelfDescribingJSONMatcher) Name() string { return "self-describing-json" }

// Match implements ShapeMatcher.
func (SelfDescribingJSONMatcher) Match(frame []byte) bool { return startsJSON(frame) }

// Decode implements ShapeMatcher.
func (m SelfDescribingJSONMatcher) Decode(frame []byte, _ []string) (Sample, error) {
	var msg struct {
		Data []struct {
			Timestamp *float64  `json:"timestamp"`
			Value     []float64 `json:"value"`
		} `json:"data"`
		Devices []string `json:"devices"`
	}
	if err := json.Unmarshal(frame, &msg); err != nil {
		return Sample{}, malformed("SelfDescribingJSON", err)
	}
	if len(msg.Data) == 0 {
		return Sample{}, malformedField("SelfDescribingJSON", "missing data field")
	}
	if msg.Devices == nil {
		return Sample{}, malformedField("SelfDescribingJSON", "missing devices field")
	}
	sample := msg.Data[0]
	if sample.Timestamp == nil {
		return Sample{}, malformedField("SelfDescribingJSON", "missing timestamp field")
	}

	// Payload-native ordering wins over the subscription ordering.
	return Sample{
		Timestamp: timestamp.FromUnixSeconds(*sample.Timestamp),
		Values:    zipValues(msg.Devices, sample.Value),
	}, nil
}

// DelimitedTextMatcher decodes comma-delimited text frames: the first
// field is a fractional-seconds timestamp, remaining fields are
// per-device values in subscription order.
//
//	1700000000.0,1.5,2.5
type DelimitedTextMatcher struct{}

// Name implements ShapeMatcher.
func (DelimitedTextMatcher) Name() string { return "delimited-text" }

// Match implements ShapeMatcher.
func (DelimitedTextMatcher) Match(frame []byte) bool {
	return !startsJSON(frame) && bytes.ContainsRune(frame, ',')
}

// Decode implements ShapeMatcher.
func (m DelimitedTextMatcher) Decode(frame []byte, order []string) (Sample, error) {
	fields := strings.Split(strings.TrimSpace(string(frame)), ",")

	seconds, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return Sample{}, malformed("DelimitedText", err)
	}

	values := make([]float64, 0, len(fields)-1)
	for _, field := range fields[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return Sample{}, malformed("DelimitedText", err)
		}
		values = append(values, v)
	}

	return Sample{
		Timestamp: timestamp.FromUnixSeconds(seconds),
		Values:    zipValues(order, values),
	}, nil
}
