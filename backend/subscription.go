package backend

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/c360/scopelink/errors"
)

// Subscription captures the ordering, rate, and format agreed for one
// streaming session. Immutable once created; the UUID ordering is the
// authoritative column order for positional frame decoding.
type Subscription struct {
	UUIDs  []string
	Rate   int
	Format string
}

// NewSubscription validates and builds a Subscription. The uuids slice is
// copied so later mutation by the caller cannot change the column order.
func NewSubscription(uuids []string, rate int, format string) (Subscription, error) {
	if len(uuids) == 0 {
		return Subscription{}, errors.WrapInvalid(errors.ErrInvalidConfig,
			"Subscription", "NewSubscription", "device list validation")
	}
	if rate <= 0 {
		return Subscription{}, errors.WrapInvalid(errors.ErrInvalidConfig,
			"Subscription", "NewSubscription", fmt.Sprintf("rate %d validation", rate))
	}
	if format == "" {
		return Subscription{}, errors.WrapInvalid(errors.ErrInvalidConfig,
			"Subscription", "NewSubscription", "format validation")
	}
	return Subscription{
		UUIDs:  slices.Clone(uuids),
		Rate:   rate,
		Format: format,
	}, nil
}

// Payload renders the text subscribe line: UUIDs space-joined, then the
// rate, then the format name.
func (s Subscription) Payload() string {
	parts := make([]string, 0, len(s.UUIDs)+2)
	parts = append(parts, s.UUIDs...)
	parts = append(parts, strconv.Itoa(s.Rate), s.Format)
	return strings.Join(parts, " ")
}

// Sample is one decoded observation: a millisecond timestamp and the
// per-device values carried by one frame. Ephemeral; owned by whichever
// consumer drains it.
type Sample struct {
	Timestamp int64              `json:"timestamp_ms"`
	Values    map[string]float64 `json:"values"`
}
