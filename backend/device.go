package backend

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/c360/scopelink/errors"
)

// Device is one discovered telemetry channel. Color is always normalized
// to "#rrggbb" lowercase regardless of how the source supplied it.
type Device struct {
	UUID  string `json:"uuid"`
	Color string `json:"color"`
}

// RGB is an integer color triple as some discovery responses carry it.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex renders the triple as "#rrggbb" lowercase.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// NormalizeColor canonicalizes a hex color string to "#rrggbb" lowercase.
// Accepts any case, with or without the leading "#".
func NormalizeColor(color string) (string, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if len(trimmed) != 6 {
		return "", errors.WrapInvalid(errors.ErrDeviceFetch, "Device", "NormalizeColor",
			fmt.Sprintf("color %q validation", color))
	}
	for _, r := range trimmed {
		if !isHexDigit(r) {
			return "", errors.WrapInvalid(errors.ErrDeviceFetch, "Device", "NormalizeColor",
				fmt.Sprintf("color %q validation", color))
		}
	}
	return "#" + strings.ToLower(trimmed), nil
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// PlaceholderColor synthesizes a random color for devices whose discovery
// response carried none. Not reproducible across runs.
func PlaceholderColor() string {
	return fmt.Sprintf("#%06x", rand.Intn(0x1000000))
}
