package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromUnixSeconds(t *testing.T) {
	tests := []struct {
		name     string
		sec      float64
		expected int64
	}{
		{"whole seconds", 1700000000.0, 1700000000000},
		{"fractional milliseconds", 1700000000.123, 1700000000123},
		{"rounds half up", 1700000000.0005, 1700000000001},
		{"rounds down below half", 1700000000.0004, 1700000000000},
		{"zero", 0, 0},
		{"sub-second", 0.5, 500},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, FromUnixSeconds(test.sec))
		})
	}
}

func TestFromUnixSeconds_Deterministic(t *testing.T) {
	// Same input must yield the same output across repeated calls.
	first := FromUnixSeconds(1700000000.123)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, FromUnixSeconds(1700000000.123))
	}
	assert.Equal(t, int64(1700000000123), first)
}

func TestToUnixMs(t *testing.T) {
	assert.Equal(t, int64(0), ToUnixMs(time.Time{}))

	ref := time.UnixMilli(1700000000123)
	assert.Equal(t, int64(1700000000123), ToUnixMs(ref))
}

func TestFromUnixMs(t *testing.T) {
	assert.True(t, FromUnixMs(0).IsZero())
	assert.Equal(t, int64(1700000000123), FromUnixMs(1700000000123).UnixMilli())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "", Format(0))
	assert.Equal(t, "2023-11-14T22:13:20Z", Format(1700000000000))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected int64
	}{
		{"nil", nil, 0},
		{"zero int64", int64(0), 0},
		{"seconds int64", int64(1700000000), 1700000000000},
		{"milliseconds int64", int64(1700000000123), 1700000000123},
		{"fractional seconds float", 1700000000.123, 1700000000123},
		{"milliseconds float", float64(1700000000123), 1700000000123},
		{"int", 1700000000, 1700000000000},
		{"empty string", "", 0},
		{"rfc3339 string", "2023-11-14T22:13:20Z", 1700000000000},
		{"unix string", "1700000000", 1700000000000},
		{"float string", "1700000000.123", 1700000000123},
		{"garbage string", "not-a-time", 0},
		{"unsupported type", []string{"x"}, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Parse(test.input))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(0))
	assert.NoError(t, Validate(1700000000000))
	assert.Error(t, Validate(-1))
	assert.Error(t, Validate(32503680000001))
}

func TestNow(t *testing.T) {
	before := time.Now().UnixMilli()
	now := Now()
	after := time.Now().UnixMilli()

	assert.GreaterOrEqual(t, now, before)
	assert.LessOrEqual(t, now, after)
}
