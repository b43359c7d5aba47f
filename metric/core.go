package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not backend-specific)
type Metrics struct {
	// Session metrics
	SessionStatus  *prometheus.GaugeVec
	SessionsActive prometheus.Gauge

	// Frame metrics
	FramesReceived   *prometheus.CounterVec
	FramesDropped    *prometheus.CounterVec
	SamplesDelivered *prometheus.CounterVec
	DecodeDuration   *prometheus.HistogramVec

	// Discovery metrics
	DeviceFetches *prometheus.CounterVec

	// Error metrics
	ErrorsTotal *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		SessionStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "scopelink",
				Subsystem: "session",
				Name:      "status",
				Help:      "Session status (0=stopped, 1=awaiting_greeting, 2=ready, 3=streaming, 4=failed)",
			},
			[]string{"backend"},
		),

		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "scopelink",
				Subsystem: "session",
				Name:      "active",
				Help:      "Number of currently active streaming sessions",
			},
		),

		FramesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scopelink",
				Subsystem: "frames",
				Name:      "received_total",
				Help:      "Total number of frames received from the stream",
			},
			[]string{"backend"},
		),

		FramesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scopelink",
				Subsystem: "frames",
				Name:      "dropped_total",
				Help:      "Total number of frames dropped, by reason",
			},
			[]string{"backend", "reason"},
		),

		SamplesDelivered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scopelink",
				Subsystem: "samples",
				Name:      "delivered_total",
				Help:      "Total number of decoded samples handed to the consumer",
			},
			[]string{"backend"},
		),

		DecodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "scopelink",
				Subsystem: "frames",
				Name:      "decode_duration_seconds",
				Help:      "Frame decode duration in seconds",
				Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
			},
			[]string{"backend"},
		),

		DeviceFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scopelink",
				Subsystem: "discovery",
				Name:      "fetches_total",
				Help:      "Total number of device directory fetches, by outcome",
			},
			[]string{"backend", "status"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "scopelink",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by component and type",
			},
			[]string{"component", "type"},
		),
	}
}
