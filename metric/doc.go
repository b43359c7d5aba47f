// Package metric provides Prometheus metrics infrastructure for scopelink.
//
// The MetricsRegistry wraps a private prometheus.Registry so tests and
// multiple library consumers never collide on the default global registry.
// Core platform metrics (session status, frame counters, discovery outcomes)
// are registered at construction; components register their own metrics under
// a "component.metric" key via the MetricsRegistrar interface.
//
// The optional Server exposes the registry over HTTP at /metrics in the
// OpenMetrics format, alongside a trivial /health endpoint.
package metric
