// Package scopelink normalizes access to heterogeneous telemetry backends
// behind one uniform contract, so a visualization or recording consumer can
// switch backend protocols at runtime without code changes.
//
// # Architecture
//
// Each telemetry server dialect is modeled as a Backend: one value that knows
// how to resolve the server's device directory over REST, construct the
// WebSocket handshake (endpoint locator plus subscribe payload), and decode
// inbound frames into timestamped per-device samples. Backends are selected
// by name through an explicit registry built once at startup:
//
//	┌─────────────────────────────────────┐
//	│         backend.Registry            │  name → factory, built at init
//	└─────────────────────────────────────┘
//	           ↓ resolves
//	┌─────────────────────────────────────┐
//	│        backend.Backend              │  FetchDevices, StreamEndpoint,
//	│   (devdata, omniscope, …)           │  SubscribePayload, Decode, greeting
//	└─────────────────────────────────────┘
//	           ↓ driven by
//	┌─────────────────────────────────────┐
//	│         session.Session             │  dial, greeting gate, subscribe,
//	│  (one exclusive stream per session) │  receive/decode loop, hand-off
//	└─────────────────────────────────────┘
//
// Frame decoding is an explicit ordered list of shape matchers (JSON shapes
// first, then delimited text, then reject), so the fallback policy is an
// independently testable value rather than implicit character sniffing.
//
// # Wire formats
//
// Supported inbound frame shapes are JSON objects (positional or
// self-describing) and comma-delimited text. Binary frames are rejected with
// a per-frame error; binary subscribe payloads are not constructed. All
// timestamps are normalized to integer Unix milliseconds at the decoder
// boundary regardless of the fractional-second representation on the wire.
//
// # Error handling
//
// The errors package classifies failures for the consumer: per-frame errors
// (unsupported or malformed frames) are skippable and never terminate a
// session; transport failures are fatal and always surfaced; discovery
// failures block session start entirely.
package scopelink
