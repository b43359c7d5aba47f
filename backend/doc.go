// Package backend defines the uniform contract every telemetry backend
// implements, plus the shared machinery those implementations build on:
// device and subscription types, the name-to-factory registry, and the
// ordered frame-shape decoder.
//
// A Backend bundles everything protocol-specific about one telemetry
// server dialect: how to discover devices over REST, where its streaming
// endpoint lives, what the subscribe payload looks like, whether the
// server talks first, and how to turn one inbound frame into a Sample.
// Consumers select a backend by name through a Registry and drive it
// through the interface without knowing which dialect they got.
//
// Frame decoding is an explicit dispatch policy rather than ad-hoc
// sniffing: each backend assembles a Decoder from an ordered list of
// ShapeMatchers (JSON shapes first, delimited text next) and anything no
// matcher claims is rejected with ErrUnsupportedFrame. Matchers are
// stateless, so a rejected frame never affects the next one.
//
// Concrete backends live in subpackages (devdata, omniscope) and
// register themselves against a Registry at startup.
package backend
