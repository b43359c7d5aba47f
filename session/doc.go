// Package session drives one exclusive streaming session against a
// resolved backend: dial, optional greeting, subscribe, then a
// sequential receive/decode loop.
//
// The lifecycle is Start → streaming → Stop. Start dials the backend's
// stream endpoint (with backoff on the initial dial), runs the greeting
// gate when the backend requires it, sends the subscribe payload, and
// launches the read loop. The read loop decodes frames strictly one at a
// time; decoded samples flow through a bounded hand-off buffer drained
// by the consumer via Read or ReadBatch.
//
// Reads block on the connection; cancellation (Stop or context) closes
// the connection to unblock the pending read immediately, so an idle
// stream stays healthy indefinitely while stop latency remains bounded.
//
// Per-frame decode failures (unsupported or malformed frames) are
// counted and skipped; the session continues. Transport failures are
// fatal: the loop exits, the connection is closed, and the terminal
// error is available from Err. The connection is closed on every exit
// path, including cancellation and Stop.
package session
