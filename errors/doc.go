// Package errors provides standardized error handling patterns for scopelink.
//
// # Overview
//
// The package defines the error taxonomy of the backend abstraction layer and
// a classification scheme that tells consumers how to react to a failure:
//
//   - ErrorTransient: temporary failures that may be retried (connection
//     timeouts, device discovery hiccups)
//   - ErrorInvalid: failures caused by bad input (unknown backend names,
//     unsupported or malformed frames)
//   - ErrorFatal: unrecoverable failures that terminate the session
//     (transport errors, invalid configuration)
//
// # Error taxonomy
//
// Five conditions make up the consumer-facing taxonomy:
//
//	ErrUnknownBackend   registry miss; the requested backend is not registered
//	ErrDeviceFetch      discovery transport/HTTP/parse failure, wraps its cause;
//	                    blocks session start, never a silent empty-list fallback
//	ErrUnsupportedFrame frame shape not recognized (binary or other)
//	ErrMalformedFrame   recognized shape with invalid fields
//	ErrTransport        connection-level failure, fatal to the session
//
// ErrUnsupportedFrame and ErrMalformedFrame are scoped to one frame: the
// sample is dropped and the session continues. Use IsFrameError to detect
// them in a receive loop:
//
//	sample, err := b.Decode(frame, order)
//	if errors.IsFrameError(err) {
//	    continue // skip this frame, session stays alive
//	}
//	if err != nil {
//	    return err // transport or fatal error, surface it
//	}
//
// # Wrapping
//
// All errors crossing a package boundary are wrapped with component context
// following the pattern "component.method: action failed: <cause>":
//
//	return errors.WrapInvalid(err, "Registry", "Resolve", "backend lookup")
//
// Wrap preserves the cause chain, so errors.Is and errors.As keep working
// against the standard sentinels above.
package errors
