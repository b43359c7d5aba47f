package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/c360/scopelink/backend"
	"github.com/c360/scopelink/errors"
	"github.com/c360/scopelink/metric"
	"github.com/c360/scopelink/pkg/buffer"
	"github.com/c360/scopelink/pkg/retry"
)

// State is the session handshake/lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateAwaitingGreeting
	StateReady
	StateStreaming
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateAwaitingGreeting:
		return "awaiting_greeting"
	case StateReady:
		return "ready"
	case StateStreaming:
		return "streaming"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session owns one exclusive streaming connection to a backend.
type Session struct {
	id      string
	backend backend.Backend
	config  Config
	sub     backend.Subscription

	logger  *slog.Logger
	metrics *metric.Metrics

	conn    *websocket.Conn
	samples buffer.Buffer[backend.Sample]

	shutdown chan struct{}
	wg       sync.WaitGroup

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	state atomic.Int32

	errMu sync.Mutex
	err   error
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the session logger. Default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithMetrics attaches the platform metrics registry. The sample
// hand-off buffer is instrumented as well.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(s *Session) { s.metrics = registry.CoreMetrics() }
}

// New creates a session for the given backend. The config is validated
// and the subscription ordering is captured here; it cannot change for
// the session's lifetime.
func New(b backend.Backend, cfg Config, opts ...Option) (*Session, error) {
	if b == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Session", "New",
			"backend validation")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sub, err := backend.NewSubscription(cfg.DeviceUUIDs, cfg.Rate, cfg.Format)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:       uuid.NewString(),
		backend:  b,
		config:   cfg,
		sub:      sub,
		logger:   slog.Default(),
		shutdown: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", s.id, "backend", b.Name())

	bufOpts := []buffer.Option[backend.Sample]{
		buffer.WithOverflowPolicy[backend.Sample](cfg.overflowPolicy()),
		buffer.WithDropCallback[backend.Sample](func(backend.Sample) {
			if s.metrics != nil {
				s.metrics.FramesDropped.WithLabelValues(b.Name(), "buffer_overflow").Inc()
			}
		}),
	}
	s.samples, err = buffer.NewCircularBuffer(cfg.BufferSize, bufOpts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// State returns the current handshake/lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// Start dials the stream endpoint, runs the greeting gate if the backend
// requires one, sends the subscribe payload, and launches the read loop.
// Any failure before streaming begins closes the connection and is
// returned directly; Start can be called once.
func (s *Session) Start(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.started {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Session", "Start",
			"lifecycle validation")
	}

	// Build the payload before dialing so unsupported formats fail fast.
	payload, err := s.backend.SubscribePayload(s.sub.UUIDs, s.sub.Rate, s.sub.Format)
	if err != nil {
		return err
	}

	endpoint := s.backend.StreamEndpoint(s.config.Address)
	dialer := &websocket.Dialer{HandshakeTimeout: s.config.DialTimeout}

	conn, err := retry.DoWithResult(ctx, s.config.Retry, func() (*websocket.Conn, error) {
		c, _, dialErr := dialer.DialContext(ctx, endpoint, nil)
		return c, dialErr
	})
	if err != nil {
		s.setState(StateFailed)
		return errors.WrapTransient(
			fmt.Errorf("%w: %w", errors.ErrNoConnection, err),
			"Session", "Start", fmt.Sprintf("dial %s", endpoint))
	}
	s.conn = conn

	if err := s.handshake(payload); err != nil {
		_ = conn.Close()
		s.setState(StateFailed)
		return err
	}

	s.setState(StateStreaming)
	s.started = true

	if s.metrics != nil {
		s.metrics.SessionsActive.Inc()
	}

	s.logger.Info("session started",
		"endpoint", endpoint,
		"devices", len(s.sub.UUIDs),
		"rate", s.sub.Rate,
		"format", s.sub.Format)

	s.wg.Add(1)
	go s.readLoop(ctx)
	return nil
}

// handshake runs the greeting gate and sends the subscribe payload.
// Exactly one frame is consumed before subscribing when the backend
// requires a greeting; zero otherwise.
func (s *Session) handshake(payload []byte) error {
	if s.backend.RequiresGreeting() {
		s.setState(StateAwaitingGreeting)

		_ = s.conn.SetReadDeadline(time.Now().Add(greetingTimeout))
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			return errors.WrapFatal(
				fmt.Errorf("%w: %w", errors.ErrTransport, err),
				"Session", "handshake", "greeting receive")
		}
		s.backend.ConsumeGreeting(frame)
	}
	s.setState(StateReady)

	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return errors.WrapFatal(
			fmt.Errorf("%w: %w", errors.ErrSubscriptionFailed, err),
			"Session", "handshake", "subscribe send")
	}
	return nil
}

// readLoop receives and decodes frames sequentially until shutdown,
// cancellation, or a transport failure. The connection is closed on
// every exit path.
//
// Reads block: gorilla/websocket makes any read error sticky on the
// connection, so deadline-polling between receives would poison an idle
// stream. Cancellation instead closes the connection from a watcher
// goroutine, which unblocks the pending read immediately; the resulting
// read error is suppressed when shutdown or cancellation caused it.
func (s *Session) readLoop(ctx context.Context) {
	defer s.wg.Done()
	defer func() {
		_ = s.conn.Close()
		_ = s.samples.Close()
		if s.metrics != nil {
			s.metrics.SessionsActive.Dec()
		}
	}()

	// The greeting read may have armed a deadline; streaming reads must
	// block indefinitely, an idle stream is healthy until cancelled.
	_ = s.conn.SetReadDeadline(time.Time{})

	loopDone := make(chan struct{})
	defer close(loopDone)
	go func() {
		select {
		case <-s.shutdown:
		case <-ctx.Done():
		case <-loopDone:
			return
		}
		_ = s.conn.Close()
	}()

	name := s.backend.Name()

	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			if s.isShuttingDown() || ctx.Err() != nil {
				return
			}
			s.fail(errors.WrapFatal(
				fmt.Errorf("%w: %w", errors.ErrTransport, err),
				"Session", "readLoop", "frame receive"))
			return
		}

		if s.metrics != nil {
			s.metrics.FramesReceived.WithLabelValues(name).Inc()
		}

		start := time.Now()
		sample, err := s.backend.Decode(frame, s.sub.UUIDs)
		if s.metrics != nil {
			s.metrics.DecodeDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		}
		if err != nil {
			// Per-frame failures are skippable; the session continues.
			reason := "malformed"
			if stderrors.Is(err, errors.ErrUnsupportedFrame) {
				reason = "unsupported"
			}
			if s.metrics != nil {
				s.metrics.FramesDropped.WithLabelValues(name, reason).Inc()
			}
			s.logger.Debug("frame dropped", "reason", reason, "error", err)
			continue
		}

		if err := s.samples.Write(sample); err != nil {
			// Buffer closed under us; shutdown is in progress.
			return
		}
		if s.metrics != nil {
			s.metrics.SamplesDelivered.WithLabelValues(name).Inc()
		}
	}
}

// Read drains one decoded sample from the hand-off buffer.
func (s *Session) Read() (backend.Sample, bool) {
	return s.samples.Read()
}

// ReadBatch drains up to max decoded samples from the hand-off buffer.
func (s *Session) ReadBatch(max int) []backend.Sample {
	return s.samples.ReadBatch(max)
}

// Pending returns the number of decoded samples awaiting the consumer.
func (s *Session) Pending() int {
	return s.samples.Size()
}

// Stop signals the read loop, waits up to timeout for it to exit, and
// closes the connection. Safe to call after a transport failure.
func (s *Session) Stop(timeout time.Duration) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if !s.started {
		return errors.WrapInvalid(errors.ErrNotStarted, "Session", "Stop",
			"lifecycle validation")
	}
	if s.stopped {
		return errors.WrapInvalid(errors.ErrAlreadyStopped, "Session", "Stop",
			"lifecycle validation")
	}
	s.stopped = true

	close(s.shutdown)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		_ = s.conn.Close()
		return errors.WrapTransient(errors.ErrConnectionTimeout, "Session", "Stop",
			"read loop shutdown wait")
	}

	if s.State() != StateFailed {
		s.setState(StateStopped)
	}
	s.logger.Info("session stopped")
	return nil
}

// Err returns the terminal session error, if any. Per-frame decode
// failures never appear here; only transport-level failures do.
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Session) fail(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
	s.setState(StateFailed)
	if s.metrics != nil {
		s.metrics.ErrorsTotal.WithLabelValues("session", errors.Classify(err).String()).Inc()
	}
	s.logger.Error("session failed", "error", err)
}

func (s *Session) isShuttingDown() bool {
	select {
	case <-s.shutdown:
		return true
	default:
		return false
	}
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
	if s.metrics != nil {
		s.metrics.SessionStatus.WithLabelValues(s.backend.Name()).Set(float64(state))
	}
}
