// Package engine implements the connection resilience state machine:
// connect/retry/hibernate transitions, attempt-identity staleness
// checks, the bounded event buffer, and backoff scheduling.
//
// All mutable engine state is serialized onto a single worker
// goroutine fed by an ops queue. Every public operation and every
// transport callback is scheduled onto that queue and executed in
// submission order; the engine never runs two of its own operations
// concurrently. Stats and IsConnected answer from a mutex-guarded
// snapshot instead, so they are safe to call from within a delivery
// callback without deadlocking the queue.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/streamforge/sse-client-go/pkg/backoff"
	"github.com/streamforge/sse-client-go/pkg/buffer"
	sseerrors "github.com/streamforge/sse-client-go/pkg/errors"
	"github.com/streamforge/sse-client-go/pkg/events"
	"github.com/streamforge/sse-client-go/pkg/logging"
	"github.com/streamforge/sse-client-go/pkg/transport"
)

// opQueueSize bounds the ops channel. Transport callbacks and host
// calls are both small and infrequent relative to this.
const opQueueSize = 64

// MetricsRecorder receives engine-level measurements. Implementations
// must be safe for concurrent use; all hooks are invoked from the
// engine worker.
type MetricsRecorder interface {
	RecordState(state string)
	RecordReconnect()
	RecordBytes(n int)
	RecordBufferedEvent(kind string)
	RecordDroppedEvent()
	RecordBatch(size int)
}

// Engine is the connection state machine. Create one per logical
// connection with New; it is independently constructible and
// destructible, with no process-wide state.
type Engine struct {
	logger     logging.Logger
	source     transport.EventSource
	policy     *backoff.Policy
	classifier *sseerrors.Classifier
	metrics    MetricsRecorder
	tracer     trace.Tracer
	onEvents   events.DeliveryFunc

	ops       chan func()
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the worker goroutine.
	cfg           Config
	state         State
	buf           *buffer.Buffer
	attempt       uuid.UUID
	handle        transport.Handle
	retryTimer    *time.Timer
	retryAttempt  int
	retryDelay    time.Duration
	lastEventID   string
	hibernateFrom State
	wasOpen       bool
	span          trace.Span

	// Shared snapshot, readable from any goroutine.
	snapMu    sync.RWMutex
	snapState State
	stats     Stats
}

// New creates an engine delivering batches to onEvents and starts its
// worker. The caller must eventually Close the engine to release the
// worker goroutine.
func New(cfg Config, onEvents events.DeliveryFunc, opts ...Option) (*Engine, error) {
	if cfg.URL == "" {
		return nil, sseerrors.NotConfigured("engine.New")
	}
	if onEvents == nil {
		return nil, sseerrors.NotConfigured("engine.New")
	}
	if cfg.MaxBufferSize < 1 {
		cfg.MaxBufferSize = buffer.DefaultMaxSize
	}

	e := &Engine{
		logger:     logging.NewNop(),
		policy:     backoff.NewPolicy(),
		classifier: sseerrors.NewClassifier(),
		onEvents:   onEvents,
		ops:        make(chan func(), opQueueSize),
		done:       make(chan struct{}),
		cfg:        cfg,
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithFields(logging.String("component", "engine"))
	if e.source == nil {
		e.source = transport.NewHTTPEventSource(nil, e.logger)
	}
	e.buf = buffer.New(cfg.MaxBufferSize, cfg.BatchInterval, e.deliver, e.enqueue)

	go e.run()
	return e, nil
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEventSource replaces the default HTTP event source, e.g. with a
// platform-specific transport or a test fake.
func WithEventSource(src transport.EventSource) Option {
	return func(e *Engine) { e.source = src }
}

// WithBackoffPolicy replaces the default backoff policy.
func WithBackoffPolicy(p *backoff.Policy) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
		}
	}
}

// WithClassifier replaces the default error classifier.
func WithClassifier(c *sseerrors.Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer attaches a tracer; the engine opens a span per connection
// attempt.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// run is the worker loop. It owns every mutable field above and exits
// only on Close.
func (e *Engine) run() {
	defer e.teardown()
	for {
		select {
		case op := <-e.ops:
			op()
		case <-e.done:
			return
		}
	}
}

// enqueue schedules an operation onto the worker. After Close it drops
// the operation instead of blocking.
func (e *Engine) enqueue(op func()) {
	select {
	case e.ops <- op:
	case <-e.done:
	}
}

func (e *Engine) teardown() {
	e.cancelRetryTimer()
	e.closeHandle()
	e.endSpan(nil)
	e.buf.Clear()
	e.setState(StateStopped)
}

// deliver hands a flushed batch to the host callback. It runs on the
// worker (flushes are scheduled through the ops queue), so batches
// arrive serially and in buffer order.
func (e *Engine) deliver(batch events.Batch) {
	if e.metrics != nil {
		e.metrics.RecordBatch(len(batch))
	}
	e.onEvents(batch)
}

// Public operations. Each is scheduled onto the worker; Stats,
// IsConnected, and State read the shared snapshot instead.

// Start opens a connection. It is a no-op unless the engine is Idle or
// Stopped.
func (e *Engine) Start() {
	e.enqueue(func() {
		if e.state != StateIdle && e.state != StateStopped {
			e.logger.Debug("start ignored", logging.String("state", e.state.String()))
			return
		}
		e.retryAttempt = 0
		e.openAttempt()
	})
}

// Stop cancels any pending retry, closes the transport, clears the
// buffer, and transitions to Stopped. Idempotent.
func (e *Engine) Stop() {
	e.enqueue(func() { e.stopLocked() })
}

// Restart tears the current attempt down and opens a fresh one. The
// old attempt's identity is invalidated before the new attempt is
// created, so an in-flight callback from the superseded connection —
// a deferred close, say — is silently dropped instead of being
// misread as belonging to the new one.
func (e *Engine) Restart() {
	e.enqueue(func() {
		e.stopLocked()
		e.retryAttempt = 0
		e.openAttempt()
	})
}

// Flush drains the buffer to the host immediately.
func (e *Engine) Flush() {
	e.enqueue(e.buf.Flush)
}

// SetLastProcessedID stores the id used to populate the resume header
// on the next connection attempt. The current attempt is unaffected.
func (e *Engine) SetLastProcessedID(id string) {
	e.enqueue(func() { e.lastEventID = id })
}

// UpdateHeaders replaces the header map in the config snapshot,
// effective from the next connection attempt.
func (e *Engine) UpdateHeaders(headers map[string]string) {
	e.enqueue(func() { e.cfg = e.cfg.withHeaders(headers) })
}

// Hibernate flushes eagerly, closes the transport to conserve battery,
// and remembers whether to resume. A no-op when the config asks to
// continue in background.
func (e *Engine) Hibernate() {
	e.enqueue(func() { e.hibernateLocked() })
}

// Resume reopens the connection if hibernation interrupted a live
// session; the resume header picks up from the last processed id.
func (e *Engine) Resume() {
	e.enqueue(func() { e.resumeLocked() })
}

// Barrier schedules fn onto the worker behind every previously
// submitted operation. Lifecycle adapters use it to learn when a
// hibernation teardown has actually completed.
func (e *Engine) Barrier(fn func()) {
	e.enqueue(fn)
}

// Close stops the engine and releases its worker goroutine. The engine
// cannot be restarted afterwards.
func (e *Engine) Close() {
	e.closeOnce.Do(func() { close(e.done) })
}

// IsConnected reports whether the stream is currently open. Safe from
// any goroutine, including delivery callbacks.
func (e *Engine) IsConnected() bool {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snapState == StateOpen
}

// State returns the current connection state snapshot.
func (e *Engine) State() State {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snapState
}

// Stats returns a consistent snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.stats
}

// Worker-side operations.

func (e *Engine) openAttempt() {
	e.attempt = uuid.New()
	e.setState(StateConnecting)
	e.startSpan()

	req := e.cfg.request(e.lastEventID)
	e.logger.Info("opening connection",
		logging.String("url", req.URL),
		logging.String("attempt", e.attempt.String()),
		logging.Bool("resuming", req.LastEventID != ""))

	handle, err := e.source.Open(req, &attemptHandler{engine: e, id: e.attempt})
	if err != nil {
		// Synchronous rejection means the request itself is invalid;
		// retrying the same config cannot help.
		e.logger.WithError(err).Error("transport rejected the request")
		e.recordError(sseerrors.CodeNotConfigured)
		e.buf.Push(events.Error(err.Error()))
		e.buf.Flush()
		e.stopLocked()
		return
	}
	e.handle = handle
}

func (e *Engine) stopLocked() {
	e.cancelRetryTimer()
	e.attempt = uuid.Nil
	e.closeHandle()
	e.endSpan(nil)
	e.buf.Clear()
	e.setState(StateStopped)
}

func (e *Engine) hibernateLocked() {
	if e.cfg.ContinueInBackground {
		e.logger.Debug("hibernate skipped: background continuation enabled")
		return
	}
	if e.state == StateHibernating {
		return
	}

	wasOpen := e.state == StateConnecting || e.state == StateOpen || e.state == StateReconnecting
	e.buf.Flush()
	e.cancelRetryTimer()
	e.attempt = uuid.Nil
	e.closeHandle()
	e.endSpan(nil)

	e.hibernateFrom = e.state
	e.wasOpen = wasOpen
	e.setState(StateHibernating)
	e.logger.Info("hibernating", logging.Bool("was_open", wasOpen))
}

func (e *Engine) resumeLocked() {
	if e.state != StateHibernating {
		return
	}
	if e.wasOpen {
		e.logger.Info("resuming after hibernation")
		e.retryAttempt = 0
		e.openAttempt()
		return
	}
	e.setState(e.hibernateFrom)
}

// handleOpen runs when the transport reports the stream accepted.
func (e *Engine) handleOpen(id uuid.UUID) {
	if e.stale(id) {
		return
	}
	e.retryAttempt = 0
	e.setState(StateOpen)
	e.endSpan(nil)
	e.logger.Info("connection open", logging.String("attempt", id.String()))
	e.push(events.Open())
}

func (e *Engine) handleMessage(id uuid.UUID, data, msgID, event string) {
	if e.stale(id) {
		return
	}
	e.addBytes(len(data))
	e.push(events.Message(data, msgID, event))
}

func (e *Engine) handleComment(id uuid.UUID, text string) {
	if e.stale(id) {
		return
	}
	e.addBytes(len(text))
	e.push(events.Heartbeat(text))
}

// handleClosed runs on a clean server-initiated close. A clean close
// is not penalized with growing backoff; the fixed idle delay applies.
func (e *Engine) handleClosed(id uuid.UUID) {
	if e.stale(id) {
		return
	}
	if e.state != StateConnecting && e.state != StateOpen {
		return
	}
	e.closeHandle()
	e.endSpan(nil)
	e.bumpReconnects()

	delay := e.policy.IdleReconnect()
	e.logger.Info("stream closed by server, scheduling reconnect",
		logging.Duration("delay", delay))
	e.scheduleReconnect(delay)
}

func (e *Engine) handleError(id uuid.UUID, status int, retryAfter, message string) {
	if e.stale(id) {
		return
	}
	e.closeHandle()

	cls := e.classifier.Classify(status, retryAfter, message)
	e.endSpan(cls.Err)
	e.recordError(cls.Err.Code())
	e.bumpReconnects()
	e.push(events.Error(cls.Err.Message()))

	switch cls.Class {
	case sseerrors.ClassFatal:
		e.logger.WithError(cls.Err).Error("fatal stream error, stopping")
		e.buf.Flush()
		e.stopLocked()

	case sseerrors.ClassServerBusy:
		// The server dictated the delay; the exponential schedule and
		// its attempt counter are bypassed.
		e.logger.WithError(cls.Err).Warn("server busy, honoring retry hint",
			logging.Duration("delay", cls.Delay))
		e.scheduleReconnect(cls.Delay)

	default:
		delay := e.policy.NextTransient(e.retryAttempt)
		e.retryAttempt++
		e.logger.WithError(cls.Err).Warn("transient stream error, scheduling reconnect",
			logging.Duration("delay", delay),
			logging.Int("retry_attempt", e.retryAttempt))
		e.scheduleReconnect(delay)
	}
}

// scheduleReconnect arms the retry timer. The timer captures the
// attempt identity active at scheduling time; when it fires it is a
// no-op unless the engine is still reconnecting and no newer attempt
// has superseded it.
func (e *Engine) scheduleReconnect(delay time.Duration) {
	e.cancelRetryTimer()
	e.retryDelay = delay
	e.setState(StateReconnecting)

	scheduled := e.attempt
	e.retryTimer = time.AfterFunc(delay, func() {
		e.enqueue(func() { e.reconnectFired(scheduled) })
	})
}

func (e *Engine) reconnectFired(scheduled uuid.UUID) {
	if e.state != StateReconnecting || e.attempt != scheduled {
		e.logger.Debug("stale reconnect timer ignored")
		return
	}
	e.openAttempt()
}

// stale reports whether a callback belongs to a superseded attempt.
// Stale callbacks are discarded unconditionally; this is what keeps a
// replaced connection from corrupting buffer and backoff state.
func (e *Engine) stale(id uuid.UUID) bool {
	if e.attempt != id {
		e.logger.Debug("discarding stale callback",
			logging.String("attempt", id.String()))
		return true
	}
	return false
}

func (e *Engine) push(rec events.Record) {
	if e.buf.Push(rec) && e.metrics != nil {
		e.metrics.RecordDroppedEvent()
	}
	if e.metrics != nil {
		e.metrics.RecordBufferedEvent(rec.Kind.String())
	}
}

func (e *Engine) cancelRetryTimer() {
	if e.retryTimer != nil {
		e.retryTimer.Stop()
		e.retryTimer = nil
	}
	e.retryDelay = 0
}

func (e *Engine) closeHandle() {
	if e.handle != nil {
		e.handle.Close()
		e.handle = nil
	}
}

func (e *Engine) setState(s State) {
	e.state = s
	e.snapMu.Lock()
	e.snapState = s
	e.snapMu.Unlock()
	if e.metrics != nil {
		e.metrics.RecordState(s.String())
	}
}

func (e *Engine) addBytes(n int) {
	e.snapMu.Lock()
	e.stats.BytesReceived += int64(n)
	e.snapMu.Unlock()
	if e.metrics != nil {
		e.metrics.RecordBytes(n)
	}
}

func (e *Engine) bumpReconnects() {
	e.snapMu.Lock()
	e.stats.ReconnectCount++
	e.snapMu.Unlock()
	if e.metrics != nil {
		e.metrics.RecordReconnect()
	}
}

func (e *Engine) recordError(code string) {
	e.snapMu.Lock()
	e.stats.LastErrorTime = time.Now()
	e.stats.LastErrorCode = code
	e.snapMu.Unlock()
}

// Tracing. One span covers the connect phase of each attempt.

func (e *Engine) startSpan() {
	if e.tracer == nil {
		return
	}
	_, span := e.tracer.Start(context.Background(), "sse.connect",
		trace.WithAttributes(
			attribute.String("sse.url", e.cfg.URL),
			attribute.String("sse.attempt", e.attempt.String()),
		))
	e.span = span
}

func (e *Engine) endSpan(err error) {
	if e.span == nil {
		return
	}
	if err != nil {
		e.span.RecordError(err)
		e.span.SetStatus(codes.Error, err.Error())
	} else {
		e.span.SetStatus(codes.Ok, "")
	}
	e.span.End()
	e.span = nil
}

// attemptHandler tags every transport callback with the attempt that
// created it and re-enters the worker queue. The identity comparison
// at the head of each handler subsumes what the platform versions did
// with weak back-references and thread confinement.
type attemptHandler struct {
	engine *Engine
	id     uuid.UUID
}

func (h *attemptHandler) OnOpen() {
	h.engine.enqueue(func() { h.engine.handleOpen(h.id) })
}

func (h *attemptHandler) OnMessage(data, id, event string) {
	h.engine.enqueue(func() { h.engine.handleMessage(h.id, data, id, event) })
}

func (h *attemptHandler) OnComment(text string) {
	h.engine.enqueue(func() { h.engine.handleComment(h.id, text) })
}

func (h *attemptHandler) OnClosed() {
	h.engine.enqueue(func() { h.engine.handleClosed(h.id) })
}

func (h *attemptHandler) OnError(status int, retryAfter, message string) {
	h.engine.enqueue(func() { h.engine.handleError(h.id, status, retryAfter, message) })
}
