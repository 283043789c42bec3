// Package sseclient provides a resilient Server-Sent Events client for
// long-lived connections over unreliable networks.
package sseclient

import (
	"github.com/streamforge/sse-client-go/pkg/backoff"
	"github.com/streamforge/sse-client-go/pkg/engine"
	"github.com/streamforge/sse-client-go/pkg/errors"
	"github.com/streamforge/sse-client-go/pkg/events"
	"github.com/streamforge/sse-client-go/pkg/lifecycle"
	"github.com/streamforge/sse-client-go/pkg/logging"
	"github.com/streamforge/sse-client-go/pkg/transport"
)

// Version represents the current version of the client
const Version = "1.0.0"

// These exports provide direct access to the core components
var (
	// New creates a new connection engine
	New = engine.New

	// DefaultConfig returns a connection configuration with defaults
	DefaultConfig = engine.DefaultConfig

	// NewHTTPEventSource creates the HTTP transport capability
	NewHTTPEventSource = transport.NewHTTPEventSource

	// NewLifecycleController adapts host lifecycle signals onto an engine
	NewLifecycleController = lifecycle.NewController

	// NewBackoffPolicy creates the default reconnect backoff policy
	NewBackoffPolicy = backoff.NewPolicy

	// NewClassifier creates the default error classifier
	NewClassifier = errors.NewClassifier

	// NewLogger creates a structured logger
	NewLogger = logging.New
)

// Core type aliases so simple hosts only import this package
type (
	Config = engine.Config
	Engine = engine.Engine
	State  = engine.State
	Stats  = engine.Stats

	Record = events.Record
	Batch  = events.Batch
)

// Engine options
var (
	WithLogger        = engine.WithLogger
	WithEventSource   = engine.WithEventSource
	WithBackoffPolicy = engine.WithBackoffPolicy
	WithClassifier    = engine.WithClassifier
	WithMetrics       = engine.WithMetrics
	WithTracer        = engine.WithTracer
)

// Connection states
const (
	StateIdle         = engine.StateIdle
	StateConnecting   = engine.StateConnecting
	StateOpen         = engine.StateOpen
	StateReconnecting = engine.StateReconnecting
	StateHibernating  = engine.StateHibernating
	StateStopped      = engine.StateStopped
)

// Event record kinds
const (
	KindOpen      = events.KindOpen
	KindMessage   = events.KindMessage
	KindHeartbeat = events.KindHeartbeat
	KindError     = events.KindError
)
