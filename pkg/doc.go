// Package pkg contains the components of the resilient SSE client.
//
// The connection resilience engine lives in pkg/engine; it consumes
// the transport capability from pkg/transport and composes the leaf
// components in pkg/buffer, pkg/backoff, and pkg/errors. Hosts that
// want a single import can use the root sseclient package instead,
// which re-exports the constructors.
//
// # Sub-packages
//
//   - engine: The connection state machine and its public operations
//   - buffer: The bounded outbound event buffer
//   - backoff: Retry delay computation
//   - errors: Structured stream errors and failure classification
//   - transport: The event-source capability and HTTP implementation
//   - lifecycle: Background/foreground orchestration
//   - events: Records delivered to the host
//   - logging: Structured logging
//   - observability: Prometheus metrics and OpenTelemetry tracing
package pkg
