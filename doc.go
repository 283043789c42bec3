// Package sseclient provides a resilient Server-Sent Events client for
// long-lived connections over unreliable networks, such as mobile
// clients streaming from a backend across cell and wifi handoffs.
//
// This package is the root of the client and provides convenient
// exports of the core components from the sub-packages.
//
// # Overview
//
// The client consists of several sub-packages:
//
//   - pkg/engine: The connection state machine — connect, retry,
//     hibernate, and the attempt-identity checks that discard stale
//     transport callbacks
//   - pkg/buffer: The bounded outbound event buffer with batch-flush
//     timing and drop-oldest eviction
//   - pkg/backoff: Retry delay computation with jitter
//   - pkg/errors: Structured stream errors and the fatal/server-busy/
//     transient classifier
//   - pkg/transport: The event-source capability and its HTTP
//     implementation
//   - pkg/lifecycle: Background/foreground orchestration
//   - pkg/events: The records delivered to the host
//   - pkg/logging: Structured logging
//   - pkg/observability: Prometheus metrics and OpenTelemetry tracing
//
// # Connecting to a stream
//
//	cfg := sseclient.DefaultConfig("https://api.example.com/stream")
//	cfg.BatchInterval = 250 * time.Millisecond
//
//	eng, err := sseclient.New(cfg, func(batch sseclient.Batch) {
//	    for _, rec := range batch {
//	        // handle rec
//	    }
//	})
//	if err != nil {
//	    // handle error
//	}
//	defer eng.Close()
//
//	eng.Start()
//
// The delivery callback receives batches serially and in buffer order.
// Stats and IsConnected may be called from anywhere, including from
// inside the callback.
package sseclient
