//go:build ignore
// +build ignore

// This file is an example documentation file that's not meant to be included in builds.
// It contains extended usage examples for the SSE client and is provided for
// reference only. The actual implementation is in the pkg directory.

// Package sseclient provides a resilient Server-Sent Events client engine for
// long-lived connections over unreliable networks.
//
// # Basic usage
//
// To connect to a stream and receive batched events:
//
//	import (
//	    "log"
//	    "time"
//
//	    sseclient "github.com/streamforge/sse-client-go"
//	)
//
//	func main() {
//	    cfg := sseclient.DefaultConfig("https://api.example.com/stream")
//	    cfg.Headers = map[string]string{"Authorization": "Bearer " + token}
//	    cfg.BatchInterval = 250 * time.Millisecond
//
//	    eng, err := sseclient.New(cfg, func(batch sseclient.Batch) {
//	        for _, rec := range batch {
//	            switch rec.Kind {
//	            case sseclient.KindMessage:
//	                log.Printf("event %s: %s", rec.ID, rec.Data)
//	            case sseclient.KindError:
//	                log.Printf("stream error: %s", rec.Message)
//	            }
//	        }
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer eng.Close()
//
//	    eng.Start()
//	}
//
// The engine reconnects on its own: transient failures follow an exponential
// schedule with jitter, a clean server close reconnects after a short idle
// delay, and a Retry-After hint from a busy server is honored verbatim plus
// jitter. Authentication failures and unhinted rate limits stop the engine
// and surface an error record.
//
// # Resuming a stream
//
// Tell the engine the last event id your application has durably processed;
// the next connection attempt sends it as the Last-Event-ID header:
//
//	eng.SetLastProcessedID("12345")
//
// # Host lifecycle integration
//
// On platforms that suspend backgrounded apps, wire the lifecycle controller
// to your platform signals. Entering background flushes pending events,
// closes the connection, and releases the OS background grant once teardown
// has completed; entering foreground reconnects if a live session was
// interrupted:
//
//	ctl := sseclient.NewLifecycleController(eng, grants, logger)
//	// from the platform bridge:
//	ctl.EnteredBackground()
//	ctl.EnteredForeground()
//
// # Observability
//
// Prometheus metrics and OpenTelemetry tracing are opt-in:
//
//	metrics, _ := observability.NewMetrics(observability.MetricsConfig{MetricsPort: 9090})
//	tracing, _ := observability.NewTracingProvider(observability.TracingConfig{
//	    ServiceName:  "my-app",
//	    ExporterType: observability.ExporterTypeOTLPGRPC,
//	    Endpoint:     "localhost:4317",
//	})
//
//	eng, err := sseclient.New(cfg, onBatch,
//	    sseclient.WithMetrics(metrics),
//	    sseclient.WithTracer(tracing.Tracer()),
//	)
package sseclient_examples
