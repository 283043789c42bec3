// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the SSE client engine.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the metrics provider
type MetricsConfig struct {
	// Namespace is the Prometheus namespace (default: sse_client)
	Namespace string

	// MetricsPath is the HTTP path for the metrics endpoint (default: /metrics)
	MetricsPath string

	// MetricsPort is the port for the optional metrics server; 0
	// disables the server and leaves scraping to the host registry.
	MetricsPort int

	// ConstLabels are added to all metrics
	ConstLabels prometheus.Labels

	// Registry receives the collectors; nil uses a new registry.
	Registry *prometheus.Registry
}

// connectionStates enumerates the state gauge's label values so the
// gauge can be kept one-hot.
var connectionStates = []string{
	"idle", "connecting", "open", "reconnecting", "hibernating", "stopped",
}

// Metrics records engine measurements into Prometheus collectors. It
// satisfies the engine's MetricsRecorder interface.
type Metrics struct {
	registry *prometheus.Registry
	server   *http.Server
	config   MetricsConfig

	connectionState *prometheus.GaugeVec
	reconnectsTotal prometheus.Counter
	bytesReceived   prometheus.Counter
	bufferedEvents  *prometheus.CounterVec
	droppedEvents   prometheus.Counter
	batchesTotal    prometheus.Counter
	batchSize       prometheus.Histogram
}

// NewMetrics creates and registers the engine's collectors.
func NewMetrics(config MetricsConfig) (*Metrics, error) {
	if config.Namespace == "" {
		config.Namespace = "sse_client"
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}
	registry := config.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		config:   config,
		connectionState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "connection_state",
			Help:        "Current connection state (one-hot across state labels)",
			ConstLabels: config.ConstLabels,
		}, []string{"state"}),
		reconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "reconnects_total",
			Help:        "Cumulative failures and clean closes that triggered reconnect handling",
			ConstLabels: config.ConstLabels,
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "bytes_received_total",
			Help:        "Cumulative payload bytes of messages and heartbeats",
			ConstLabels: config.ConstLabels,
		}),
		bufferedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "buffered_events_total",
			Help:        "Events pushed into the outbound buffer by kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),
		droppedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "dropped_events_total",
			Help:        "Events evicted from the full buffer (drop-oldest)",
			ConstLabels: config.ConstLabels,
		}),
		batchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "delivered_batches_total",
			Help:        "Batches handed to the host delivery callback",
			ConstLabels: config.ConstLabels,
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "delivered_batch_size",
			Help:        "Records per delivered batch",
			Buckets:     []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
			ConstLabels: config.ConstLabels,
		}),
	}

	collectors := []prometheus.Collector{
		m.connectionState, m.reconnectsTotal, m.bytesReceived,
		m.bufferedEvents, m.droppedEvents, m.batchesTotal, m.batchSize,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	return m, nil
}

// RecordState marks the current connection state.
func (m *Metrics) RecordState(state string) {
	for _, s := range connectionStates {
		v := 0.0
		if s == state {
			v = 1.0
		}
		m.connectionState.WithLabelValues(s).Set(v)
	}
}

// RecordReconnect counts a failure or clean close entering reconnect
// handling.
func (m *Metrics) RecordReconnect() {
	m.reconnectsTotal.Inc()
}

// RecordBytes accumulates received payload bytes.
func (m *Metrics) RecordBytes(n int) {
	m.bytesReceived.Add(float64(n))
}

// RecordBufferedEvent counts an event pushed into the buffer.
func (m *Metrics) RecordBufferedEvent(kind string) {
	m.bufferedEvents.WithLabelValues(kind).Inc()
}

// RecordDroppedEvent counts an eviction from the full buffer.
func (m *Metrics) RecordDroppedEvent() {
	m.droppedEvents.Inc()
}

// RecordBatch counts a delivered batch and its size.
func (m *Metrics) RecordBatch(size int) {
	m.batchesTotal.Inc()
	m.batchSize.Observe(float64(size))
}

// Registry returns the registry holding the engine collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Start serves the metrics endpoint when a port is configured.
func (m *Metrics) Start(ctx context.Context) error {
	if m.config.MetricsPort == 0 {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.MetricsPath, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	m.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", m.config.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}

// Shutdown stops the metrics server if one was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
