package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Defaults(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{})
	require.NoError(t, err)
	assert.Equal(t, "sse_client", m.config.Namespace)
	assert.Equal(t, "/metrics", m.config.MetricsPath)
	assert.NotNil(t, m.Registry())
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewMetrics(MetricsConfig{Registry: registry})
	require.NoError(t, err)

	_, err = NewMetrics(MetricsConfig{Registry: registry})
	assert.Error(t, err, "registering the same collectors twice must fail")
}

func TestRecordState_OneHot(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{})
	require.NoError(t, err)

	m.RecordState("open")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionState.WithLabelValues("open")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.connectionState.WithLabelValues("connecting")))

	m.RecordState("reconnecting")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.connectionState.WithLabelValues("open")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionState.WithLabelValues("reconnecting")))
}

func TestCounters(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{})
	require.NoError(t, err)

	m.RecordReconnect()
	m.RecordReconnect()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reconnectsTotal))

	m.RecordBytes(100)
	m.RecordBytes(28)
	assert.Equal(t, 128.0, testutil.ToFloat64(m.bytesReceived))

	m.RecordBufferedEvent("message")
	m.RecordBufferedEvent("message")
	m.RecordBufferedEvent("heartbeat")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bufferedEvents.WithLabelValues("message")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bufferedEvents.WithLabelValues("heartbeat")))

	m.RecordDroppedEvent()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.droppedEvents))

	m.RecordBatch(5)
	m.RecordBatch(1)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.batchesTotal))
}

func TestStartDisabledWithoutPort(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{})
	require.NoError(t, err)

	require.NoError(t, m.Start(context.Background()))
	assert.Nil(t, m.server)
	require.NoError(t, m.Shutdown(context.Background()))
}
