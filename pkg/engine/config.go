package engine

import (
	"time"

	"github.com/streamforge/sse-client-go/pkg/buffer"
	"github.com/streamforge/sse-client-go/pkg/transport"
)

// Config is an immutable snapshot of the connection settings. The
// engine replaces the snapshot wholesale (UpdateHeaders) and never
// mutates it in place, so concurrent readers never observe a
// half-written config. The in-flight connection keeps the snapshot it
// was opened with; only the next attempt sees a replacement.
type Config struct {
	// URL is the stream endpoint.
	URL string

	// Method is GET or POST. Defaults to GET.
	Method transport.Method

	// Headers are sent on every connection attempt.
	Headers map[string]string

	// Body is the optional request body, typically for POST.
	Body []byte

	// BatchInterval is the flush coalescing window. Zero or negative
	// means every buffered event flushes immediately.
	BatchInterval time.Duration

	// MaxBufferSize caps the buffered-event queue; the oldest record
	// is evicted first when full. Defaults to buffer.DefaultMaxSize.
	MaxBufferSize int

	// ContinueInBackground keeps the connection alive across host
	// background transitions instead of hibernating.
	ContinueInBackground bool
}

// DefaultConfig returns a connection configuration with sensible defaults.
func DefaultConfig(url string) Config {
	return Config{
		URL:           url,
		Method:        transport.MethodGet,
		Headers:       map[string]string{},
		BatchInterval: 0,
		MaxBufferSize: buffer.DefaultMaxSize,
	}
}

// withHeaders returns a copy of the config with the header map replaced.
func (c Config) withHeaders(headers map[string]string) Config {
	next := c
	next.Headers = make(map[string]string, len(headers))
	for k, v := range headers {
		next.Headers[k] = v
	}
	return next
}

// request builds the transport request for one connection attempt.
func (c Config) request(lastEventID string) transport.Request {
	method := c.Method
	if method == "" {
		method = transport.MethodGet
	}
	headers := make(map[string]string, len(c.Headers))
	for k, v := range c.Headers {
		headers[k] = v
	}
	return transport.Request{
		URL:         c.URL,
		Method:      method,
		Headers:     headers,
		Body:        c.Body,
		LastEventID: lastEventID,
	}
}
