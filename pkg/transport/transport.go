// Package transport defines the event-source capability the engine
// consumes, and provides an HTTP implementation of it.
//
// The engine never parses raw SSE bytes; it opens an EventSource and
// receives already-parsed open/message/comment/closed/error signals
// through a Handler. Any streaming stack can sit behind the interface;
// HTTPEventSource is the production implementation.
package transport

import (
	"errors"
	"net/http"
)

// Method is the HTTP method used to open a stream.
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

// Request describes one connection attempt against a stream endpoint.
// The engine builds a fresh Request per attempt from its current config
// snapshot; an in-flight request is never mutated.
type Request struct {
	// URL is the stream endpoint.
	URL string

	// Method is GET or POST.
	Method Method

	// Headers are sent verbatim on the request.
	Headers map[string]string

	// Body is the optional request body, typically for POST.
	Body []byte

	// LastEventID, when non-empty, is sent as the Last-Event-ID header
	// so the server can resume the stream.
	LastEventID string
}

// Handler receives the asynchronous signals of one opened stream. The
// implementation decides which goroutine invokes each callback; callers
// must tolerate late callbacks after Close and discard stale ones.
type Handler interface {
	// OnOpen fires once when the server accepts the stream.
	OnOpen()

	// OnMessage fires for each data event. id and event may be empty.
	OnMessage(data, id, event string)

	// OnComment fires for each comment line, conventionally used as a
	// heartbeat.
	OnComment(text string)

	// OnClosed fires when the server ends the stream without error.
	OnClosed()

	// OnError fires when the stream fails. status is 0 for pure
	// transport failures; retryAfter carries the Retry-After header
	// verbatim when the server sent one.
	OnError(status int, retryAfter string, message string)
}

// Handle represents one opened stream. Close tears the stream down;
// callbacks already in flight may still arrive afterwards.
type Handle interface {
	Close()
}

// EventSource opens streams. Open must not block on I/O: it validates
// the request, starts the connection in the background, and reports the
// outcome through the handler.
type EventSource interface {
	Open(req Request, handler Handler) (Handle, error)
}

// Validation errors returned synchronously by Open.
var (
	ErrEmptyURL         = errors.New("transport: request URL is empty")
	ErrBadMethod        = errors.New("transport: method must be GET or POST")
	ErrNilHandler       = errors.New("transport: handler is nil")
	ErrBodyRequiresPost = errors.New("transport: request body requires POST")
)

// ValidateRequest checks the parts of a Request every implementation
// must reject.
func ValidateRequest(req Request, handler Handler) error {
	if handler == nil {
		return ErrNilHandler
	}
	if req.URL == "" {
		return ErrEmptyURL
	}
	switch req.Method {
	case MethodGet, MethodPost:
	case "":
		return ErrBadMethod
	default:
		return ErrBadMethod
	}
	if len(req.Body) > 0 && req.Method != MethodPost {
		return ErrBodyRequiresPost
	}
	return nil
}
