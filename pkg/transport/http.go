package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/streamforge/sse-client-go/pkg/logging"
)

const contentTypeEventStream = "text/event-stream"

// HTTPEventSource opens SSE streams over net/http. One instance is
// safe for concurrent use; each Open produces an independent stream.
type HTTPEventSource struct {
	client *http.Client
	logger logging.Logger

	// ReadBufferSize sizes the stream reader. Defaults to 4KB.
	ReadBufferSize int
}

// NewHTTPEventSource creates an HTTP event source. A nil client gets a
// dedicated client with no overall timeout, since a healthy SSE
// connection is expected to outlive any fixed request deadline.
func NewHTTPEventSource(client *http.Client, logger logging.Logger) *HTTPEventSource {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &HTTPEventSource{
		client:         client,
		logger:         logger.WithFields(logging.String("component", "transport")),
		ReadBufferSize: 4096,
	}
}

// httpStream is the Handle for one opened stream.
type httpStream struct {
	cancel context.CancelFunc
	closed atomic.Bool
}

// Close tears the stream down. Late callbacks are suppressed; the
// engine additionally discards anything stale by attempt identity.
func (s *httpStream) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.cancel()
	}
}

// Open validates the request and starts the connection in the
// background. The dial outcome and all stream events are reported
// through the handler.
func (es *HTTPEventSource) Open(req Request, handler Handler) (Handle, error) {
	if err := ValidateRequest(req, handler); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	stream := &httpStream{cancel: cancel}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		es.run(gctx, req, handler, stream)
		return nil
	})
	go func() {
		_ = g.Wait()
		cancel()
	}()

	return stream, nil
}

// run dials the endpoint and pumps parsed events into the handler until
// the stream ends or the handle is closed.
func (es *HTTPEventSource) run(ctx context.Context, req Request, handler Handler, stream *httpStream) {
	resp, err := es.dial(ctx, req)
	if err != nil {
		if stream.closed.Load() || ctx.Err() != nil {
			return
		}
		es.logger.Debug("dial failed", logging.ErrorField(err))
		handler.OnError(0, "", err.Error())
		return
	}

	if resp.StatusCode != http.StatusOK {
		retryAfter := resp.Header.Get("Retry-After")
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		if stream.closed.Load() {
			return
		}
		msg := fmt.Sprintf("server returned %s", resp.Status)
		if len(bytes.TrimSpace(body)) > 0 {
			msg = fmt.Sprintf("%s: %s", msg, bytes.TrimSpace(body))
		}
		es.logger.Debug("non-OK response",
			logging.Int("status", resp.StatusCode),
			logging.String("retry_after", retryAfter))
		handler.OnError(resp.StatusCode, retryAfter, msg)
		return
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), contentTypeEventStream) {
		_ = resp.Body.Close()
		if stream.closed.Load() {
			return
		}
		handler.OnError(0, "", fmt.Sprintf("server did not return %s (got %q)",
			contentTypeEventStream, resp.Header.Get("Content-Type")))
		return
	}

	if stream.closed.Load() {
		_ = resp.Body.Close()
		return
	}
	handler.OnOpen()

	// Close the body when the handle is closed so the blocked read
	// returns promptly.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = resp.Body.Close()
		case <-done:
		}
	}()

	es.readEvents(ctx, resp.Body, handler, stream)
}

func (es *HTTPEventSource) dial(ctx context.Context, req Request) (*http.Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Accept", contentTypeEventStream)
	httpReq.Header.Set("Cache-Control", "no-cache")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.LastEventID != "" {
		httpReq.Header.Set("Last-Event-ID", req.LastEventID)
	}

	return es.client.Do(httpReq)
}

// readEvents parses the SSE stream line by line and dispatches parsed
// events. Comment lines are surfaced individually as heartbeats; data
// events are dispatched on the blank line that terminates them.
func (es *HTTPEventSource) readEvents(ctx context.Context, body io.ReadCloser, handler Handler, stream *httpStream) {
	reader := bufio.NewReaderSize(body, es.ReadBufferSize)

	var (
		eventData strings.Builder
		hasData   bool
		eventID   string
		eventType string
	)

	reset := func() {
		eventData.Reset()
		hasData = false
		eventID = ""
		eventType = ""
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if stream.closed.Load() || ctx.Err() != nil {
				return
			}
			if errors.Is(err, io.EOF) {
				es.logger.Debug("stream closed by server")
				handler.OnClosed()
				return
			}
			es.logger.Debug("stream read failed", logging.ErrorField(err))
			handler.OnError(0, "", err.Error())
			return
		}

		if stream.closed.Load() {
			return
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		switch {
		case line == "":
			if hasData {
				handler.OnMessage(eventData.String(), eventID, eventType)
			}
			reset()

		case strings.HasPrefix(line, ":"):
			handler.OnComment(strings.TrimPrefix(line, ":"))

		case strings.HasPrefix(line, "data:"):
			if hasData {
				eventData.WriteByte('\n')
			}
			eventData.WriteString(trimFieldValue(line, "data:"))
			hasData = true

		case strings.HasPrefix(line, "id:"):
			eventID = trimFieldValue(line, "id:")

		case strings.HasPrefix(line, "event:"):
			eventType = trimFieldValue(line, "event:")

		case strings.HasPrefix(line, "retry:"):
			// Server-suggested reconnect interval. The engine owns its
			// own backoff schedule, so this is only logged.
			if ms, err := time.ParseDuration(trimFieldValue(line, "retry:") + "ms"); err == nil {
				es.logger.Debug("server suggested retry interval", logging.Duration("interval", ms))
			}

		default:
			es.logger.Debug("ignoring unknown stream line", logging.String("line", line))
		}
	}
}

// trimFieldValue strips the field prefix and the single optional
// leading space the SSE format allows.
func trimFieldValue(line, prefix string) string {
	v := strings.TrimPrefix(line, prefix)
	return strings.TrimPrefix(v, " ")
}
