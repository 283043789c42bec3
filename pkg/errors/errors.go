// Package errors provides structured error handling for the SSE client.
// It defines the stream error type carried through the engine and the
// classifier that maps transport failures to a retry disposition.
package errors

import (
	"fmt"
	"time"
)

// Category represents the type/category of an error for classification and handling
type Category string

const (
	CategoryAuth      Category = "auth"
	CategoryRateLimit Category = "rate_limit"
	CategoryServer    Category = "server"
	CategoryNetwork   Category = "network"
	CategoryUsage     Category = "usage"
	CategoryInternal  Category = "internal"
)

// Severity indicates how critical an error is
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// StreamError defines the interface for all errors surfaced by the engine.
type StreamError interface {
	error

	// Code returns a stable code string suitable for programmatic
	// handling; hosts distinguish causes through it without parsing
	// message text.
	Code() string

	// Message returns a human-readable error message
	Message() string

	// Category returns the error category for classification
	Category() Category

	// Severity returns the error severity level
	Severity() Severity

	// StatusCode returns the HTTP status that produced the error,
	// or 0 for pure transport failures.
	StatusCode() int

	// Time returns when the error was recorded
	Time() time.Time

	// Unwrap returns the underlying cause, if any
	Unwrap() error
}

// baseError is the standard implementation of StreamError
type baseError struct {
	code     string
	message  string
	category Category
	severity Severity
	status   int
	when     time.Time
	cause    error
}

// NewError creates a new structured stream error
func NewError(code, message string, category Category, severity Severity) StreamError {
	return &baseError{
		code:     code,
		message:  message,
		category: category,
		severity: severity,
		when:     time.Now(),
	}
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *baseError) Code() string       { return e.code }
func (e *baseError) Message() string    { return e.message }
func (e *baseError) Category() Category { return e.category }
func (e *baseError) Severity() Severity { return e.severity }
func (e *baseError) StatusCode() int    { return e.status }
func (e *baseError) Time() time.Time    { return e.when }
func (e *baseError) Unwrap() error      { return e.cause }

// WithStatus returns a copy of the error annotated with an HTTP status code.
func WithStatus(err StreamError, status int) StreamError {
	b := clone(err)
	b.status = status
	return b
}

// WithCause returns a copy of the error wrapping an underlying cause.
func WithCause(err StreamError, cause error) StreamError {
	b := clone(err)
	b.cause = cause
	return b
}

func clone(err StreamError) *baseError {
	if b, ok := err.(*baseError); ok {
		c := *b
		return &c
	}
	return &baseError{
		code:     err.Code(),
		message:  err.Message(),
		category: err.Category(),
		severity: err.Severity(),
		status:   err.StatusCode(),
		when:     err.Time(),
		cause:    err.Unwrap(),
	}
}

// Common constructors

// AuthRejected creates an error for 400/401/403 responses; the request or
// credentials are invalid and retrying cannot help.
func AuthRejected(status int) StreamError {
	return WithStatus(NewError(
		CodeForStatus(status),
		fmt.Sprintf("server rejected the request with HTTP %d", status),
		CategoryAuth,
		SeverityCritical,
	), status)
}

// RateLimitedNoHint creates an error for a 429 with no usable Retry-After.
func RateLimitedNoHint() StreamError {
	return WithStatus(NewError(
		CodeRateLimited,
		"server returned HTTP 429 without a usable Retry-After hint",
		CategoryRateLimit,
		SeverityCritical,
	), 429)
}

// ServerBusy creates an error for a rate-limit or overload response that
// carried a usable Retry-After hint.
func ServerBusy(status int, delay time.Duration) StreamError {
	return WithStatus(NewError(
		CodeServerBusy,
		fmt.Sprintf("server asked to retry after %s (HTTP %d)", delay, status),
		CategoryServer,
		SeverityWarning,
	), status)
}

// TransientFailure creates an error for a recoverable network or server
// hiccup. status may be 0 for pure transport failures.
func TransientFailure(status int, message string) StreamError {
	code := CodeNetwork
	if status != 0 {
		code = CodeForStatus(status)
	}
	if message == "" {
		message = "stream connection failed"
	}
	return WithStatus(NewError(code, message, CategoryNetwork, SeverityWarning), status)
}

// NotConfigured creates an error for operations invoked before setup.
func NotConfigured(operation string) StreamError {
	return NewError(
		CodeNotConfigured,
		fmt.Sprintf("%s called before the engine was configured", operation),
		CategoryUsage,
		SeverityError,
	)
}
