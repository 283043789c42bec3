package errors

import "fmt"

// Stable code strings exposed through Stats and error records. Hosts key
// UI and retry decisions off these; message text is free to change.
const (
	// CodeNetwork indicates a socket or transport failure with no
	// HTTP status attached.
	CodeNetwork = "network"

	// CodeRateLimited indicates an HTTP 429 with no usable Retry-After
	// hint; the engine stops rather than guessing a delay.
	CodeRateLimited = "rate_limited"

	// CodeServerBusy indicates the server explicitly asked for a delay
	// via Retry-After on a 429 or 503.
	CodeServerBusy = "server_busy"

	// CodeNotConfigured indicates an operation was invoked before setup.
	CodeNotConfigured = "not_configured"
)

// CodeForStatus returns the stable code string for an HTTP status.
func CodeForStatus(status int) string {
	return fmt.Sprintf("http_%d", status)
}
