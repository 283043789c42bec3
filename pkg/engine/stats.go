package engine

import "time"

// Stats are monotonic, process-lifetime counters, reset only by
// constructing a new engine. They are read as a consistent snapshot
// without entering the engine's worker context, so a host UI can poll
// them from anywhere, including from within a delivery callback.
type Stats struct {
	// BytesReceived is the cumulative payload size of messages and
	// heartbeats.
	BytesReceived int64

	// ReconnectCount is the cumulative number of failures and clean
	// closes that led the engine to schedule (or, for fatal errors,
	// refuse) a reconnect.
	ReconnectCount int64

	// LastErrorTime is when the most recent error was recorded.
	LastErrorTime time.Time

	// LastErrorCode is the stable code string of the most recent
	// error, empty if none occurred.
	LastErrorCode string
}
