package engine

// State is the single mutable mode consulted by every engine operation.
// Exactly one state is active at a time.
type State int

const (
	// StateIdle is the initial state before Start.
	StateIdle State = iota
	// StateConnecting means an attempt is being opened.
	StateConnecting
	// StateOpen means the stream is established.
	StateOpen
	// StateReconnecting means a retry timer is pending.
	StateReconnecting
	// StateHibernating means the host went to background and the
	// engine closed the transport, remembering whether to resume.
	StateHibernating
	// StateStopped is terminal until Start is called again.
	StateStopped
)

// String returns the string representation of a state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateHibernating:
		return "hibernating"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
