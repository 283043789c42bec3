// Package events defines the records the engine delivers to the host.
//
// A Record is a discriminated variant over the four observable stream
// signals: the connection opening, a data message, a heartbeat comment,
// and an error. Records carry their payload by value and have no
// ownership beyond their strings.
package events

// Kind discriminates the variants of Record.
type Kind int

const (
	// KindOpen marks the successful opening of a stream connection.
	KindOpen Kind = iota
	// KindMessage carries a data event from the stream.
	KindMessage
	// KindHeartbeat carries a comment line used as a liveness signal.
	KindHeartbeat
	// KindError carries a human-readable failure description.
	KindError
)

// String returns the string representation of a record kind.
func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindMessage:
		return "message"
	case KindHeartbeat:
		return "heartbeat"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Record is a single buffered stream event.
//
// Only the fields relevant to the record's Kind are populated:
// Data/ID/Event for KindMessage, Comment for KindHeartbeat, and
// Message for KindError. KindOpen carries no payload.
type Record struct {
	Kind Kind

	// Message payload
	Data  string
	ID    string
	Event string

	// Heartbeat payload
	Comment string

	// Error payload
	Message string
}

// Open returns a record marking a successful connection.
func Open() Record {
	return Record{Kind: KindOpen}
}

// Message returns a data record.
func Message(data, id, event string) Record {
	return Record{Kind: KindMessage, Data: data, ID: id, Event: event}
}

// Heartbeat returns a liveness record for a comment line.
func Heartbeat(comment string) Record {
	return Record{Kind: KindHeartbeat, Comment: comment}
}

// Error returns a record describing a stream failure.
func Error(message string) Record {
	return Record{Kind: KindError, Message: message}
}

// Batch is an ordered sequence of records delivered to the host in a
// single callback invocation.
type Batch []Record

// DeliveryFunc receives each flushed batch. It is invoked serially and
// in buffer order; implementations must not assume which goroutine it
// runs on.
type DeliveryFunc func(Batch)
