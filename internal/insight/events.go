package insight

import "time"

// EventType discriminates the messages emitted during generation.
type EventType string

const (
	// Token carries one incremental fragment of insight text.
	Token EventType = "token"

	// Error carries a human-readable failure description. It is terminal:
	// the only event after it is Done.
	Error EventType = "error"

	// Done marks the end of the stream, after success or failure.
	Done EventType = "done"
)

// Event is one message on a generation stream. Text holds the token text or
// the error description depending on Type.
type Event struct {
	Type EventType
	Text string
}

// Notification describes a finished generation, published for any listener
// interested in lifecycle outcomes.
type Notification struct {
	URL      string
	Mode     Mode
	Err      string // empty on success
	Duration time.Duration
}
