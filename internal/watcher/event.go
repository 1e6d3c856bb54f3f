package watcher

import "time"

// EventType represents the outcome of a watcher-triggered reload.
type EventType int

const (
	// EventReloaded is emitted after a successful reload.
	EventReloaded EventType = iota
	// EventReloadFailed is emitted when a reload returned an error.
	EventReloadFailed
)

// String returns the string representation of the event type
func (t EventType) String() string {
	switch t {
	case EventReloaded:
		return "reloaded"
	case EventReloadFailed:
		return "reload_failed"
	default:
		return "unknown"
	}
}

// Event reports one reload.
type Event struct {
	Type EventType

	// Changes is the number of filesystem notifications folded into this
	// reload.
	Changes int

	// Err is set for EventReloadFailed.
	Err error

	// At is when the reload finished.
	At time.Time
}
