package session

import (
	"time"

	"github.com/pantrypairing/server/internal/domain/shared"
)

// EventStateChanged is published after every committed change.
const EventStateChanged = "state.changed"

// Event is what a session publishes. Domain events raised by a command are
// carried in Payload under their own name.
type Event struct {
	Session string             `json:"session_id"`
	Version uint64             `json:"version"`
	Name    string             `json:"event"`
	Reason  string             `json:"reason,omitempty"`
	Payload shared.DomainEvent `json:"payload,omitempty"`
	At      time.Time          `json:"at"`
}

func (e Event) EventName() string {
	return e.Name
}

func (e Event) OccurredAt() time.Time {
	return e.At
}

// SessionID routes the event to the session's subscribers.
func (e Event) SessionID() string {
	return e.Session
}
