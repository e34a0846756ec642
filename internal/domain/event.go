package domain

import "time"

// EventType identifies a post-commit domain event.
type EventType string

const (
	EventMatchRequested EventType = "match.requested"
	EventMatchAccepted  EventType = "match.accepted"
	EventMatchRejected  EventType = "match.rejected"
	EventMatchCancelled EventType = "match.cancelled"
	EventTripCreated    EventType = "trip.created"
	EventTripCancelled  EventType = "trip.cancelled"
	EventHostBlocked    EventType = "host.blocked"
)

// Recipient is a notification target for an event.
type Recipient struct {
	HostID string
	Email  string
}

// Event is a tagged record emitted after a committed state mutation.
// Optional fields are zero when they do not apply to the event type.
type Event struct {
	Type          EventType
	ActorHostID   string
	TripID        string
	MatchedTripID string
	MatchID       string
	HostID        string // subject host for host-level events
	Title         string
	Message       string
	Recipients    []Recipient
	OccurredAt    time.Time
}
