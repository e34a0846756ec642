package domain

import "time"

// MatchStatus represents the current status of a match.
//
// State machine:
//
//	pending --accept--> accepted --cancel--> cancelled
//	pending --reject--> rejected
//	pending/accepted --admin cascade--> cancelled
//
// No transition leaves rejected or cancelled.
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "PENDING"
	MatchStatusAccepted  MatchStatus = "ACCEPTED"
	MatchStatusRejected  MatchStatus = "REJECTED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
)

// MatchAction is a lifecycle action applied to a directed trip pair.
type MatchAction string

const (
	MatchActionRequest MatchAction = "request"
	MatchActionAccept  MatchAction = "accept"
	MatchActionReject  MatchAction = "reject"
	MatchActionCancel  MatchAction = "cancel"
)

// Match represents a directional pairing proposal between two trips.
// At most one match row exists per ordered (TripID, MatchedTripID) pair.
// Consent is true only once the match has been accepted.
type Match struct {
	ID            string
	TripID        string
	MatchedTripID string
	Status        MatchStatus
	Consent       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Terminal reports whether no further transition is defined for the match.
func (m *Match) Terminal() bool {
	return m.Status == MatchStatusRejected || m.Status == MatchStatusCancelled
}

// ReceivedMatch is the read model for a match request received by a host:
// the match row joined with the requesting trip and its owner. Contact
// fields are copied from the requester and gated by the service layer.
type ReceivedMatch struct {
	Match             *Match
	RequesterTrip     *Trip
	RequesterName     string
	RequesterEmail    string
	RequesterPhone    string
	RequesterWhatsapp string
}
