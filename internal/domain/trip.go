package domain

import "time"

// TripStatus represents the current status of a trip.
// Transitions are monotonic: ACTIVE moves to COMPLETED or CANCELLED and
// never reverses.
type TripStatus string

const (
	TripStatusActive    TripStatus = "ACTIVE"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// Trip represents a single-direction travel plan posted by a host.
type Trip struct {
	ID            string
	HostID        string
	FromCountry   string
	FromState     string
	FromCity      string
	ToCountry     string
	ToCity        string
	TravelDate    time.Time
	DepartureTime string
	ArrivalDate   time.Time // zero when unknown
	ArrivalTime   string
	Airline       string
	FlightNumber  string
	Status        TripStatus
	CreatedAt     time.Time
}

// MatchState is the derived match annotation for a trip: connected when any
// associated match is accepted, pending when any is pending, none otherwise.
type MatchState string

const (
	MatchStateConnected MatchState = "connected"
	MatchStatePending   MatchState = "pending"
	MatchStateNone      MatchState = "none"
)
