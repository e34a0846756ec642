package service

import "errors"

// Not found.
var (
	// ErrHostNotFound is returned when the referenced host does not exist.
	ErrHostNotFound = errors.New("host not found")

	// ErrTripNotFound is returned when a referenced trip does not exist.
	ErrTripNotFound = errors.New("trip not found")

	// ErrMatchNotFound is returned when no match exists for the pair.
	ErrMatchNotFound = errors.New("match not found")
)

// Invalid argument.
var (
	// ErrInvalidHostID is returned when the acting host ID is empty.
	ErrInvalidHostID = errors.New("invalid host id")

	// ErrInvalidTripID is returned when a trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrSelfMatch is returned when both sides of a match are the same trip.
	ErrSelfMatch = errors.New("trip cannot match itself")

	// ErrInvalidAction is returned for an unknown match action.
	ErrInvalidAction = errors.New("invalid match action")

	// ErrMissingOrigin is returned when origin country or city is absent.
	ErrMissingOrigin = errors.New("origin country and city are required")

	// ErrMissingDestination is returned when destination country or city is absent.
	ErrMissingDestination = errors.New("destination country and city are required")

	// ErrMissingTravelDate is returned when the travel date is absent.
	ErrMissingTravelDate = errors.New("travel date is required")

	// ErrMissingDepartureTime is returned when the departure time is absent.
	ErrMissingDepartureTime = errors.New("departure time is required")

	// ErrMissingName is returned when a host registers without a name.
	ErrMissingName = errors.New("name is required")

	// ErrMissingEmail is returned when a host registers without an email.
	ErrMissingEmail = errors.New("email is required")
)

// Forbidden.
var (
	// ErrNotTripOwner is returned when the acting host does not own the
	// requesting trip.
	ErrNotTripOwner = errors.New("acting host does not own this trip")

	// ErrOwnTripTarget is returned when a host requests a match against
	// their own trip.
	ErrOwnTripTarget = errors.New("cannot request a match against your own trip")

	// ErrNotMatchRecipient is returned when a host other than the receiving
	// trip's owner tries to accept or reject.
	ErrNotMatchRecipient = errors.New("only the receiving trip's owner may respond")

	// ErrNotMatchParty is returned when a host owning neither trip tries to
	// cancel.
	ErrNotMatchParty = errors.New("acting host is not a party to this match")

	// ErrHostNotApproved is returned when an unapproved host posts a trip.
	ErrHostNotApproved = errors.New("host is not approved")

	// ErrHostBlocked is returned when a rejected host attempts to log in.
	ErrHostBlocked = errors.New("host is blocked")
)

// Conflict.
var (
	// ErrMatchAlreadyExists is returned when a match for the directed pair
	// already exists.
	ErrMatchAlreadyExists = errors.New("match already exists")

	// ErrTripAlreadyCancelled is returned when cancelling an already
	// cancelled trip.
	ErrTripAlreadyCancelled = errors.New("trip already cancelled")

	// ErrEmailTaken is returned when registering with an email already in
	// use.
	ErrEmailTaken = errors.New("email already registered")
)

// Invalid state.
var (
	// ErrMatchNotPending is returned when accepting or rejecting a match
	// that is not pending.
	ErrMatchNotPending = errors.New("match is not pending")

	// ErrMatchNotAccepted is returned when cancelling a match that is not
	// accepted.
	ErrMatchNotAccepted = errors.New("match is not accepted")

	// ErrTripNotActive is returned when requesting a match for a trip that
	// is no longer active.
	ErrTripNotActive = errors.New("trip is not active")
)
