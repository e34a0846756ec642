package repository

import (
	"context"

	"travelmatch/internal/domain"
)

// MatchRepository defines the persistence operations for matches.
type MatchRepository interface {
	// Create persists a new match. Returns ErrDuplicate when a match for
	// the same directed pair already exists.
	Create(ctx context.Context, match *domain.Match) error

	// GetByPair retrieves the match for a directed (tripID, matchedTripID)
	// pair.
	GetByPair(ctx context.Context, tripID, matchedTripID string) (*domain.Match, error)

	// GetByPairForUpdate retrieves the match for a directed pair with a row
	// lock. Only meaningful inside a transaction.
	GetByPairForUpdate(ctx context.Context, tripID, matchedTripID string) (*domain.Match, error)

	// Update updates the status and consent flag of an existing match.
	Update(ctx context.Context, match *domain.Match) error

	// GetByTripIDs retrieves every match referencing any of the given trips
	// as either party.
	GetByTripIDs(ctx context.Context, tripIDs []string) ([]*domain.Match, error)

	// LockByTripID locks and returns every match referencing the trip as
	// either party. Only meaningful inside a transaction.
	LockByTripID(ctx context.Context, tripID string) ([]*domain.Match, error)

	// CancelByTripIDs sets every non-cancelled match referencing any of the
	// given trips to CANCELLED and returns the number of rows updated.
	CancelByTripIDs(ctx context.Context, tripIDs []string) (int64, error)

	// ListReceivedByHost retrieves pending and accepted matches targeting
	// the host's trips, joined with the requesting trip and its owner.
	ListReceivedByHost(ctx context.Context, hostID string) ([]*domain.ReceivedMatch, error)
}
