package repository

import (
	"context"
	"time"

	"travelmatch/internal/domain"
)

// TripSearchFilter holds the exact-match filters for trip search.
type TripSearchFilter struct {
	FromCountry string
	ToCountry   string
	TravelDate  time.Time
	Limit       int
	Offset      int
}

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetByIDForUpdate retrieves a trip by ID with a row lock. Only
	// meaningful inside a transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Trip, error)

	// GetByIDs retrieves trips for the given IDs.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Trip, error)

	// GetByHostID retrieves all trips owned by a host, newest travel date
	// first.
	GetByHostID(ctx context.Context, hostID string) ([]*domain.Trip, error)

	// Search retrieves active trips matching the filter, ordered by travel
	// date ascending.
	Search(ctx context.Context, filter TripSearchFilter) ([]*domain.Trip, error)

	// UpdateStatus updates the status of a trip.
	UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error

	// LockByHostID locks all trip rows owned by a host and returns their
	// IDs. Only meaningful inside a transaction.
	LockByHostID(ctx context.Context, hostID string) ([]string, error)

	// CancelByHostID sets every non-cancelled trip owned by the host to
	// CANCELLED and returns the number of rows updated.
	CancelByHostID(ctx context.Context, hostID string) (int64, error)
}
