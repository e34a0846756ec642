package repository

import (
	"context"

	"travelmatch/internal/domain"
)

// HostRepository defines the persistence operations for hosts.
type HostRepository interface {
	// Create persists a new host.
	Create(ctx context.Context, host *domain.Host) error

	// GetByID retrieves a host by ID.
	GetByID(ctx context.Context, id string) (*domain.Host, error)

	// GetByIDForUpdate retrieves a host by ID with a row lock. Only
	// meaningful inside a transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Host, error)

	// GetByEmail retrieves a host by email address.
	GetByEmail(ctx context.Context, email string) (*domain.Host, error)

	// UpdateVerification updates the verification status of a host.
	UpdateVerification(ctx context.Context, id string, status domain.VerificationStatus) error
}
