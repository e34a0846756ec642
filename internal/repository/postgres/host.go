package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"travelmatch/internal/domain"
	"travelmatch/internal/repository"
)

// HostRepository is a PostgreSQL implementation of repository.HostRepository.
type HostRepository struct {
	q Querier
}

// NewHostRepository creates a new PostgreSQL host repository.
func NewHostRepository(db *sql.DB) *HostRepository {
	return &HostRepository{q: db}
}

// NewHostRepositoryWithTx creates a host repository using a transaction.
func NewHostRepositoryWithTx(tx *sql.Tx) *HostRepository {
	return &HostRepository{q: tx}
}

const hostColumns = `id, name, email, phone, whatsapp, verification, created_at`

// Create persists a new host.
func (r *HostRepository) Create(ctx context.Context, host *domain.Host) error {
	query := `
		INSERT INTO hosts (id, name, email, phone, whatsapp, verification, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		host.ID,
		host.Name,
		host.Email,
		host.Phone,
		host.Whatsapp,
		host.Verification,
		host.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// GetByID retrieves a host by ID.
func (r *HostRepository) GetByID(ctx context.Context, id string) (*domain.Host, error) {
	query := `SELECT ` + hostColumns + ` FROM hosts WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a host by ID with a row lock.
func (r *HostRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Host, error) {
	query := `SELECT ` + hostColumns + ` FROM hosts WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a host by email address.
func (r *HostRepository) GetByEmail(ctx context.Context, email string) (*domain.Host, error) {
	query := `SELECT ` + hostColumns + ` FROM hosts WHERE email = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, email))
}

// UpdateVerification updates the verification status of a host.
func (r *HostRepository) UpdateVerification(ctx context.Context, id string, status domain.VerificationStatus) error {
	query := `UPDATE hosts SET verification = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *HostRepository) scanOne(row *sql.Row) (*domain.Host, error) {
	var host domain.Host
	var phone sql.NullString
	var whatsapp sql.NullString

	err := row.Scan(
		&host.ID,
		&host.Name,
		&host.Email,
		&phone,
		&whatsapp,
		&host.Verification,
		&host.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if phone.Valid {
		host.Phone = phone.String
	}
	if whatsapp.Valid {
		host.Whatsapp = whatsapp.String
	}

	return &host, nil
}

// Ensure HostRepository implements repository.HostRepository.
var _ repository.HostRepository = (*HostRepository)(nil)
