package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"travelmatch/internal/domain"
	"travelmatch/internal/repository"
)

// MatchRepository is a PostgreSQL implementation of repository.MatchRepository.
type MatchRepository struct {
	q Querier
}

// NewMatchRepository creates a new PostgreSQL match repository.
func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{q: db}
}

// NewMatchRepositoryWithTx creates a match repository using a transaction.
func NewMatchRepositoryWithTx(tx *sql.Tx) *MatchRepository {
	return &MatchRepository{q: tx}
}

const matchColumns = `id, trip_id, matched_trip_id, status, consent, created_at, updated_at`

// Create persists a new match. The (trip_id, matched_trip_id) pair is
// unique; a duplicate insert maps to repository.ErrDuplicate.
func (r *MatchRepository) Create(ctx context.Context, match *domain.Match) error {
	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		match.ID,
		match.TripID,
		match.MatchedTripID,
		match.Status,
		match.Consent,
		match.CreatedAt,
		match.UpdatedAt,
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

// GetByPair retrieves the match for a directed pair.
func (r *MatchRepository) GetByPair(ctx context.Context, tripID, matchedTripID string) (*domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE trip_id = $1 AND matched_trip_id = $2`
	return scanMatchRow(r.q.QueryRowContext(ctx, query, tripID, matchedTripID))
}

// GetByPairForUpdate retrieves the match for a directed pair with a row
// lock.
func (r *MatchRepository) GetByPairForUpdate(ctx context.Context, tripID, matchedTripID string) (*domain.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE trip_id = $1 AND matched_trip_id = $2 FOR UPDATE`
	return scanMatchRow(r.q.QueryRowContext(ctx, query, tripID, matchedTripID))
}

// Update updates the status and consent flag of an existing match.
func (r *MatchRepository) Update(ctx context.Context, match *domain.Match) error {
	query := `UPDATE matches SET status = $1, consent = $2, updated_at = $3 WHERE id = $4`

	result, err := r.q.ExecContext(ctx, query,
		match.Status,
		match.Consent,
		match.UpdatedAt,
		match.ID,
	)
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

// GetByTripIDs retrieves every match referencing any of the given trips as
// either party.
func (r *MatchRepository) GetByTripIDs(ctx context.Context, tripIDs []string) ([]*domain.Match, error) {
	if len(tripIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE trip_id = ANY($1) OR matched_trip_id = ANY($1)
	`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(tripIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMatchRows(rows)
}

// LockByTripID locks and returns every match referencing the trip as
// either party.
func (r *MatchRepository) LockByTripID(ctx context.Context, tripID string) ([]*domain.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE trip_id = $1 OR matched_trip_id = $1
		FOR UPDATE
	`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMatchRows(rows)
}

// CancelByTripIDs sets every non-cancelled match referencing any of the
// given trips to CANCELLED.
func (r *MatchRepository) CancelByTripIDs(ctx context.Context, tripIDs []string) (int64, error) {
	if len(tripIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE matches
		SET status = $1, updated_at = NOW()
		WHERE (trip_id = ANY($2) OR matched_trip_id = ANY($2)) AND status <> $1
	`

	result, err := r.q.ExecContext(ctx, query, domain.MatchStatusCancelled, pq.Array(tripIDs))
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// ListReceivedByHost retrieves pending and accepted matches targeting the
// host's trips, joined with the requesting trip and its owner.
func (r *MatchRepository) ListReceivedByHost(ctx context.Context, hostID string) ([]*domain.ReceivedMatch, error) {
	query := `
		SELECT
			m.id, m.trip_id, m.matched_trip_id, m.status, m.consent, m.created_at, m.updated_at,
			t.id, t.host_id, t.from_country, t.from_state, t.from_city, t.to_country, t.to_city,
			t.travel_date, t.departure_time, t.arrival_date, t.arrival_time, t.airline, t.flight_number,
			t.status, t.created_at,
			h.name, h.email, h.phone, h.whatsapp
		FROM matches m
		JOIN trips mt ON mt.id = m.matched_trip_id
		JOIN trips t ON t.id = m.trip_id
		JOIN hosts h ON h.id = t.host_id
		WHERE mt.host_id = $1 AND m.status IN ($2, $3)
		ORDER BY m.created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, hostID, domain.MatchStatusPending, domain.MatchStatusAccepted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var received []*domain.ReceivedMatch
	for rows.Next() {
		var match domain.Match
		var trip domain.Trip
		var fromState, arrivalTime, airline, flightNumber sql.NullString
		var arrivalDate sql.NullTime
		var name, email string
		var phone, whatsapp sql.NullString

		if err := rows.Scan(
			&match.ID,
			&match.TripID,
			&match.MatchedTripID,
			&match.Status,
			&match.Consent,
			&match.CreatedAt,
			&match.UpdatedAt,
			&trip.ID,
			&trip.HostID,
			&trip.FromCountry,
			&fromState,
			&trip.FromCity,
			&trip.ToCountry,
			&trip.ToCity,
			&trip.TravelDate,
			&trip.DepartureTime,
			&arrivalDate,
			&arrivalTime,
			&airline,
			&flightNumber,
			&trip.Status,
			&trip.CreatedAt,
			&name,
			&email,
			&phone,
			&whatsapp,
		); err != nil {
			return nil, err
		}

		applyTripNulls(&trip, fromState, arrivalDate, arrivalTime, airline, flightNumber)

		rm := &domain.ReceivedMatch{
			Match:          &match,
			RequesterTrip:  &trip,
			RequesterName:  name,
			RequesterEmail: email,
		}
		if phone.Valid {
			rm.RequesterPhone = phone.String
		}
		if whatsapp.Valid {
			rm.RequesterWhatsapp = whatsapp.String
		}

		received = append(received, rm)
	}

	return received, rows.Err()
}

func scanMatchRow(row *sql.Row) (*domain.Match, error) {
	var match domain.Match

	err := row.Scan(
		&match.ID,
		&match.TripID,
		&match.MatchedTripID,
		&match.Status,
		&match.Consent,
		&match.CreatedAt,
		&match.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &match, nil
}

func scanMatchRows(rows *sql.Rows) ([]*domain.Match, error) {
	var matches []*domain.Match
	for rows.Next() {
		var match domain.Match
		if err := rows.Scan(
			&match.ID,
			&match.TripID,
			&match.MatchedTripID,
			&match.Status,
			&match.Consent,
			&match.CreatedAt,
			&match.UpdatedAt,
		); err != nil {
			return nil, err
		}
		matches = append(matches, &match)
	}

	return matches, rows.Err()
}

// Ensure MatchRepository implements repository.MatchRepository.
var _ repository.MatchRepository = (*MatchRepository)(nil)
