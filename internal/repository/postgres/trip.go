package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"travelmatch/internal/domain"
	"travelmatch/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, host_id, from_country, from_state, from_city, to_country, to_city, travel_date, departure_time, arrival_date, arrival_time, airline, flight_number, status, created_at`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	var arrivalDate sql.NullTime
	if !trip.ArrivalDate.IsZero() {
		arrivalDate = sql.NullTime{Time: trip.ArrivalDate, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.HostID,
		trip.FromCountry,
		trip.FromState,
		trip.FromCity,
		trip.ToCountry,
		trip.ToCity,
		trip.TravelDate,
		trip.DepartureTime,
		arrivalDate,
		nullString(trip.ArrivalTime),
		nullString(trip.Airline),
		nullString(trip.FlightNumber),
		trip.Status,
		trip.CreatedAt,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	return scanTripRow(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDForUpdate retrieves a trip by ID with a row lock.
func (r *TripRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 FOR UPDATE`
	return scanTripRow(r.q.QueryRowContext(ctx, query, id))
}

// GetByIDs retrieves trips for the given IDs.
func (r *TripRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Trip, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = ANY($1)`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTripRows(rows)
}

// GetByHostID retrieves all trips owned by a host, newest travel date first.
func (r *TripRepository) GetByHostID(ctx context.Context, hostID string) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE host_id = $1 ORDER BY travel_date DESC, created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTripRows(rows)
}

// Search retrieves active trips matching the filter, travel date ascending.
func (r *TripRepository) Search(ctx context.Context, filter repository.TripSearchFilter) ([]*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE status = $1 AND from_country = $2 AND to_country = $3 AND travel_date = $4
		ORDER BY travel_date ASC, created_at ASC
		LIMIT $5 OFFSET $6
	`

	rows, err := r.q.QueryContext(ctx, query,
		domain.TripStatusActive,
		filter.FromCountry,
		filter.ToCountry,
		filter.TravelDate,
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTripRows(rows)
}

// UpdateStatus updates the status of a trip.
func (r *TripRepository) UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error {
	query := `UPDATE trips SET status = $1 WHERE id = $2`

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

// LockByHostID locks all trip rows owned by a host and returns their IDs.
func (r *TripRepository) LockByHostID(ctx context.Context, hostID string) ([]string, error) {
	query := `SELECT id FROM trips WHERE host_id = $1 FOR UPDATE`

	rows, err := r.q.QueryContext(ctx, query, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CancelByHostID sets every non-cancelled trip owned by the host to
// CANCELLED.
func (r *TripRepository) CancelByHostID(ctx context.Context, hostID string) (int64, error) {
	query := `UPDATE trips SET status = $1 WHERE host_id = $2 AND status <> $1`

	result, err := r.q.ExecContext(ctx, query, domain.TripStatusCancelled, hostID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func scanTripRow(row *sql.Row) (*domain.Trip, error) {
	var trip domain.Trip
	var fromState, arrivalTime, airline, flightNumber sql.NullString
	var arrivalDate sql.NullTime

	err := row.Scan(
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
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	applyTripNulls(&trip, fromState, arrivalDate, arrivalTime, airline, flightNumber)

	return &trip, nil
}

func scanTripRows(rows *sql.Rows) ([]*domain.Trip, error) {
	var trips []*domain.Trip
	for rows.Next() {
		var trip domain.Trip
		var fromState, arrivalTime, airline, flightNumber sql.NullString
		var arrivalDate sql.NullTime

		if err := rows.Scan(
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
		); err != nil {
			return nil, err
		}

		applyTripNulls(&trip, fromState, arrivalDate, arrivalTime, airline, flightNumber)

		trips = append(trips, &trip)
	}

	return trips, rows.Err()
}

func applyTripNulls(trip *domain.Trip, fromState sql.NullString, arrivalDate sql.NullTime, arrivalTime, airline, flightNumber sql.NullString) {
	if fromState.Valid {
		trip.FromState = fromState.String
	}
	if arrivalDate.Valid {
		trip.ArrivalDate = arrivalDate.Time
	}
	if arrivalTime.Valid {
		trip.ArrivalTime = arrivalTime.String
	}
	if airline.Valid {
		trip.Airline = airline.String
	}
	if flightNumber.Valid {
		trip.FlightNumber = flightNumber.String
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
