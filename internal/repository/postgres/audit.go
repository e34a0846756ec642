package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"travelmatch/internal/domain"
)

// AuditLogRepository appends audit entries to PostgreSQL. Audit rows are
// never updated or deleted.
type AuditLogRepository struct {
	q Querier
}

// NewAuditLogRepository creates a new PostgreSQL audit log repository.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{q: db}
}

// Record appends an audit entry.
func (r *AuditLogRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO audit_logs (id, action, actor_id, target_id, severity, request_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return err
	}

	id := entry.ID
	if id == "" {
		id = uuid.New().String()
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.q.ExecContext(ctx, query,
		id,
		entry.Action,
		entry.ActorID,
		nullString(entry.TargetID),
		entry.Severity,
		nullString(entry.RequestID),
		metadata,
		createdAt,
	)

	return err
}

// AnalyticsRepository appends analytics events to PostgreSQL.
type AnalyticsRepository struct {
	q Querier
}

// NewAnalyticsRepository creates a new PostgreSQL analytics repository.
func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{q: db}
}

// Record appends an analytics event.
func (r *AnalyticsRepository) Record(ctx context.Context, event *domain.AnalyticsEvent) error {
	query := `
		INSERT INTO analytics_events (id, event_type, actor_id, entity_id, location, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return err
	}

	id := event.ID
	if id == "" {
		id = uuid.New().String()
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.q.ExecContext(ctx, query,
		id,
		event.EventType,
		event.ActorID,
		nullString(event.EntityID),
		nullString(event.Location),
		metadata,
		createdAt,
	)

	return err
}
