package service

import (
	"context"
	"time"

	"travelmatch/internal/domain"
)

// Cache is the injected read-through cache. Implementations are derived
// state only; a nil value from Get is a miss and callers fall back to the
// store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Notifier delivers a notification to a host. Best-effort: failures are
// logged by the caller, never propagated.
type Notifier interface {
	Notify(ctx context.Context, hostID, email, eventType, title, message string, metadata map[string]string) error
}

// AuditLogger appends audit entries. Best-effort, append-only.
type AuditLogger interface {
	Record(ctx context.Context, entry *domain.AuditEntry) error
}

// AnalyticsSink appends analytics events. Best-effort, append-only.
type AnalyticsSink interface {
	Record(ctx context.Context, event *domain.AnalyticsEvent) error
}
