package domain

import "time"

// AuditSeverity classifies an audit entry.
type AuditSeverity string

const (
	AuditSeverityInfo     AuditSeverity = "INFO"
	AuditSeverityWarning  AuditSeverity = "WARNING"
	AuditSeverityCritical AuditSeverity = "CRITICAL"
)

// AuditEntry is an append-only record of a performed action.
type AuditEntry struct {
	ID        string
	Action    string
	ActorID   string
	TargetID  string
	Severity  AuditSeverity
	RequestID string
	Metadata  map[string]string
	CreatedAt time.Time
}

// AnalyticsEvent is an append-only usage event.
type AnalyticsEvent struct {
	ID        string
	EventType string
	ActorID   string
	EntityID  string
	Location  string
	Metadata  map[string]string
	CreatedAt time.Time
}
