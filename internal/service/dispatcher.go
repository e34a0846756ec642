package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"travelmatch/internal/domain"
)

const dispatchTimeout = 5 * time.Second

// Dispatcher consumes domain events emitted after committed transactions
// and fans them out to the notifier, audit log and analytics sink. Every
// failure is logged and swallowed; a committed operation never fails
// because a side effect did.
type Dispatcher struct {
	events    chan domain.Event
	notifier  Notifier
	audit     AuditLogger
	analytics AnalyticsSink
	log       *logrus.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given queue capacity.
func NewDispatcher(notifier Notifier, audit AuditLogger, analytics AnalyticsSink, log *logrus.Logger, capacity int) *Dispatcher {
	if capacity <= 0 {
		capacity = 256
	}
	return &Dispatcher{
		events:    make(chan domain.Event, capacity),
		notifier:  notifier,
		audit:     audit,
		analytics: analytics,
		log:       log,
	}
}

// Start launches the consumer goroutine.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for evt := range d.events {
			d.handle(evt)
		}
	}()
}

// Stop closes the queue and waits for in-flight events to drain.
func (d *Dispatcher) Stop() {
	close(d.events)
	d.wg.Wait()
}

// Dispatch enqueues events without blocking the caller. When the queue is
// full the event is dropped with a warning; callers have already committed
// and must not be held up.
func (d *Dispatcher) Dispatch(events ...domain.Event) {
	for _, evt := range events {
		select {
		case d.events <- evt:
		default:
			d.log.WithField("event", evt.Type).Warn("dispatcher queue full, dropping event")
		}
	}
}

func (d *Dispatcher) handle(evt domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	metadata := eventMetadata(evt)

	for _, rcpt := range evt.Recipients {
		if err := d.notifier.Notify(ctx, rcpt.HostID, rcpt.Email, string(evt.Type), evt.Title, evt.Message, metadata); err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"event":   evt.Type,
				"host_id": rcpt.HostID,
			}).Warn("notify failed")
		}
	}

	if auditable(evt.Type) {
		entry := &domain.AuditEntry{
			Action:    string(evt.Type),
			ActorID:   evt.ActorHostID,
			TargetID:  auditTarget(evt),
			Severity:  auditSeverity(evt.Type),
			Metadata:  metadata,
			CreatedAt: evt.OccurredAt,
		}
		if err := d.audit.Record(ctx, entry); err != nil {
			d.log.WithError(err).WithField("event", evt.Type).Warn("audit record failed")
		}
	}

	analyticsEvent := &domain.AnalyticsEvent{
		EventType: string(evt.Type),
		ActorID:   evt.ActorHostID,
		EntityID:  auditTarget(evt),
		Metadata:  metadata,
		CreatedAt: evt.OccurredAt,
	}
	if err := d.analytics.Record(ctx, analyticsEvent); err != nil {
		d.log.WithError(err).WithField("event", evt.Type).Warn("analytics record failed")
	}
}

// auditable reports whether the event type lands in the audit log. Match
// requests and administrative cascades are audited; routine responses only
// hit analytics.
func auditable(t domain.EventType) bool {
	switch t {
	case domain.EventMatchRequested, domain.EventTripCancelled, domain.EventHostBlocked:
		return true
	}
	return false
}

func auditSeverity(t domain.EventType) domain.AuditSeverity {
	switch t {
	case domain.EventHostBlocked:
		return domain.AuditSeverityCritical
	case domain.EventTripCancelled:
		return domain.AuditSeverityWarning
	}
	return domain.AuditSeverityInfo
}

func auditTarget(evt domain.Event) string {
	switch {
	case evt.MatchID != "":
		return evt.MatchID
	case evt.TripID != "":
		return evt.TripID
	}
	return evt.HostID
}

func eventMetadata(evt domain.Event) map[string]string {
	metadata := make(map[string]string, 4)
	if evt.TripID != "" {
		metadata["trip_id"] = evt.TripID
	}
	if evt.MatchedTripID != "" {
		metadata["matched_trip_id"] = evt.MatchedTripID
	}
	if evt.MatchID != "" {
		metadata["match_id"] = evt.MatchID
	}
	if evt.HostID != "" {
		metadata["host_id"] = evt.HostID
	}
	return metadata
}
