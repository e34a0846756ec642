package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"travelmatch/internal/domain"
	internalRedis "travelmatch/internal/redis"
	"travelmatch/internal/service"
)

// ──────────────────────────────────────────────
// ADMIN CASCADES
// ──────────────────────────────────────────────

type adminFixture struct {
	hosts      *MockHostRepository
	trips      *MockTripRepository
	matches    *MockMatchRepository
	cache      *MockCache
	notifier   *MockNotifier
	audit      *MockAuditLogger
	analytics  *MockAnalyticsSink
	dispatcher *service.Dispatcher
	svc        *service.AdminService
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		hosts:     NewMockHostRepository(),
		trips:     NewMockTripRepository(),
		matches:   NewMockMatchRepository(),
		cache:     NewMockCache(),
		notifier:  NewMockNotifier(),
		audit:     NewMockAuditLogger(),
		analytics: NewMockAnalyticsSink(),
	}

	f.hosts.AddHost(&domain.Host{
		ID:           "host-a",
		Name:         "Alice",
		Email:        "alice@example.com",
		Verification: domain.VerificationApproved,
	})
	f.hosts.AddHost(&domain.Host{
		ID:           "host-b",
		Name:         "Bob",
		Email:        "bob@example.com",
		Verification: domain.VerificationApproved,
	})

	f.trips.AddTrip(&domain.Trip{ID: "trip-a", HostID: "host-a", Status: domain.TripStatusActive})
	f.trips.AddTrip(&domain.Trip{ID: "trip-b", HostID: "host-b", Status: domain.TripStatusActive})

	log := newTestLogger()
	tx := NewMockTxRunner(f.hosts, f.trips, f.matches)
	f.dispatcher = service.NewDispatcher(f.notifier, f.audit, f.analytics, log, 16)
	f.dispatcher.Start()
	f.svc = service.NewAdminService(tx, f.hosts, f.cache, f.dispatcher, log)

	return f
}

func (f *adminFixture) drain() {
	f.dispatcher.Stop()
}

func (f *adminFixture) addMatch(id, tripID, matchedTripID string, status domain.MatchStatus) {
	f.matches.AddMatch(&domain.Match{
		ID:            id,
		TripID:        tripID,
		MatchedTripID: matchedTripID,
		Status:        status,
		Consent:       status == domain.MatchStatusAccepted,
	})
}

func TestAdminCancelTrip_CascadesToMatches(t *testing.T) {
	t.Parallel()

	f := newAdminFixture()

	f.addMatch("match-1", "trip-a", "trip-b", domain.MatchStatusAccepted)

	result, err := f.svc.CancelTrip(context.Background(), "trip-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Trip.Status != domain.TripStatusCancelled {
		t.Errorf("expected trip status %s, got %s", domain.TripStatusCancelled, result.Trip.Status)
	}
	if result.CancelledMatches != 1 {
		t.Errorf("expected 1 cancelled match, got %d", result.CancelledMatches)
	}

	if f.trips.GetTrip("trip-b").Status != domain.TripStatusCancelled {
		t.Error("trip-b not cancelled in store")
	}
	if f.matches.GetMatch("match-1").Status != domain.MatchStatusCancelled {
		t.Error("match-1 not cancelled in store")
	}

	// The counterpart trip stays untouched.
	if f.trips.GetTrip("trip-a").Status != domain.TripStatusActive {
		t.Error("trip-a must remain active")
	}

	f.drain()

	// Owner and counterpart each notified exactly once.
	notifications := f.notifier.Notifications()
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}
	seen := map[string]int{}
	for _, n := range notifications {
		seen[n.HostID]++
		if n.EventType != string(domain.EventTripCancelled) {
			t.Errorf("unexpected event type %s", n.EventType)
		}
	}
	if seen["host-a"] != 1 || seen["host-b"] != 1 {
		t.Errorf("expected one notification each for host-a and host-b, got %v", seen)
	}

	entries := f.audit.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Severity != domain.AuditSeverityWarning {
		t.Errorf("expected severity %s, got %s", domain.AuditSeverityWarning, entries[0].Severity)
	}
}

func TestAdminCancelTrip_AlreadyCancelledConflicts(t *testing.T) {
	t.Parallel()

	f := newAdminFixture()
	defer f.drain()

	if err := f.trips.UpdateStatus(context.Background(), "trip-b", domain.TripStatusCancelled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.CancelTrip(context.Background(), "trip-b")
	if !errors.Is(err, service.ErrTripAlreadyCancelled) {
		t.Errorf("expected ErrTripAlreadyCancelled, got %v", err)
	}
}

func TestAdminCancelTrip_UnknownTrip(t *testing.T) {
	t.Parallel()

	f := newAdminFixture()
	defer f.drain()

	_, err := f.svc.CancelTrip(context.Background(), "nonexistent")
	if !errors.Is(err, service.ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound, got %v", err)
	}
}

func TestAdminCancelTrip_DeduplicatesCounterpartNotifications(t *testing.T) {
	t.Parallel()

	f := newAdminFixture()

	// host-a has two trips, both matched against trip-b.
	f.trips.AddTrip(&domain.Trip{ID: "trip-a2", HostID: "host-a", Status: domain.TripStatusActive})
	f.addMatch("match-1", "trip-a", "trip-b", domain.MatchStatusPending)
	f.addMatch("match-2", "trip-a2", "trip-b", domain.MatchStatusAccepted)

	result, err := f.svc.CancelTrip(context.Background(), "trip-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CancelledMatches != 2 {
		t.Errorf("expected 2 cancelled matches, got %d", result.CancelledMatches)
	}

	f.drain()

	// host-a appears twice as counterpart but is notified once.
	notifications := f.notifier.Notifications()
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}
}

func TestAdminBlockHost_CancelsTripsAndMatches(t *testing.T) {
	t.Parallel()

	f := newAdminFixture()

	f.trips.AddTrip(&domain.Trip{ID: "trip-a2", HostID: "host-a", Status: domain.TripStatusActive})
	f.addMatch("match-1", "trip-a", "trip-b", domain.MatchStatusAccepted)
	f.addMatch("match-2", "trip-b", "trip-a2", domain.MatchStatusPending)

	result, err := f.svc.BlockHost(context.Background(), "host-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CancelledTrips != 2 {
		t.Errorf("expected 2 cancelled trips, got %d", result.CancelledTrips)
	}
	if result.CancelledMatches != 2 {
		t.Errorf("expected 2 cancelled matches, got %d", result.CancelledMatches)
	}

	if f.hosts.GetHost("host-a").Verification != domain.VerificationRejected {
		t.Error("host-a not rejected")
	}
	if f.trips.GetTrip("trip-a").Status != domain.TripStatusCancelled {
		t.Error("trip-a not cancelled")
	}
	if f.trips.GetTrip("trip-a2").Status != domain.TripStatusCancelled {
		t.Error("trip-a2 not cancelled")
	}
	if f.matches.GetMatch("match-1").Status != domain.MatchStatusCancelled {
		t.Error("match-1 not cancelled")
	}
	if f.matches.GetMatch("match-2").Status != domain.MatchStatusCancelled {
		t.Error("match-2 not cancelled")
	}

	// host-b's own trip survives the cascade.
	if f.trips.GetTrip("trip-b").Status != domain.TripStatusActive {
		t.Error("trip-b must remain active")
	}

	f.drain()

	notifications := f.notifier.Notifications()
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].HostID != "host-a" {
		t.Errorf("expected notification for host-a, got %s", notifications[0].HostID)
	}
	if notifications[0].EventType != string(domain.EventHostBlocked) {
		t.Errorf("unexpected event type %s", notifications[0].EventType)
	}

	entries := f.audit.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Severity != domain.AuditSeverityCritical {
		t.Errorf("expected severity %s, got %s", domain.AuditSeverityCritical, entries[0].Severity)
	}
}

func TestAdminBlockHost_InvalidatesCounterpartCaches(t *testing.T) {
	t.Parallel()

	f := newAdminFixture()
	defer f.drain()

	f.addMatch("match-1", "trip-b", "trip-a", domain.MatchStatusAccepted)

	ctx := context.Background()
	if err := f.cache.Set(ctx, internalRedis.HostTripsKey("host-b"), []byte("x"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.svc.BlockHost(ctx, "host-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.cache.Has(internalRedis.HostTripsKey("host-b")) {
		t.Error("counterpart cache not invalidated")
	}
}

func TestAdminBlockHost_UnknownHost(t *testing.T) {
	t.Parallel()

	f := newAdminFixture()
	defer f.drain()

	_, err := f.svc.BlockHost(context.Background(), "nonexistent")
	if !errors.Is(err, service.ErrHostNotFound) {
		t.Errorf("expected ErrHostNotFound, got %v", err)
	}
}

func TestAdminApproveHost(t *testing.T) {
	t.Parallel()

	f := newAdminFixture()
	defer f.drain()

	f.hosts.AddHost(&domain.Host{
		ID:           "host-c",
		Email:        "carol@example.com",
		Verification: domain.VerificationPending,
	})

	if err := f.svc.ApproveHost(context.Background(), "host-c"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.hosts.GetHost("host-c").Verification != domain.VerificationApproved {
		t.Error("host-c not approved")
	}

	if err := f.svc.ApproveHost(context.Background(), "nonexistent"); !errors.Is(err, service.ErrHostNotFound) {
		t.Errorf("expected ErrHostNotFound, got %v", err)
	}
}
