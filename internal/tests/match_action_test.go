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
// MATCH ACTION STATE MACHINE
// ──────────────────────────────────────────────

type matchFixture struct {
	hosts      *MockHostRepository
	trips      *MockTripRepository
	matches    *MockMatchRepository
	cache      *MockCache
	notifier   *MockNotifier
	audit      *MockAuditLogger
	analytics  *MockAnalyticsSink
	dispatcher *service.Dispatcher
	svc        *service.MatchService
}

// newMatchFixture wires a match service over in-memory repositories with
// two approved hosts: host-a owning trip-a, host-b owning trip-b.
func newMatchFixture() *matchFixture {
	f := &matchFixture{
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

	f.trips.AddTrip(&domain.Trip{
		ID:          "trip-a",
		HostID:      "host-a",
		FromCountry: "US",
		FromCity:    "New York",
		ToCountry:   "US",
		ToCity:      "Los Angeles",
		TravelDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:      domain.TripStatusActive,
	})
	f.trips.AddTrip(&domain.Trip{
		ID:          "trip-b",
		HostID:      "host-b",
		FromCountry: "US",
		FromCity:    "Los Angeles",
		ToCountry:   "US",
		ToCity:      "New York",
		TravelDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:      domain.TripStatusActive,
	})

	log := newTestLogger()
	tx := NewMockTxRunner(f.hosts, f.trips, f.matches)
	f.dispatcher = service.NewDispatcher(f.notifier, f.audit, f.analytics, log, 16)
	f.dispatcher.Start()
	f.svc = service.NewMatchService(tx, f.cache, f.dispatcher, log)

	return f
}

// drain stops the dispatcher, flushing all queued events.
func (f *matchFixture) drain() {
	f.dispatcher.Stop()
}

func (f *matchFixture) perform(actingHostID, tripID, matchedTripID string, action domain.MatchAction) (*service.MatchActionResult, error) {
	return f.svc.PerformAction(context.Background(), service.MatchActionRequest{
		ActingHostID:  actingHostID,
		TripID:        tripID,
		MatchedTripID: matchedTripID,
		Action:        action,
	})
}

func (f *matchFixture) seedMatch(status domain.MatchStatus, consent bool) *domain.Match {
	match := &domain.Match{
		ID:            "match-1",
		TripID:        "trip-a",
		MatchedTripID: "trip-b",
		Status:        status,
		Consent:       consent,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	f.matches.AddMatch(match)
	return match
}

func TestMatchRequest_CreatesPendingMatch(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()

	result, err := f.perform("host-a", "trip-a", "trip-b", domain.MatchActionRequest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Match.Status != domain.MatchStatusPending {
		t.Errorf("expected status %s, got %s", domain.MatchStatusPending, result.Match.Status)
	}
	if result.Match.Consent {
		t.Error("consent must not be set on request")
	}
	if result.WhatsappUnlocked {
		t.Error("whatsapp must not be unlocked on request")
	}

	stored := f.matches.GetMatchByPair("trip-a", "trip-b")
	if stored == nil {
		t.Fatal("match not persisted")
	}

	f.drain()

	notifications := f.notifier.Notifications()
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].HostID != "host-b" {
		t.Errorf("expected notification for host-b, got %s", notifications[0].HostID)
	}
	if notifications[0].EventType != string(domain.EventMatchRequested) {
		t.Errorf("unexpected event type %s", notifications[0].EventType)
	}

	// Requests are audited.
	entries := f.audit.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].ActorID != "host-a" {
		t.Errorf("expected audit actor host-a, got %s", entries[0].ActorID)
	}

	if len(f.analytics.Events()) != 1 {
		t.Errorf("expected 1 analytics event, got %d", len(f.analytics.Events()))
	}
}

func TestMatchRequest_SelfMatchRejected(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	_, err := f.perform("host-a", "trip-a", "trip-a", domain.MatchActionRequest)
	if !errors.Is(err, service.ErrSelfMatch) {
		t.Errorf("expected ErrSelfMatch, got %v", err)
	}
}

func TestMatchRequest_RequiresTripOwnership(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	// host-b does not own trip-a.
	_, err := f.perform("host-b", "trip-a", "trip-b", domain.MatchActionRequest)
	if !errors.Is(err, service.ErrNotTripOwner) {
		t.Errorf("expected ErrNotTripOwner, got %v", err)
	}
}

func TestMatchRequest_CannotTargetOwnTrip(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	f.trips.AddTrip(&domain.Trip{
		ID:     "trip-a2",
		HostID: "host-a",
		Status: domain.TripStatusActive,
	})

	_, err := f.perform("host-a", "trip-a", "trip-a2", domain.MatchActionRequest)
	if !errors.Is(err, service.ErrOwnTripTarget) {
		t.Errorf("expected ErrOwnTripTarget, got %v", err)
	}
}

func TestMatchRequest_InactiveTripRejected(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	if err := f.trips.UpdateStatus(context.Background(), "trip-b", domain.TripStatusCancelled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.perform("host-a", "trip-a", "trip-b", domain.MatchActionRequest)
	if !errors.Is(err, service.ErrTripNotActive) {
		t.Errorf("expected ErrTripNotActive, got %v", err)
	}
}

func TestMatchRequest_DuplicatePairConflicts(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	f.seedMatch(domain.MatchStatusPending, false)

	_, err := f.perform("host-a", "trip-a", "trip-b", domain.MatchActionRequest)
	if !errors.Is(err, service.ErrMatchAlreadyExists) {
		t.Errorf("expected ErrMatchAlreadyExists, got %v", err)
	}
}

func TestMatchRequest_UnknownTrip(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	_, err := f.perform("host-a", "trip-a", "nonexistent", domain.MatchActionRequest)
	if !errors.Is(err, service.ErrTripNotFound) {
		t.Errorf("expected ErrTripNotFound, got %v", err)
	}
}

func TestMatchAccept_SetsConsentAndUnlocksContact(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()

	f.seedMatch(domain.MatchStatusPending, false)

	result, err := f.perform("host-b", "trip-a", "trip-b", domain.MatchActionAccept)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Match.Status != domain.MatchStatusAccepted {
		t.Errorf("expected status %s, got %s", domain.MatchStatusAccepted, result.Match.Status)
	}
	if !result.Match.Consent {
		t.Error("consent must be set on accept")
	}
	if !result.WhatsappUnlocked {
		t.Error("whatsapp must be unlocked on accept")
	}

	stored := f.matches.GetMatch("match-1")
	if stored.Status != domain.MatchStatusAccepted || !stored.Consent {
		t.Errorf("stored match not updated: status=%s consent=%v", stored.Status, stored.Consent)
	}

	f.drain()

	// The requester is notified.
	notifications := f.notifier.Notifications()
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].HostID != "host-a" {
		t.Errorf("expected notification for host-a, got %s", notifications[0].HostID)
	}

	// Responses are analytics-only.
	if len(f.audit.Entries()) != 0 {
		t.Errorf("expected no audit entries, got %d", len(f.audit.Entries()))
	}
	if len(f.analytics.Events()) != 1 {
		t.Errorf("expected 1 analytics event, got %d", len(f.analytics.Events()))
	}
}

func TestMatchAccept_OnlyRecipientMayRespond(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	f.seedMatch(domain.MatchStatusPending, false)

	// host-a sent the request; it cannot accept its own request.
	_, err := f.perform("host-a", "trip-a", "trip-b", domain.MatchActionAccept)
	if !errors.Is(err, service.ErrNotMatchRecipient) {
		t.Errorf("expected ErrNotMatchRecipient, got %v", err)
	}
}

func TestMatchReject_LeavesConsentUnset(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	f.seedMatch(domain.MatchStatusPending, false)

	result, err := f.perform("host-b", "trip-a", "trip-b", domain.MatchActionReject)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Match.Status != domain.MatchStatusRejected {
		t.Errorf("expected status %s, got %s", domain.MatchStatusRejected, result.Match.Status)
	}
	if result.Match.Consent {
		t.Error("consent must not be set on reject")
	}
	if result.WhatsappUnlocked {
		t.Error("whatsapp must not be unlocked on reject")
	}
}

func TestMatchRespond_RequiresPendingState(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	f.seedMatch(domain.MatchStatusAccepted, true)

	_, err := f.perform("host-b", "trip-a", "trip-b", domain.MatchActionAccept)
	if !errors.Is(err, service.ErrMatchNotPending) {
		t.Errorf("expected ErrMatchNotPending, got %v", err)
	}

	_, err = f.perform("host-b", "trip-a", "trip-b", domain.MatchActionReject)
	if !errors.Is(err, service.ErrMatchNotPending) {
		t.Errorf("expected ErrMatchNotPending, got %v", err)
	}
}

func TestMatchRespond_MissingMatch(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	_, err := f.perform("host-b", "trip-a", "trip-b", domain.MatchActionAccept)
	if !errors.Is(err, service.ErrMatchNotFound) {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestMatchCancel_EitherPartyMayCancelAccepted(t *testing.T) {
	t.Parallel()

	for _, actor := range []string{"host-a", "host-b"} {
		actor := actor
		t.Run(actor, func(t *testing.T) {
			t.Parallel()

			f := newMatchFixture()
			defer f.drain()

			f.seedMatch(domain.MatchStatusAccepted, true)

			result, err := f.perform(actor, "trip-a", "trip-b", domain.MatchActionCancel)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Match.Status != domain.MatchStatusCancelled {
				t.Errorf("expected status %s, got %s", domain.MatchStatusCancelled, result.Match.Status)
			}
		})
	}
}

func TestMatchCancel_NotifiesOtherParty(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()

	f.seedMatch(domain.MatchStatusAccepted, true)

	if _, err := f.perform("host-a", "trip-a", "trip-b", domain.MatchActionCancel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.drain()

	notifications := f.notifier.Notifications()
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].HostID != "host-b" {
		t.Errorf("expected notification for host-b, got %s", notifications[0].HostID)
	}
}

func TestMatchCancel_RequiresAcceptedState(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	f.seedMatch(domain.MatchStatusPending, false)

	_, err := f.perform("host-a", "trip-a", "trip-b", domain.MatchActionCancel)
	if !errors.Is(err, service.ErrMatchNotAccepted) {
		t.Errorf("expected ErrMatchNotAccepted, got %v", err)
	}
}

func TestMatchCancel_OutsiderForbidden(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	f.hosts.AddHost(&domain.Host{
		ID:           "host-c",
		Email:        "carol@example.com",
		Verification: domain.VerificationApproved,
	})
	f.seedMatch(domain.MatchStatusAccepted, true)

	_, err := f.perform("host-c", "trip-a", "trip-b", domain.MatchActionCancel)
	if !errors.Is(err, service.ErrNotMatchParty) {
		t.Errorf("expected ErrNotMatchParty, got %v", err)
	}
}

func TestMatchAction_UnknownActionRejected(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	_, err := f.perform("host-a", "trip-a", "trip-b", domain.MatchAction("promote"))
	if !errors.Is(err, service.ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
}

func TestMatchAction_InvalidatesBothHostCaches(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()
	defer f.drain()

	ctx := context.Background()
	if err := f.cache.Set(ctx, internalRedis.HostTripsKey("host-a"), []byte("x"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.cache.Set(ctx, internalRedis.HostReceivedKey("host-b"), []byte("y"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.perform("host-a", "trip-a", "trip-b", domain.MatchActionRequest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.cache.Has(internalRedis.HostTripsKey("host-a")) {
		t.Error("host-a cache not invalidated")
	}
	if f.cache.Has(internalRedis.HostReceivedKey("host-b")) {
		t.Error("host-b cache not invalidated")
	}
}

func TestMatchAction_FailedActionDispatchesNothing(t *testing.T) {
	t.Parallel()

	f := newMatchFixture()

	f.seedMatch(domain.MatchStatusPending, false)

	if _, err := f.perform("host-a", "trip-a", "trip-b", domain.MatchActionRequest); err == nil {
		t.Fatal("expected error")
	}

	f.drain()

	if len(f.notifier.Notifications()) != 0 {
		t.Errorf("expected no notifications, got %d", len(f.notifier.Notifications()))
	}
	if len(f.analytics.Events()) != 0 {
		t.Errorf("expected no analytics events, got %d", len(f.analytics.Events()))
	}
}
