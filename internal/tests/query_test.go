package tests

import (
	"context"
	"testing"

	"travelmatch/internal/domain"
	internalRedis "travelmatch/internal/redis"
)

// ──────────────────────────────────────────────
// QUERY SURFACE
// ──────────────────────────────────────────────

func TestMyTrips_MatchStatePrecedence(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	defer f.drain()

	f.trips.AddTrip(&domain.Trip{ID: "trip-1", HostID: "host-a", Status: domain.TripStatusActive})
	f.trips.AddTrip(&domain.Trip{ID: "trip-2", HostID: "host-a", Status: domain.TripStatusActive})
	f.trips.AddTrip(&domain.Trip{ID: "trip-3", HostID: "host-a", Status: domain.TripStatusActive})

	// trip-1 has both an accepted and a pending match: accepted wins.
	f.matches.AddMatch(&domain.Match{ID: "m1", TripID: "trip-1", MatchedTripID: "other-1", Status: domain.MatchStatusAccepted})
	f.matches.AddMatch(&domain.Match{ID: "m2", TripID: "other-2", MatchedTripID: "trip-1", Status: domain.MatchStatusPending})

	// trip-2 has a pending match as receiver.
	f.matches.AddMatch(&domain.Match{ID: "m3", TripID: "other-3", MatchedTripID: "trip-2", Status: domain.MatchStatusPending})

	// trip-3 has only a rejected match, which counts as none.
	f.matches.AddMatch(&domain.Match{ID: "m4", TripID: "trip-3", MatchedTripID: "other-4", Status: domain.MatchStatusRejected})

	result, err := f.svc.MyTrips(context.Background(), "host-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("expected 3 trips, got %d", len(result))
	}

	states := make(map[string]domain.MatchState, len(result))
	for _, tw := range result {
		states[tw.Trip.ID] = tw.MatchState
	}

	if states["trip-1"] != domain.MatchStateConnected {
		t.Errorf("trip-1: expected %s, got %s", domain.MatchStateConnected, states["trip-1"])
	}
	if states["trip-2"] != domain.MatchStatePending {
		t.Errorf("trip-2: expected %s, got %s", domain.MatchStatePending, states["trip-2"])
	}
	if states["trip-3"] != domain.MatchStateNone {
		t.Errorf("trip-3: expected %s, got %s", domain.MatchStateNone, states["trip-3"])
	}
}

func TestMyTrips_ReadThroughCache(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	defer f.drain()

	f.trips.AddTrip(&domain.Trip{ID: "trip-1", HostID: "host-a", Status: domain.TripStatusActive})

	ctx := context.Background()
	first, err := f.svc.MyTrips(ctx, "host-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(first))
	}

	if !f.cache.Has(internalRedis.HostTripsKey("host-a")) {
		t.Fatal("result not cached")
	}

	// A trip added behind the cache is not visible until invalidation.
	f.trips.AddTrip(&domain.Trip{ID: "trip-2", HostID: "host-a", Status: domain.TripStatusActive})

	second, err := f.svc.MyTrips(ctx, "host-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 1 {
		t.Errorf("expected cached result with 1 trip, got %d", len(second))
	}
}

func TestReceivedRequests_PrivacyGate(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	defer f.drain()

	requesterTrip := &domain.Trip{ID: "trip-r", HostID: "host-b", Status: domain.TripStatusActive}

	// Pending request: contact fields stay hidden.
	f.matches.AddReceived("host-a", &domain.ReceivedMatch{
		Match:             &domain.Match{ID: "m1", TripID: "trip-r", MatchedTripID: "trip-1", Status: domain.MatchStatusPending},
		RequesterTrip:     requesterTrip,
		RequesterName:     "Bob",
		RequesterEmail:    "bob@example.com",
		RequesterPhone:    "+15550100",
		RequesterWhatsapp: "+15550100",
	})

	// Accepted with consent: contact fields are shared.
	f.matches.AddReceived("host-a", &domain.ReceivedMatch{
		Match:             &domain.Match{ID: "m2", TripID: "trip-r2", MatchedTripID: "trip-2", Status: domain.MatchStatusAccepted, Consent: true},
		RequesterTrip:     requesterTrip,
		RequesterName:     "Bob",
		RequesterEmail:    "bob@example.com",
		RequesterPhone:    "+15550100",
		RequesterWhatsapp: "+15550100",
	})

	result, err := f.svc.ReceivedRequests(context.Background(), "host-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 received matches, got %d", len(result))
	}

	for _, view := range result {
		switch view.Match.ID {
		case "m1":
			if view.Phone != nil || view.Whatsapp != nil || view.Email != nil {
				t.Error("pending match must not expose contact fields")
			}
		case "m2":
			if view.Phone == nil || *view.Phone != "+15550100" {
				t.Error("accepted match must expose phone")
			}
			if view.Whatsapp == nil || view.Email == nil {
				t.Error("accepted match must expose whatsapp and email")
			}
		default:
			t.Errorf("unexpected match %s", view.Match.ID)
		}
		if view.RequesterName != "Bob" {
			t.Errorf("requester name always visible, got %q", view.RequesterName)
		}
	}
}

func TestReceivedRequests_AcceptedWithoutConsentStaysHidden(t *testing.T) {
	t.Parallel()

	f := newTripFixture()
	defer f.drain()

	f.matches.AddReceived("host-a", &domain.ReceivedMatch{
		Match:          &domain.Match{ID: "m1", TripID: "trip-r", MatchedTripID: "trip-1", Status: domain.MatchStatusAccepted, Consent: false},
		RequesterTrip:  &domain.Trip{ID: "trip-r", HostID: "host-b"},
		RequesterName:  "Bob",
		RequesterEmail: "bob@example.com",
	})

	result, err := f.svc.ReceivedRequests(context.Background(), "host-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("expected 1 received match, got %d", len(result))
	}
	if result[0].Email != nil {
		t.Error("accepted match without consent must not expose contact fields")
	}
}
