package tests

import (
	"context"
	"testing"
	"time"

	"travelmatch/internal/domain"
	"travelmatch/internal/service"
)

// ──────────────────────────────────────────────
// END TO END: REQUEST → ACCEPT → ADMIN CANCEL
// ──────────────────────────────────────────────

func TestMatchFlow_EndToEnd(t *testing.T) {
	t.Parallel()

	hosts := NewMockHostRepository()
	trips := NewMockTripRepository()
	matches := NewMockMatchRepository()
	cache := NewMockCache()
	notifier := NewMockNotifier()
	audit := NewMockAuditLogger()
	analytics := NewMockAnalyticsSink()
	log := newTestLogger()

	tx := NewMockTxRunner(hosts, trips, matches)
	dispatcher := service.NewDispatcher(notifier, audit, analytics, log, 32)
	dispatcher.Start()

	tripSvc := service.NewTripService(hosts, trips, matches, cache, dispatcher, log)
	matchSvc := service.NewMatchService(tx, cache, dispatcher, log)
	adminSvc := service.NewAdminService(tx, hosts, cache, dispatcher, log)

	hosts.AddHost(&domain.Host{
		ID:           "host-a",
		Name:         "Alice",
		Email:        "alice@example.com",
		Phone:        "+12125550100",
		Whatsapp:     "+12125550100",
		Verification: domain.VerificationApproved,
	})
	hosts.AddHost(&domain.Host{
		ID:           "host-b",
		Name:         "Bob",
		Email:        "bob@example.com",
		Verification: domain.VerificationApproved,
	})

	ctx := context.Background()
	travelDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// Host A posts NYC to LA, host B posts the return leg.
	trip1, err := tripSvc.Create(ctx, service.CreateTripRequest{
		HostID:        "host-a",
		FromCountry:   "US",
		FromCity:      "New York",
		ToCountry:     "US",
		ToCity:        "Los Angeles",
		TravelDate:    travelDate,
		DepartureTime: "09:00",
	})
	if err != nil {
		t.Fatalf("create trip 1: %v", err)
	}

	trip2, err := tripSvc.Create(ctx, service.CreateTripRequest{
		HostID:        "host-b",
		FromCountry:   "US",
		FromCity:      "Los Angeles",
		ToCountry:     "US",
		ToCity:        "New York",
		TravelDate:    travelDate,
		DepartureTime: "11:00",
	})
	if err != nil {
		t.Fatalf("create trip 2: %v", err)
	}

	// A requests a match against B's trip.
	requested, err := matchSvc.PerformAction(ctx, service.MatchActionRequest{
		ActingHostID:  "host-a",
		TripID:        trip1.ID,
		MatchedTripID: trip2.ID,
		Action:        domain.MatchActionRequest,
	})
	if err != nil {
		t.Fatalf("request match: %v", err)
	}
	if requested.Match.Status != domain.MatchStatusPending {
		t.Fatalf("expected pending match, got %s", requested.Match.Status)
	}

	// B sees the request with A's contact hidden. The joined read model
	// shares the live match row, so acceptance below flips the gate.
	stored := matches.GetMatchByPair(trip1.ID, trip2.ID)
	matches.AddReceived("host-b", &domain.ReceivedMatch{
		Match:             stored,
		RequesterTrip:     trip1,
		RequesterName:     "Alice",
		RequesterEmail:    "alice@example.com",
		RequesterPhone:    "+12125550100",
		RequesterWhatsapp: "+12125550100",
	})

	received, err := tripSvc.ReceivedRequests(ctx, "host-b")
	if err != nil {
		t.Fatalf("received requests: %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("expected 1 received request, got %d", len(received))
	}
	if received[0].Phone != nil {
		t.Error("contact fields must be hidden before acceptance")
	}

	// B accepts: consent set, contact unlocked.
	accepted, err := matchSvc.PerformAction(ctx, service.MatchActionRequest{
		ActingHostID:  "host-b",
		TripID:        trip1.ID,
		MatchedTripID: trip2.ID,
		Action:        domain.MatchActionAccept,
	})
	if err != nil {
		t.Fatalf("accept match: %v", err)
	}
	if accepted.Match.Status != domain.MatchStatusAccepted || !accepted.Match.Consent {
		t.Fatalf("expected accepted match with consent, got %+v", accepted.Match)
	}
	if !accepted.WhatsappUnlocked {
		t.Error("accept response must unlock whatsapp")
	}

	// Acceptance invalidated B's cache; the refetched view exposes A's
	// contact fields.
	received, err = tripSvc.ReceivedRequests(ctx, "host-b")
	if err != nil {
		t.Fatalf("received requests after accept: %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("expected 1 received request, got %d", len(received))
	}
	if received[0].Phone == nil || *received[0].Phone != "+12125550100" {
		t.Error("accepted match must expose requester phone")
	}
	if received[0].Whatsapp == nil || received[0].Email == nil {
		t.Error("accepted match must expose requester whatsapp and email")
	}

	// A's trip reports connected.
	mine, err := tripSvc.MyTrips(ctx, "host-a")
	if err != nil {
		t.Fatalf("my trips: %v", err)
	}
	if len(mine) != 1 || mine[0].MatchState != domain.MatchStateConnected {
		t.Fatalf("expected connected trip for host-a, got %+v", mine)
	}

	// Admin cancels B's trip: the match cascades to cancelled.
	cancelResult, err := adminSvc.CancelTrip(ctx, trip2.ID)
	if err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if cancelResult.CancelledMatches != 1 {
		t.Errorf("expected 1 cancelled match, got %d", cancelResult.CancelledMatches)
	}
	if trips.GetTrip(trip2.ID).Status != domain.TripStatusCancelled {
		t.Error("trip 2 not cancelled")
	}
	if stored.Status != domain.MatchStatusCancelled {
		t.Errorf("expected cancelled match, got %s", stored.Status)
	}

	dispatcher.Stop()

	// A was notified exactly once about the cascade.
	var cascadeToA int
	for _, n := range notifier.Notifications() {
		if n.EventType == string(domain.EventTripCancelled) && n.HostID == "host-a" {
			cascadeToA++
		}
	}
	if cascadeToA != 1 {
		t.Errorf("expected exactly 1 cascade notification for host-a, got %d", cascadeToA)
	}
}
