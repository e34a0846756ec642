package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelmatch/internal/domain"
	internalRedis "travelmatch/internal/redis"
	"travelmatch/internal/repository"
)

// MatchService is the single authority for match lifecycle mutations. Every
// action runs inside one transaction with the affected trip and match rows
// locked, so the authorization, existence and state checks all observe the
// same snapshot.
type MatchService struct {
	tx         repository.TxRunner
	cache      Cache
	dispatcher *Dispatcher
	log        *logrus.Logger
}

// NewMatchService creates a new MatchService.
func NewMatchService(tx repository.TxRunner, cache Cache, dispatcher *Dispatcher, log *logrus.Logger) *MatchService {
	return &MatchService{
		tx:         tx,
		cache:      cache,
		dispatcher: dispatcher,
		log:        log,
	}
}

// MatchActionRequest contains the parameters for a match lifecycle action.
type MatchActionRequest struct {
	ActingHostID  string
	TripID        string
	MatchedTripID string
	Action        domain.MatchAction
}

// MatchActionResult contains the outcome of a successful action.
type MatchActionResult struct {
	Match            *domain.Match
	WhatsappUnlocked bool
}

// PerformAction validates and applies a match lifecycle action, then
// dispatches the post-commit side effects.
func (s *MatchService) PerformAction(ctx context.Context, req MatchActionRequest) (*MatchActionResult, error) {
	if req.ActingHostID == "" {
		return nil, ErrInvalidHostID
	}
	if req.TripID == "" || req.MatchedTripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.TripID == req.MatchedTripID {
		return nil, ErrSelfMatch
	}

	var (
		result        MatchActionResult
		events        []domain.Event
		affectedHosts []string
	)

	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.TxRepos) error {
		trip, err := r.Trips.GetByIDForUpdate(ctx, req.TripID)
		if err != nil {
			return mapTripErr(err)
		}

		matchedTrip, err := r.Trips.GetByIDForUpdate(ctx, req.MatchedTripID)
		if err != nil {
			return mapTripErr(err)
		}

		affectedHosts = []string{trip.HostID, matchedTrip.HostID}

		switch req.Action {
		case domain.MatchActionRequest:
			return s.applyRequest(ctx, r, req, trip, matchedTrip, &result, &events)
		case domain.MatchActionAccept, domain.MatchActionReject:
			return s.applyResponse(ctx, r, req, trip, matchedTrip, &result, &events)
		case domain.MatchActionCancel:
			return s.applyCancel(ctx, r, req, trip, matchedTrip, &result, &events)
		default:
			return ErrInvalidAction
		}
	})
	if err != nil {
		return nil, err
	}

	// Committed. Side effects from here on are best-effort only.
	s.invalidateHostCaches(ctx, affectedHosts)
	s.dispatcher.Dispatch(events...)

	return &result, nil
}

func (s *MatchService) applyRequest(
	ctx context.Context,
	r repository.TxRepos,
	req MatchActionRequest,
	trip, matchedTrip *domain.Trip,
	result *MatchActionResult,
	events *[]domain.Event,
) error {
	if trip.HostID != req.ActingHostID {
		return ErrNotTripOwner
	}
	if matchedTrip.HostID == req.ActingHostID {
		return ErrOwnTripTarget
	}

	// Both trips must still be active; the row locks above make this check
	// race-free against a concurrent cascade cancellation.
	if trip.Status != domain.TripStatusActive || matchedTrip.Status != domain.TripStatusActive {
		return ErrTripNotActive
	}

	existing, err := r.Matches.GetByPairForUpdate(ctx, req.TripID, req.MatchedTripID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrMatchAlreadyExists
	}

	now := time.Now()
	match := &domain.Match{
		ID:            uuid.New().String(),
		TripID:        req.TripID,
		MatchedTripID: req.MatchedTripID,
		Status:        domain.MatchStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := r.Matches.Create(ctx, match); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrMatchAlreadyExists
		}
		return err
	}

	recipient, err := r.Hosts.GetByID(ctx, matchedTrip.HostID)
	if err != nil {
		return err
	}

	result.Match = match
	*events = append(*events, domain.Event{
		Type:          domain.EventMatchRequested,
		ActorHostID:   req.ActingHostID,
		TripID:        req.TripID,
		MatchedTripID: req.MatchedTripID,
		MatchID:       match.ID,
		Title:         "New match request",
		Message:       fmt.Sprintf("A traveller going %s to %s wants to match with your trip", trip.FromCity, trip.ToCity),
		Recipients:    []domain.Recipient{{HostID: recipient.ID, Email: recipient.Email}},
		OccurredAt:    now,
	})

	return nil
}

func (s *MatchService) applyResponse(
	ctx context.Context,
	r repository.TxRepos,
	req MatchActionRequest,
	trip, matchedTrip *domain.Trip,
	result *MatchActionResult,
	events *[]domain.Event,
) error {
	match, err := r.Matches.GetByPairForUpdate(ctx, req.TripID, req.MatchedTripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMatchNotFound
		}
		return err
	}

	// Only the owner of the receiving trip may respond.
	if matchedTrip.HostID != req.ActingHostID {
		return ErrNotMatchRecipient
	}

	if match.Status != domain.MatchStatusPending {
		return ErrMatchNotPending
	}

	now := time.Now()
	match.UpdatedAt = now

	var (
		eventType domain.EventType
		title     string
		message   string
	)

	if req.Action == domain.MatchActionAccept {
		match.Status = domain.MatchStatusAccepted
		match.Consent = true
		result.WhatsappUnlocked = true
		eventType = domain.EventMatchAccepted
		title = "Match accepted"
		message = "Your match request was accepted. Contact details are now shared."
	} else {
		match.Status = domain.MatchStatusRejected
		eventType = domain.EventMatchRejected
		title = "Match declined"
		message = "Your match request was declined."
	}

	if err := r.Matches.Update(ctx, match); err != nil {
		return err
	}

	// Notify the requester.
	requester, err := r.Hosts.GetByID(ctx, trip.HostID)
	if err != nil {
		return err
	}

	result.Match = match
	*events = append(*events, domain.Event{
		Type:          eventType,
		ActorHostID:   req.ActingHostID,
		TripID:        req.TripID,
		MatchedTripID: req.MatchedTripID,
		MatchID:       match.ID,
		Title:         title,
		Message:       message,
		Recipients:    []domain.Recipient{{HostID: requester.ID, Email: requester.Email}},
		OccurredAt:    now,
	})

	return nil
}

func (s *MatchService) applyCancel(
	ctx context.Context,
	r repository.TxRepos,
	req MatchActionRequest,
	trip, matchedTrip *domain.Trip,
	result *MatchActionResult,
	events *[]domain.Event,
) error {
	match, err := r.Matches.GetByPairForUpdate(ctx, req.TripID, req.MatchedTripID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMatchNotFound
		}
		return err
	}

	// Either party may cancel an accepted match.
	if trip.HostID != req.ActingHostID && matchedTrip.HostID != req.ActingHostID {
		return ErrNotMatchParty
	}

	if match.Status != domain.MatchStatusAccepted {
		return ErrMatchNotAccepted
	}

	now := time.Now()
	match.Status = domain.MatchStatusCancelled
	match.UpdatedAt = now

	if err := r.Matches.Update(ctx, match); err != nil {
		return err
	}

	// Notify the other party.
	otherHostID := trip.HostID
	if req.ActingHostID == trip.HostID {
		otherHostID = matchedTrip.HostID
	}

	other, err := r.Hosts.GetByID(ctx, otherHostID)
	if err != nil {
		return err
	}

	result.Match = match
	*events = append(*events, domain.Event{
		Type:          domain.EventMatchCancelled,
		ActorHostID:   req.ActingHostID,
		TripID:        req.TripID,
		MatchedTripID: req.MatchedTripID,
		MatchID:       match.ID,
		Title:         "Match cancelled",
		Message:       "Your travel match was cancelled by the other party.",
		Recipients:    []domain.Recipient{{HostID: other.ID, Email: other.Email}},
		OccurredAt:    now,
	})

	return nil
}

// invalidateHostCaches drops the cached reads of every affected host.
// Failures are logged; the mutation already committed.
func (s *MatchService) invalidateHostCaches(ctx context.Context, hostIDs []string) {
	for _, hostID := range hostIDs {
		if hostID == "" {
			continue
		}
		if err := s.cache.DeleteByPrefix(ctx, internalRedis.HostPrefix(hostID)); err != nil {
			s.log.WithError(err).WithField("host_id", hostID).Warn("cache invalidation failed")
		}
	}
}

func mapTripErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTripNotFound
	}
	return err
}
