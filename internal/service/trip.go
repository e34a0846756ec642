package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travelmatch/internal/domain"
	internalRedis "travelmatch/internal/redis"
	"travelmatch/internal/repository"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100

	// Cached host reads are short-lived; invalidation on mutation is the
	// primary freshness mechanism, the TTL is a backstop.
	hostCacheTTL = 60 * time.Second
)

// TripService handles trip creation and the read paths.
type TripService struct {
	hostRepo   repository.HostRepository
	tripRepo   repository.TripRepository
	matchRepo  repository.MatchRepository
	cache      Cache
	dispatcher *Dispatcher
	log        *logrus.Logger
}

// NewTripService creates a new TripService.
func NewTripService(
	hostRepo repository.HostRepository,
	tripRepo repository.TripRepository,
	matchRepo repository.MatchRepository,
	cache Cache,
	dispatcher *Dispatcher,
	log *logrus.Logger,
) *TripService {
	return &TripService{
		hostRepo:   hostRepo,
		tripRepo:   tripRepo,
		matchRepo:  matchRepo,
		cache:      cache,
		dispatcher: dispatcher,
		log:        log,
	}
}

// CreateTripRequest contains the parameters for posting a trip.
type CreateTripRequest struct {
	HostID        string
	FromCountry   string
	FromState     string
	FromCity      string
	ToCountry     string
	ToCity        string
	TravelDate    time.Time
	DepartureTime string
	ArrivalDate   time.Time
	ArrivalTime   string
	Airline       string
	FlightNumber  string
}

// Create posts a new active trip for an approved host.
func (s *TripService) Create(ctx context.Context, req CreateTripRequest) (*domain.Trip, error) {
	if req.HostID == "" {
		return nil, ErrInvalidHostID
	}
	if err := validateTripDetails(req); err != nil {
		return nil, err
	}

	host, err := s.hostRepo.GetByID(ctx, req.HostID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHostNotFound
		}
		return nil, err
	}

	if host.Verification != domain.VerificationApproved {
		return nil, ErrHostNotApproved
	}

	now := time.Now()
	trip := &domain.Trip{
		ID:            uuid.New().String(),
		HostID:        req.HostID,
		FromCountry:   req.FromCountry,
		FromState:     req.FromState,
		FromCity:      req.FromCity,
		ToCountry:     req.ToCountry,
		ToCity:        req.ToCity,
		TravelDate:    req.TravelDate,
		DepartureTime: req.DepartureTime,
		ArrivalDate:   req.ArrivalDate,
		ArrivalTime:   req.ArrivalTime,
		Airline:       req.Airline,
		FlightNumber:  req.FlightNumber,
		Status:        domain.TripStatusActive,
		CreatedAt:     now,
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	if err := s.cache.DeleteByPrefix(ctx, internalRedis.HostPrefix(req.HostID)); err != nil {
		s.log.WithError(err).WithField("host_id", req.HostID).Warn("cache invalidation failed")
	}

	s.dispatcher.Dispatch(domain.Event{
		Type:        domain.EventTripCreated,
		ActorHostID: req.HostID,
		TripID:      trip.ID,
		OccurredAt:  now,
	})

	return trip, nil
}

// SearchTripsRequest contains the trip search filters.
type SearchTripsRequest struct {
	FromCountry string
	ToCountry   string
	TravelDate  time.Time
	Limit       int
	Offset      int
}

// Search returns active trips matching the exact filters, travel date
// ascending.
func (s *TripService) Search(ctx context.Context, req SearchTripsRequest) ([]*domain.Trip, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	return s.tripRepo.Search(ctx, repository.TripSearchFilter{
		FromCountry: req.FromCountry,
		ToCountry:   req.ToCountry,
		TravelDate:  req.TravelDate,
		Limit:       limit,
		Offset:      offset,
	})
}

// TripWithState is a trip annotated with its derived match state.
type TripWithState struct {
	Trip       domain.Trip       `json:"trip"`
	MatchState domain.MatchState `json:"match_state"`
}

// MyTrips returns all trips for a host annotated with the derived match
// state. Accepted takes precedence over pending. Read-through cached per
// host.
func (s *TripService) MyTrips(ctx context.Context, hostID string) ([]TripWithState, error) {
	if hostID == "" {
		return nil, ErrInvalidHostID
	}

	cacheKey := internalRedis.HostTripsKey(hostID)
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		var result []TripWithState
		if err := json.Unmarshal(cached, &result); err == nil {
			return result, nil
		}
	}

	trips, err := s.tripRepo.GetByHostID(ctx, hostID)
	if err != nil {
		return nil, err
	}

	tripIDs := make([]string, len(trips))
	for i, t := range trips {
		tripIDs[i] = t.ID
	}

	matches, err := s.matchRepo.GetByTripIDs(ctx, tripIDs)
	if err != nil {
		return nil, err
	}

	result := make([]TripWithState, len(trips))
	for i, t := range trips {
		result[i] = TripWithState{
			Trip:       *t,
			MatchState: deriveMatchState(t.ID, matches),
		}
	}

	s.cacheSet(ctx, cacheKey, result)

	return result, nil
}

// ReceivedMatchView is a received match request with privacy-gated contact
// details: requester phone/whatsapp/email are present only for an accepted
// match with consent.
type ReceivedMatchView struct {
	Match         domain.Match `json:"match"`
	RequesterTrip domain.Trip  `json:"requester_trip"`
	RequesterName string       `json:"requester_name"`
	Phone         *string      `json:"phone"`
	Whatsapp      *string      `json:"whatsapp"`
	Email         *string      `json:"email"`
}

// ReceivedRequests returns pending and accepted matches targeting the
// host's trips. Read-through cached per host.
func (s *TripService) ReceivedRequests(ctx context.Context, hostID string) ([]ReceivedMatchView, error) {
	if hostID == "" {
		return nil, ErrInvalidHostID
	}

	cacheKey := internalRedis.HostReceivedKey(hostID)
	if cached := s.cacheGet(ctx, cacheKey); cached != nil {
		var result []ReceivedMatchView
		if err := json.Unmarshal(cached, &result); err == nil {
			return result, nil
		}
	}

	received, err := s.matchRepo.ListReceivedByHost(ctx, hostID)
	if err != nil {
		return nil, err
	}

	result := make([]ReceivedMatchView, len(received))
	for i, rm := range received {
		view := ReceivedMatchView{
			Match:         *rm.Match,
			RequesterTrip: *rm.RequesterTrip,
			RequesterName: rm.RequesterName,
		}
		// The privacy gate: contact details flow only once both parties
		// have consented via acceptance.
		if rm.Match.Status == domain.MatchStatusAccepted && rm.Match.Consent {
			view.Phone = strPtr(rm.RequesterPhone)
			view.Whatsapp = strPtr(rm.RequesterWhatsapp)
			view.Email = strPtr(rm.RequesterEmail)
		}
		result[i] = view
	}

	s.cacheSet(ctx, cacheKey, result)

	return result, nil
}

func (s *TripService) cacheGet(ctx context.Context, key string) []byte {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
		return nil
	}
	return data
}

func (s *TripService) cacheSet(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, hostCacheTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func validateTripDetails(req CreateTripRequest) error {
	if req.FromCountry == "" || req.FromCity == "" {
		return ErrMissingOrigin
	}
	if req.ToCountry == "" || req.ToCity == "" {
		return ErrMissingDestination
	}
	if req.TravelDate.IsZero() {
		return ErrMissingTravelDate
	}
	if req.DepartureTime == "" {
		return ErrMissingDepartureTime
	}
	return nil
}

// deriveMatchState computes the annotation for one trip from all matches
// it participates in: connected beats pending beats none.
func deriveMatchState(tripID string, matches []*domain.Match) domain.MatchState {
	state := domain.MatchStateNone
	for _, m := range matches {
		if m.TripID != tripID && m.MatchedTripID != tripID {
			continue
		}
		switch m.Status {
		case domain.MatchStatusAccepted:
			return domain.MatchStateConnected
		case domain.MatchStatusPending:
			state = domain.MatchStatePending
		}
	}
	return state
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
