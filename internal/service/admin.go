package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"travelmatch/internal/domain"
	internalRedis "travelmatch/internal/redis"
	"travelmatch/internal/repository"
)

// AdminService performs administrative cascades over trips, matches and
// hosts. Every cascade locks the full affected row set up front so
// concurrent actions cannot interleave partial updates.
type AdminService struct {
	tx         repository.TxRunner
	hostRepo   repository.HostRepository
	cache      Cache
	dispatcher *Dispatcher
	log        *logrus.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	tx repository.TxRunner,
	hostRepo repository.HostRepository,
	cache Cache,
	dispatcher *Dispatcher,
	log *logrus.Logger,
) *AdminService {
	return &AdminService{
		tx:         tx,
		hostRepo:   hostRepo,
		cache:      cache,
		dispatcher: dispatcher,
		log:        log,
	}
}

// CancelTripResult reports the effect of an administrative trip
// cancellation.
type CancelTripResult struct {
	Trip             *domain.Trip
	CancelledMatches int64
}

// CancelTrip cancels a trip and every non-cancelled match referencing it,
// in one transaction. The trip owner and each distinct counterpart host
// are notified exactly once after commit.
func (s *AdminService) CancelTrip(ctx context.Context, tripID string) (*CancelTripResult, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	var (
		result     CancelTripResult
		recipients []domain.Recipient
		hostIDs    []string
	)

	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.TxRepos) error {
		trip, err := r.Trips.GetByIDForUpdate(ctx, tripID)
		if err != nil {
			return mapTripErr(err)
		}

		if trip.Status == domain.TripStatusCancelled {
			return ErrTripAlreadyCancelled
		}

		// Lock every referencing match before any write.
		matches, err := r.Matches.LockByTripID(ctx, tripID)
		if err != nil {
			return err
		}

		if err := r.Trips.UpdateStatus(ctx, tripID, domain.TripStatusCancelled); err != nil {
			return err
		}

		cancelled, err := r.Matches.CancelByTripIDs(ctx, []string{tripID})
		if err != nil {
			return err
		}

		// Resolve counterpart hosts for notification, deduplicated by host
		// id.
		counterpartTripIDs := make([]string, 0, len(matches))
		for _, m := range matches {
			other := m.MatchedTripID
			if other == tripID {
				other = m.TripID
			}
			counterpartTripIDs = append(counterpartTripIDs, other)
		}

		counterparts, err := r.Trips.GetByIDs(ctx, counterpartTripIDs)
		if err != nil {
			return err
		}

		seen := map[string]bool{trip.HostID: true}
		hostIDs = []string{trip.HostID}

		owner, err := r.Hosts.GetByID(ctx, trip.HostID)
		if err != nil {
			return err
		}
		recipients = []domain.Recipient{{HostID: owner.ID, Email: owner.Email}}

		for _, ct := range counterparts {
			if seen[ct.HostID] {
				continue
			}
			seen[ct.HostID] = true
			hostIDs = append(hostIDs, ct.HostID)

			host, err := r.Hosts.GetByID(ctx, ct.HostID)
			if err != nil {
				return err
			}
			recipients = append(recipients, domain.Recipient{HostID: host.ID, Email: host.Email})
		}

		trip.Status = domain.TripStatusCancelled
		result.Trip = trip
		result.CancelledMatches = cancelled

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateHostCaches(ctx, hostIDs)

	s.dispatcher.Dispatch(domain.Event{
		Type:       domain.EventTripCancelled,
		TripID:     tripID,
		Title:      "Trip cancelled",
		Message:    "A trip was cancelled by an administrator. Any matches with it were cancelled too.",
		Recipients: recipients,
		OccurredAt: time.Now(),
	})

	return &result, nil
}

// BlockHostResult reports the effect of blocking a host.
type BlockHostResult struct {
	CancelledTrips   int64
	CancelledMatches int64
}

// BlockHost rejects a host's verification and cancels every trip they own
// plus every match referencing any of those trips, in one transaction.
func (s *AdminService) BlockHost(ctx context.Context, hostID string) (*BlockHostResult, error) {
	if hostID == "" {
		return nil, ErrInvalidHostID
	}

	var (
		result    BlockHostResult
		recipient domain.Recipient
		hostIDs   []string
	)

	err := s.tx.RunInTx(ctx, func(ctx context.Context, r repository.TxRepos) error {
		host, err := r.Hosts.GetByIDForUpdate(ctx, hostID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrHostNotFound
			}
			return err
		}

		if err := r.Hosts.UpdateVerification(ctx, hostID, domain.VerificationRejected); err != nil {
			return err
		}

		// Lock the host's trips up front; the bulk updates below then
		// operate on a stable row set.
		tripIDs, err := r.Trips.LockByHostID(ctx, hostID)
		if err != nil {
			return err
		}

		// Counterpart hosts lose their matches too; collect them before
		// the cascade for cache invalidation.
		matches, err := r.Matches.GetByTripIDs(ctx, tripIDs)
		if err != nil {
			return err
		}

		ownTrips := make(map[string]bool, len(tripIDs))
		for _, id := range tripIDs {
			ownTrips[id] = true
		}

		var counterpartTripIDs []string
		for _, m := range matches {
			if !ownTrips[m.TripID] {
				counterpartTripIDs = append(counterpartTripIDs, m.TripID)
			}
			if !ownTrips[m.MatchedTripID] {
				counterpartTripIDs = append(counterpartTripIDs, m.MatchedTripID)
			}
		}

		counterparts, err := r.Trips.GetByIDs(ctx, counterpartTripIDs)
		if err != nil {
			return err
		}

		cancelledTrips, err := r.Trips.CancelByHostID(ctx, hostID)
		if err != nil {
			return err
		}

		cancelledMatches, err := r.Matches.CancelByTripIDs(ctx, tripIDs)
		if err != nil {
			return err
		}

		seen := map[string]bool{hostID: true}
		hostIDs = []string{hostID}
		for _, ct := range counterparts {
			if !seen[ct.HostID] {
				seen[ct.HostID] = true
				hostIDs = append(hostIDs, ct.HostID)
			}
		}

		recipient = domain.Recipient{HostID: host.ID, Email: host.Email}
		result.CancelledTrips = cancelledTrips
		result.CancelledMatches = cancelledMatches

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateHostCaches(ctx, hostIDs)

	s.dispatcher.Dispatch(domain.Event{
		Type:       domain.EventHostBlocked,
		HostID:     hostID,
		Title:      "Account blocked",
		Message:    "Your account was blocked. All your trips and matches were cancelled.",
		Recipients: []domain.Recipient{recipient},
		OccurredAt: time.Now(),
	})

	return &result, nil
}

// ApproveHost marks a host's verification as approved.
func (s *AdminService) ApproveHost(ctx context.Context, hostID string) error {
	if hostID == "" {
		return ErrInvalidHostID
	}

	err := s.hostRepo.UpdateVerification(ctx, hostID, domain.VerificationApproved)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrHostNotFound
	}
	return err
}

func (s *AdminService) invalidateHostCaches(ctx context.Context, hostIDs []string) {
	for _, hostID := range hostIDs {
		if err := s.cache.DeleteByPrefix(ctx, internalRedis.HostPrefix(hostID)); err != nil {
			s.log.WithError(err).WithField("host_id", hostID).Warn("cache invalidation failed")
		}
	}
}
