package tests

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"travelmatch/internal/domain"
	"travelmatch/internal/repository"
)

// newTestLogger returns a logger that discards all output.
func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// ──────────────────────────────────────────────
// MOCK HOST REPOSITORY
// ──────────────────────────────────────────────

// MockHostRepository is a mock implementation of HostRepository.
type MockHostRepository struct {
	mu    sync.RWMutex
	hosts map[string]*domain.Host

	// Counters for verification
	CreateCallCount             int32
	UpdateVerificationCallCount int32

	// Error injection
	CreateError             error
	UpdateVerificationError error
}

// NewMockHostRepository creates a new mock host repository.
func NewMockHostRepository() *MockHostRepository {
	return &MockHostRepository{
		hosts: make(map[string]*domain.Host),
	}
}

// AddHost adds a host to the mock repository.
func (m *MockHostRepository) AddHost(host *domain.Host) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hosts[host.ID] = host
}

func (m *MockHostRepository) Create(ctx context.Context, host *domain.Host) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.hosts {
		if existing.Email == host.Email {
			return repository.ErrDuplicate
		}
	}
	m.hosts[host.ID] = host
	return nil
}

func (m *MockHostRepository) GetByID(ctx context.Context, id string) (*domain.Host, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	host, ok := m.hosts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *host
	return &copy, nil
}

func (m *MockHostRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Host, error) {
	return m.GetByID(ctx, id)
}

func (m *MockHostRepository) GetByEmail(ctx context.Context, email string) (*domain.Host, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, h := range m.hosts {
		if h.Email == email {
			copy := *h
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockHostRepository) UpdateVerification(ctx context.Context, id string, status domain.VerificationStatus) error {
	atomic.AddInt32(&m.UpdateVerificationCallCount, 1)
	if m.UpdateVerificationError != nil {
		return m.UpdateVerificationError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	host, ok := m.hosts[id]
	if !ok {
		return repository.ErrNotFound
	}
	host.Verification = status
	return nil
}

// GetHost returns the stored host for test assertions.
func (m *MockHostRepository) GetHost(id string) *domain.Host {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hosts[id]
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[trip.ID] = trip
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *trip
	return &copy, nil
}

func (m *MockTripRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Trip, error) {
	return m.GetByID(ctx, id)
}

func (m *MockTripRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, id := range ids {
		if trip, ok := m.trips[id]; ok {
			copy := *trip
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTripRepository) GetByHostID(ctx context.Context, hostID string) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, t := range m.trips {
		if t.HostID == hostID {
			copy := *t
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockTripRepository) Search(ctx context.Context, filter repository.TripSearchFilter) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, t := range m.trips {
		if t.Status != domain.TripStatusActive {
			continue
		}
		if t.FromCountry != filter.FromCountry || t.ToCountry != filter.ToCountry {
			continue
		}
		if !filter.TravelDate.IsZero() && !t.TravelDate.Equal(filter.TravelDate) {
			continue
		}
		copy := *t
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockTripRepository) UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	trip, ok := m.trips[id]
	if !ok {
		return repository.ErrNotFound
	}
	trip.Status = status
	return nil
}

func (m *MockTripRepository) LockByHostID(ctx context.Context, hostID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for _, t := range m.trips {
		if t.HostID == hostID {
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}

func (m *MockTripRepository) CancelByHostID(ctx context.Context, hostID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, t := range m.trips {
		if t.HostID == hostID && t.Status != domain.TripStatusCancelled {
			t.Status = domain.TripStatusCancelled
			count++
		}
	}
	return count, nil
}

// GetTrip returns the stored trip for test assertions.
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// ──────────────────────────────────────────────
// MOCK MATCH REPOSITORY
// ──────────────────────────────────────────────

// MockMatchRepository is a mock implementation of MatchRepository.
type MockMatchRepository struct {
	mu      sync.RWMutex
	matches map[string]*domain.Match

	// Joined read model returned by ListReceivedByHost.
	received map[string][]*domain.ReceivedMatch

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockMatchRepository creates a new mock match repository.
func NewMockMatchRepository() *MockMatchRepository {
	return &MockMatchRepository{
		matches:  make(map[string]*domain.Match),
		received: make(map[string][]*domain.ReceivedMatch),
	}
}

// AddMatch adds a match to the mock repository.
func (m *MockMatchRepository) AddMatch(match *domain.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[match.ID] = match
}

// AddReceived registers the joined rows returned for a host.
func (m *MockMatchRepository) AddReceived(hostID string, rm *domain.ReceivedMatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received[hostID] = append(m.received[hostID], rm)
}

func (m *MockMatchRepository) Create(ctx context.Context, match *domain.Match) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.matches {
		if existing.TripID == match.TripID && existing.MatchedTripID == match.MatchedTripID {
			return repository.ErrDuplicate
		}
	}
	m.matches[match.ID] = match
	return nil
}

func (m *MockMatchRepository) GetByPair(ctx context.Context, tripID, matchedTripID string) (*domain.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, match := range m.matches {
		if match.TripID == tripID && match.MatchedTripID == matchedTripID {
			copy := *match
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockMatchRepository) GetByPairForUpdate(ctx context.Context, tripID, matchedTripID string) (*domain.Match, error) {
	return m.GetByPair(ctx, tripID, matchedTripID)
}

func (m *MockMatchRepository) Update(ctx context.Context, match *domain.Match) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.matches[match.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Status = match.Status
	stored.Consent = match.Consent
	stored.UpdatedAt = match.UpdatedAt
	return nil
}

func (m *MockMatchRepository) GetByTripIDs(ctx context.Context, tripIDs []string) ([]*domain.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make(map[string]bool, len(tripIDs))
	for _, id := range tripIDs {
		ids[id] = true
	}
	var result []*domain.Match
	for _, match := range m.matches {
		if ids[match.TripID] || ids[match.MatchedTripID] {
			copy := *match
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockMatchRepository) LockByTripID(ctx context.Context, tripID string) ([]*domain.Match, error) {
	return m.GetByTripIDs(ctx, []string{tripID})
}

func (m *MockMatchRepository) CancelByTripIDs(ctx context.Context, tripIDs []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]bool, len(tripIDs))
	for _, id := range tripIDs {
		ids[id] = true
	}
	var count int64
	for _, match := range m.matches {
		if !ids[match.TripID] && !ids[match.MatchedTripID] {
			continue
		}
		if match.Status == domain.MatchStatusCancelled {
			continue
		}
		match.Status = domain.MatchStatusCancelled
		count++
	}
	return count, nil
}

func (m *MockMatchRepository) ListReceivedByHost(ctx context.Context, hostID string) ([]*domain.ReceivedMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.received[hostID], nil
}

// GetMatch returns the stored match for test assertions.
func (m *MockMatchRepository) GetMatch(id string) *domain.Match {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.matches[id]
}

// GetMatchByPair returns the stored match for a directed pair.
func (m *MockMatchRepository) GetMatchByPair(tripID, matchedTripID string) *domain.Match {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, match := range m.matches {
		if match.TripID == tripID && match.MatchedTripID == matchedTripID {
			return match
		}
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK TX RUNNER
// ──────────────────────────────────────────────

// MockTxRunner runs the unit of work directly against the mock
// repositories. Rollback is not simulated; error-path tests assert that
// validation fails before any write.
type MockTxRunner struct {
	Repos repository.TxRepos

	// Counters for verification
	RunCallCount int32

	// Error injection
	RunError error
}

// NewMockTxRunner creates a pass-through transaction runner.
func NewMockTxRunner(hosts *MockHostRepository, trips *MockTripRepository, matches *MockMatchRepository) *MockTxRunner {
	return &MockTxRunner{
		Repos: repository.TxRepos{
			Hosts:   hosts,
			Trips:   trips,
			Matches: matches,
		},
	}
}

func (m *MockTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, r repository.TxRepos) error) error {
	atomic.AddInt32(&m.RunCallCount, 1)
	if m.RunError != nil {
		return m.RunError
	}
	return fn(ctx, m.Repos)
}

// ──────────────────────────────────────────────
// MOCK CACHE
// ──────────────────────────────────────────────

// MockCache is an in-memory cache mock.
type MockCache struct {
	mu    sync.RWMutex
	store map[string][]byte

	// Counters for verification
	GetCallCount            int32
	SetCallCount            int32
	DeleteByPrefixCallCount int32

	// Error injection
	GetError    error
	SetError    error
	DeleteError error
}

// NewMockCache creates a new mock cache.
func NewMockCache() *MockCache {
	return &MockCache{
		store: make(map[string][]byte),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store[key], nil
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = value
	return nil
}

func (m *MockCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	atomic.AddInt32(&m.DeleteByPrefixCallCount, 1)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.store {
		if strings.HasPrefix(key, prefix) {
			delete(m.store, key)
		}
	}
	return nil
}

// Has reports whether a key is present, for test assertions.
func (m *MockCache) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.store[key]
	return ok
}

// ──────────────────────────────────────────────
// MOCK SIDE EFFECT SINKS
// ──────────────────────────────────────────────

// Notification records a single delivered notification.
type Notification struct {
	HostID    string
	Email     string
	EventType string
	Title     string
	Message   string
	Metadata  map[string]string
}

// MockNotifier records notifications for verification.
type MockNotifier struct {
	mu            sync.Mutex
	notifications []Notification

	// Error injection
	NotifyError error
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, hostID, email, eventType, title, message string, metadata map[string]string) error {
	if m.NotifyError != nil {
		return m.NotifyError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, Notification{
		HostID:    hostID,
		Email:     email,
		EventType: eventType,
		Title:     title,
		Message:   message,
		Metadata:  metadata,
	})
	return nil
}

// Notifications returns all recorded notifications.
func (m *MockNotifier) Notifications() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.notifications...)
}

// MockAuditLogger records audit entries for verification.
type MockAuditLogger struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry

	// Error injection
	RecordError error
}

// NewMockAuditLogger creates a new mock audit logger.
func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

func (m *MockAuditLogger) Record(ctx context.Context, entry *domain.AuditEntry) error {
	if m.RecordError != nil {
		return m.RecordError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// Entries returns all recorded audit entries.
func (m *MockAuditLogger) Entries() []*domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AuditEntry(nil), m.entries...)
}

// MockAnalyticsSink records analytics events for verification.
type MockAnalyticsSink struct {
	mu     sync.Mutex
	events []*domain.AnalyticsEvent

	// Error injection
	RecordError error
}

// NewMockAnalyticsSink creates a new mock analytics sink.
func NewMockAnalyticsSink() *MockAnalyticsSink {
	return &MockAnalyticsSink{}
}

func (m *MockAnalyticsSink) Record(ctx context.Context, event *domain.AnalyticsEvent) error {
	if m.RecordError != nil {
		return m.RecordError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns all recorded analytics events.
func (m *MockAnalyticsSink) Events() []*domain.AnalyticsEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AnalyticsEvent(nil), m.events...)
}
