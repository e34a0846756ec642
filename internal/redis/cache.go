package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore is a read-through cache over Redis. It is never the source of
// truth: Get returns a nil value on a miss and callers fall back to the
// store.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache keys are scoped per host so a single prefix deletion invalidates
// everything derived from that host's trips and matches.
const hostKeyPrefix = "cache:host:"

// HostTripsKey returns the cache key for a host's annotated trip list.
func HostTripsKey(hostID string) string {
	return hostKeyPrefix + hostID + ":trips"
}

// HostReceivedKey returns the cache key for a host's received match
// requests.
func HostReceivedKey(hostID string) string {
	return hostKeyPrefix + hostID + ":received"
}

// HostPrefix returns the invalidation prefix covering all of a host's
// cached reads.
func HostPrefix(hostID string) string {
	return hostKeyPrefix + hostID + ":"
}

// Get retrieves a cached value. Returns nil with no error on a miss.
func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}
	return data, nil
}

// Set stores a value with a TTL.
func (s *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// DeleteByPrefix removes every key under the given prefix using SCAN, so
// invalidation never blocks the server the way KEYS would.
func (s *CacheStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	pattern := fmt.Sprintf("%s*", prefix)

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}

		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
