package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "webhook:processed:"
	// Kept well past any provider redelivery window.
	retention = 24 * time.Hour
)

// RedisStore is the shared dedup store for multi-instance deployments.
// Keys expire instead of being evicted by count.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed dedup store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Has reports whether the key was already processed.
func (s *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Put marks the key processed with a TTL.
func (s *RedisStore) Put(ctx context.Context, key string) error {
	return s.client.SetNX(ctx, keyPrefix+key, "1", retention).Err()
}
