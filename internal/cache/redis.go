package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the price cache with a Redis instance. A missing key is a
// miss, not an error.
type RedisStore struct {
	Client *redis.Client
}

// Get fetches the raw value for key. The second return reports whether the
// key existed.
func (s RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.Client == nil || key == "" {
		return nil, false, nil
	}
	data, err := s.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set stores value under key with the given TTL. A non-positive TTL is a
// no-op: the caller chose not to cache.
func (s RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.Client == nil || key == "" || ttl <= 0 {
		return nil
	}
	return s.Client.Set(ctx, key, value, ttl).Err()
}
