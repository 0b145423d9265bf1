package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "settlement:idempotency:"

// RedisIdempotencyStore shares idempotency state across instances.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// NewRedisIdempotencyStore wraps an existing Redis client. The client's
// lifecycle is owned by the caller.
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

// Get looks up the record ID stored under key.
func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("idempotency store: failed to get key: %w", err)
	}
	return val, true, nil
}

// Set stores the key → record mapping with SETNX so a concurrent settle
// with the same key cannot overwrite the first record ID.
func (s *RedisIdempotencyStore) Set(ctx context.Context, key, recordID string, ttl time.Duration) error {
	if err := s.client.SetNX(ctx, idempotencyKeyPrefix+key, recordID, ttl).Err(); err != nil {
		return fmt.Errorf("idempotency store: failed to set key: %w", err)
	}
	return nil
}
