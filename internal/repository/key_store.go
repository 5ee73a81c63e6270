package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisKeyStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisKeyStore returns an IdempotencyStore whose keys live under prefix.
func NewRedisKeyStore(client redis.Cmdable, prefix string) IdempotencyStore {
	return &redisKeyStore{client: client, prefix: prefix}
}

func (s *redisKeyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (s *redisKeyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
