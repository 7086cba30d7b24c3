package kv

import (
	"context"
	"time"

	"souksync/internal/domain/ports/repository"
	red "souksync/internal/infra/redis"
)

var _ repository.KeyValueStore = (*RedisStore)(nil)

// RedisStore is the shared-cache implementation of the key/value port.
// TTL and atomicity are delegated to Redis.
type RedisStore struct {
	client red.RedisClient
}

func NewRedisStore(client red.RedisClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key)
}

func (s *RedisStore) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl)
}

// IncrWithTTL relies on Redis INCR being atomic. The expiry is attached on
// the first increment of a window and left untouched afterwards.
func (s *RedisStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, ttl); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key)
}

// compareAndDelete deletes the key only when its value matches, in a single
// server-side step.
const compareAndDeleteScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`

func (s *RedisStore) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	res, err := s.client.Eval(ctx, compareAndDeleteScript, []string{key}, expected)
	if err != nil {
		return false, err
	}
	n, _ := res.(int64)
	return n == 1, nil
}
