package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	KeyPrefix  = "payments:idempotency:"
	DefaultTTL = 24 * time.Hour
)

// RedisStore shares idempotency keys across instances. The first writer for a
// key wins; later writes are ignored.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Lookup(ctx context.Context, key string) (uuid.UUID, bool, error) {
	val, err := s.rdb.Get(ctx, KeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("redis get idempotency key: %w", err)
	}

	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt idempotency entry %q: %w", key, err)
	}
	return id, true, nil
}

func (s *RedisStore) Record(ctx context.Context, key string, paymentID uuid.UUID) error {
	if _, err := s.rdb.SetNX(ctx, KeyPrefix+key, paymentID.String(), s.ttl).Result(); err != nil {
		return fmt.Errorf("redis set idempotency key: %w", err)
	}
	return nil
}
