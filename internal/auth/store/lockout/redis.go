package lockout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"peegflow/internal/auth/models"
	"peegflow/pkg/requestcontext"
)

const (
	failuresKeyPrefix = "peegflow:lockout:failures:"
	lockKeyPrefix     = "peegflow:lockout:lock:"
)

// RedisStore shares lockout state between replicas. Failure counters and
// locks are plain keys that Redis expires on its own.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (models.LockoutState, error) {
	var failures, lock *redis.StringCmd
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		failures = pipe.Get(ctx, failuresKeyPrefix+key)
		lock = pipe.Get(ctx, lockKeyPrefix+key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return models.LockoutState{}, fmt.Errorf("read lockout state: %w", err)
	}

	var state models.LockoutState
	if n, err := failures.Int(); err == nil {
		state.Failures = n
	}
	if ms, err := lock.Int64(); err == nil {
		state.LockedUntil = time.UnixMilli(ms).UTC()
	}
	return state, nil
}

func (s *RedisStore) RecordFailure(ctx context.Context, key string, window time.Duration) (int, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, failuresKeyPrefix+key)
		pipe.Expire(ctx, failuresKeyPrefix+key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record login failure: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Lock(ctx context.Context, key string, until time.Time) error {
	ttl := until.Sub(requestcontext.Now(ctx))
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, lockKeyPrefix+key, strconv.FormatInt(until.UnixMilli(), 10), ttl).Err(); err != nil {
		return fmt.Errorf("lock login: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, failuresKeyPrefix+key, lockKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}
