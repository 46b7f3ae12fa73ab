package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"peegflow/internal/ratelimit/models"
)

const keyPrefix = "peegflow:ratelimit:"

// takeScript trims the window, admits the hit when there is room, and
// returns {allowed, count, oldest_ms}. Running it as one script keeps
// concurrent replicas from overshooting the limit.
var takeScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
local count = redis.call('ZCARD', KEYS[1])
local allowed = 0
if count < limit then
  redis.call('ZADD', KEYS[1], now, ARGV[4])
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', KEYS[1], window)
local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
local oldestAt = now
if oldest[2] then oldestAt = tonumber(oldest[2]) end
return {allowed, count, oldestAt}
`)

// RedisStore shares sliding windows between replicas as sorted sets of
// hit timestamps. Redis expires idle buckets itself.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Take(ctx context.Context, key string, limit models.Limit, now time.Time) (models.Result, error) {
	vals, err := takeScript.Run(ctx, s.client, []string{keyPrefix + key},
		now.UnixMilli(), limit.Window.Milliseconds(), limit.Requests, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return models.Result{}, fmt.Errorf("take rate limit token: %w", err)
	}
	if len(vals) != 3 {
		return models.Result{}, fmt.Errorf("take rate limit token: unexpected reply %v", vals)
	}

	res := models.Result{
		Allowed: vals[0] == 1,
		Limit:   limit.Requests,
		ResetAt: time.UnixMilli(vals[2]).UTC().Add(limit.Window),
	}
	if res.Allowed {
		res.Remaining = limit.Requests - int(vals[1])
	} else {
		res.RetryAfter = res.ResetAt.Sub(now)
	}
	return res, nil
}
