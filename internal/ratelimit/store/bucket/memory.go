package bucket

import (
	"context"
	"sync"
	"time"

	"peegflow/internal/ratelimit/models"
)

// slidingWindow keeps the timestamps of accepted requests, oldest first.
type slidingWindow struct {
	hits   []time.Time
	window time.Duration
}

func (sw *slidingWindow) expire(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for i < len(sw.hits) && !sw.hits[i].After(cutoff) {
		i++
	}
	sw.hits = sw.hits[i:]
}

func (sw *slidingWindow) take(limit int, now time.Time) models.Result {
	sw.expire(now)
	res := models.Result{Limit: limit}
	if len(sw.hits) >= limit {
		res.ResetAt = sw.hits[0].Add(sw.window)
		res.RetryAfter = res.ResetAt.Sub(now)
		return res
	}
	sw.hits = append(sw.hits, now)
	res.Allowed = true
	res.Remaining = limit - len(sw.hits)
	res.ResetAt = sw.hits[0].Add(sw.window)
	return res
}

// InMemory is a per-process sliding-window store. It is the default when
// Redis is not configured.
type InMemory struct {
	mu      sync.Mutex
	buckets map[string]*slidingWindow
}

func NewInMemory() *InMemory {
	return &InMemory{buckets: make(map[string]*slidingWindow)}
}

func (s *InMemory) Take(_ context.Context, key string, limit models.Limit, now time.Time) (models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok {
		b = &slidingWindow{window: limit.Window}
		s.buckets[key] = b
	}
	return b.take(limit.Requests, now), nil
}

// DeleteExpired drops buckets with no hits left inside their window.
func (s *InMemory) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, b := range s.buckets {
		b.expire(now)
		if len(b.hits) == 0 {
			delete(s.buckets, key)
			n++
		}
	}
	return n, nil
}
