package lockout

import (
	"context"
	"sync"
	"time"

	"peegflow/internal/auth/models"
	"peegflow/pkg/requestcontext"
)

type record struct {
	failures    int
	windowEnds  time.Time
	lockedUntil time.Time
}

// InMemory keeps lockout state per process. It is the default store and
// the fallback when Redis is unreachable.
type InMemory struct {
	mu      sync.Mutex
	records map[string]*record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]*record)}
}

func (s *InMemory) Get(ctx context.Context, key string) (models.LockoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.live(key, requestcontext.Now(ctx))
	if r == nil {
		return models.LockoutState{}, nil
	}
	return models.LockoutState{Failures: r.failures, LockedUntil: r.lockedUntil}, nil
}

// RecordFailure counts a failure; the count expires window after the last
// failure.
func (s *InMemory) RecordFailure(ctx context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := requestcontext.Now(ctx)
	r := s.live(key, now)
	if r == nil {
		r = &record{}
		s.records[key] = r
	}
	r.failures++
	r.windowEnds = now.Add(window)
	return r.failures, nil
}

func (s *InMemory) Lock(_ context.Context, key string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[key]
	if !ok {
		r = &record{}
		s.records[key] = r
	}
	r.lockedUntil = until
	if until.After(r.windowEnds) {
		r.windowEnds = until
	}
	return nil
}

func (s *InMemory) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// live returns the record for key, dropping it once both the failure
// window and any lock have passed. Caller holds mu.
func (s *InMemory) live(key string, now time.Time) *record {
	r, ok := s.records[key]
	if !ok {
		return nil
	}
	if !now.Before(r.windowEnds) && !now.Before(r.lockedUntil) {
		delete(s.records, key)
		return nil
	}
	return r
}

// DeleteExpired drops every record whose window and lock have both passed.
// Records are otherwise only dropped when their key is looked up again.
func (s *InMemory) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for key := range s.records {
		if s.live(key, now) == nil {
			deleted++
		}
	}
	return deleted, nil
}
