package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ExpiringStore exposes cleanup for records with a time-bound lifetime.
type ExpiringStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// CleanupResult maps each registered store name to the rows it deleted.
type CleanupResult map[string]int

// CleanupService periodically removes expired auth state held in process,
// such as lockout records for addresses that never log in again.
type CleanupService struct {
	stores   map[string]ExpiringStore
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// CleanupOption configures CleanupService.
type CleanupOption func(*CleanupService)

// WithCleanupInterval overrides the cleanup interval when greater than zero.
func WithCleanupInterval(interval time.Duration) CleanupOption {
	return func(s *CleanupService) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithCleanupLogger overrides the logger used for cleanup errors.
func WithCleanupLogger(logger *slog.Logger) CleanupOption {
	return func(s *CleanupService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore registers a store under name.
func WithStore(name string, store ExpiringStore) CleanupOption {
	return func(s *CleanupService) {
		if store != nil {
			s.stores[name] = store
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CleanupOption {
	return func(s *CleanupService) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a CleanupService. At least one store is required.
func New(opts ...CleanupOption) (*CleanupService, error) {
	svc := &CleanupService{
		stores:   make(map[string]ExpiringStore),
		interval: 5 * time.Minute,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	if len(svc.stores) == 0 {
		return nil, fmt.Errorf("at least one store is required")
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *CleanupService) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "auth cleanup failed", "error", err)
				continue
			}
			for name, n := range res {
				if n > 0 {
					s.logger.DebugContext(ctx, "auth cleanup", "store", name, "deleted", n)
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce sweeps every registered store once. Failures are joined; a
// failing store does not stop the others.
func (s *CleanupService) RunOnce(ctx context.Context) (CleanupResult, error) {
	now := s.now()
	res := make(CleanupResult, len(s.stores))
	var errs []error
	for name, store := range s.stores {
		n, err := store.DeleteExpired(ctx, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("delete expired %s: %w", name, err))
			continue
		}
		res[name] = n
	}
	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}
