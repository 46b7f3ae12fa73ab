// Package lockout throttles password guessing per (scope, email) pair.
//
// After MaxFailures failed logins inside Window the pair is locked for
// LockDuration. State lives in a primary Store (Redis when configured).
// A circuit breaker guards the primary: while it is open, state is read and
// written through the in-process fallback until a half-open probe succeeds. A primary error with the
// circuit still closed fails open.
package lockout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"peegflow/internal/auth/models"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/circuit"
	"peegflow/pkg/requestcontext"
)

type Store interface {
	Get(ctx context.Context, key string) (models.LockoutState, error)
	RecordFailure(ctx context.Context, key string, window time.Duration) (int, error)
	Lock(ctx context.Context, key string, until time.Time) error
	Clear(ctx context.Context, key string) error
}

type Config struct {
	MaxFailures  int
	Window       time.Duration
	LockDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxFailures:  5,
		Window:       15 * time.Minute,
		LockDuration: 15 * time.Minute,
	}
}

type Guard struct {
	primary  Store
	fallback Store
	breaker  *circuit.Breaker
	cfg      Config
	logger   *slog.Logger
}

type Option func(*Guard)

func WithFallback(s Store) Option {
	return func(g *Guard) { g.fallback = s }
}

func WithConfig(cfg Config) Option {
	return func(g *Guard) {
		if cfg.MaxFailures > 0 {
			g.cfg.MaxFailures = cfg.MaxFailures
		}
		if cfg.Window > 0 {
			g.cfg.Window = cfg.Window
		}
		if cfg.LockDuration > 0 {
			g.cfg.LockDuration = cfg.LockDuration
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(g *Guard) { g.breaker = b }
}

func New(primary Store, opts ...Option) *Guard {
	g := &Guard{
		primary: primary,
		cfg:     DefaultConfig(),
		breaker: circuit.New("login-lockout"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Key builds the lockout key for an email within a scope ("tenant:<slug>"
// or "platform").
func Key(scope, email string) string {
	return scope + ":" + models.NormalizeEmail(email)
}

// Check returns a too_many_requests error while key is locked.
func (g *Guard) Check(ctx context.Context, key string) error {
	var state models.LockoutState
	err := g.run(ctx, "get", func(s Store) error {
		var err error
		state, err = s.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil
	}
	now := requestcontext.Now(ctx)
	if state.IsLocked(now) {
		retry := int(state.LockedUntil.Sub(now).Round(time.Second).Seconds())
		return dErrors.New(dErrors.CodeTooManyRequests,
			fmt.Sprintf("too many failed attempts, try again in %d seconds", retry))
	}
	return nil
}

// Fail records a failed attempt and reports whether it locked key.
func (g *Guard) Fail(ctx context.Context, key string) bool {
	locked := false
	_ = g.run(ctx, "record", func(s Store) error {
		n, err := s.RecordFailure(ctx, key, g.cfg.Window)
		if err != nil {
			return err
		}
		if n < g.cfg.MaxFailures {
			return nil
		}
		if err := s.Lock(ctx, key, requestcontext.Now(ctx).Add(g.cfg.LockDuration)); err != nil {
			return err
		}
		locked = true
		return nil
	})
	return locked
}

// Reset forgets failures after a successful login.
func (g *Guard) Reset(ctx context.Context, key string) {
	_ = g.run(ctx, "clear", func(s Store) error {
		return s.Clear(ctx, key)
	})
}

// run executes op against the primary store, or straight against the
// fallback while the breaker is open. The returned error is non-nil only
// when no store produced an answer.
func (g *Guard) run(ctx context.Context, op string, fn func(Store) error) error {
	if !g.breaker.Allow() && g.fallback != nil {
		return fn(g.fallback)
	}

	err := fn(g.primary)
	if err == nil {
		if _, change := g.breaker.RecordSuccess(); change.Closed {
			g.logger.InfoContext(ctx, "lockout store recovered", "circuit", g.breaker.Name())
		}
		return nil
	}

	useFallback, change := g.breaker.RecordFailure()
	if change.Opened {
		g.logger.ErrorContext(ctx, "lockout circuit opened", "circuit", g.breaker.Name(), "error", err)
	}
	if useFallback && g.fallback != nil {
		return fn(g.fallback)
	}
	g.logger.WarnContext(ctx, "lockout store unavailable, failing open", "op", op, "error", err)
	return err
}
