package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"peegflow/internal/auth/metrics"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/audit"
	"peegflow/pkg/platform/sentinel"
	txcontext "peegflow/pkg/platform/tx"
)

// Generic caller-facing failures. The distinguishing reason only goes to
// logs.
var (
	errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
	errInvalidToken       = dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
)

const tokenTypeBearer = "bearer"

// dummyPassword is hashed once and verified against when an account does
// not exist, so unknown emails cost the same as wrong passwords.
const dummyPassword = "peegflow-timing-equalizer"

// Service authenticates tenant accounts and platform operators, resolves
// bearer tokens into principals and provisions accounts.
type Service struct {
	users   UserStore
	admins  PlatformAdminStore
	tenants TenantStore
	codec   TokenCodec
	hasher  PasswordHasher
	guard   LoginGuard
	tx      txcontext.Runner
	logger  *slog.Logger
	audit   *audit.Logger
	metrics *metrics.Metrics

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditLogger(l *audit.Logger) Option {
	return func(s *Service) {
		s.audit = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLoginGuard enables lockout after repeated failed logins.
func WithLoginGuard(g LoginGuard) Option {
	return func(s *Service) {
		s.guard = g
	}
}

// WithTxRunner sets the unit of work runner. It must be the runner the
// tenant stores share, otherwise registration is not atomic.
func WithTxRunner(tx txcontext.Runner) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func New(users UserStore, admins PlatformAdminStore, tenants TenantStore, codec TokenCodec, hasher PasswordHasher, opts ...Option) (*Service, error) {
	if users == nil || admins == nil || tenants == nil {
		return nil, errors.New("auth: user, platform admin and tenant stores are required")
	}
	if codec == nil || hasher == nil {
		return nil, errors.New("auth: token codec and password hasher are required")
	}
	svc := &Service{
		users:   users,
		admins:  admins,
		tenants: tenants,
		codec:   codec,
		hasher:  hasher,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.tx == nil {
		svc.tx = txcontext.NewMemoryRunner()
	}
	return svc, nil
}

// burnVerify runs a password verification whose result is discarded.
func (s *Service) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err == nil {
			s.dummyHash = hash
		}
	})
	if s.dummyHash != "" {
		_ = s.hasher.Verify(password, s.dummyHash)
	}
}

func (s *Service) checkLockout(ctx context.Context, key string) error {
	if s.guard == nil {
		return nil
	}
	return s.guard.Check(ctx, key)
}

func (s *Service) recordFailure(ctx context.Context, key string) bool {
	if s.guard == nil {
		return false
	}
	return s.guard.Fail(ctx, key)
}

func (s *Service) resetLockout(ctx context.Context, key string) {
	if s.guard != nil {
		s.guard.Reset(ctx, key)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
