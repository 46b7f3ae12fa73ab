// Package seeder bootstraps a fresh deployment: the platform owner, a
// default tenant and that tenant's first admin. Every step is a no-op when
// its record already exists, so it runs on each start.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	tenantmodels "peegflow/internal/tenant/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/privacy"
	"peegflow/pkg/platform/sentinel"
	"peegflow/pkg/requestcontext"
)

// Accounts creates operators and tenant admins. The auth service
// implements it.
type Accounts interface {
	EnsurePlatformAdmin(ctx context.Context, name, email, password string) (bool, error)
	EnsureTenantAdmin(ctx context.Context, tenantID id.TenantID, name, email, password string) (bool, error)
}

// Tenants is the slice of tenant persistence the seeder needs.
type Tenants interface {
	FindBySlug(ctx context.Context, slug string) (*tenantmodels.Tenant, error)
	CreateIfSlugAvailable(ctx context.Context, tenant *tenantmodels.Tenant) error
}

type Config struct {
	PlatformAdminName     string
	PlatformAdminEmail    string
	PlatformAdminPassword string
	TenantName            string
	TenantSlug            string
	AdminEmail            string
	AdminPassword         string
}

// Result reports what a run created.
type Result struct {
	PlatformAdminCreated bool
	TenantCreated        bool
	AdminCreated         bool
	TenantID             id.TenantID
}

type Seeder struct {
	accounts Accounts
	tenants  Tenants
	logger   *slog.Logger
	now      func() time.Time
}

func New(accounts Accounts, tenants Tenants, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{accounts: accounts, tenants: tenants, logger: logger, now: time.Now}
}

// Seed runs every bootstrap step. The platform owner is skipped unless both
// email and password are configured; the same holds for the tenant admin.
func (s *Seeder) Seed(ctx context.Context, cfg Config) (*Result, error) {
	ctx = requestcontext.WithTime(ctx, s.now().UTC())
	res := &Result{}

	if cfg.PlatformAdminEmail != "" && cfg.PlatformAdminPassword != "" {
		created, err := s.accounts.EnsurePlatformAdmin(ctx, cfg.PlatformAdminName, cfg.PlatformAdminEmail, cfg.PlatformAdminPassword)
		if err != nil {
			return nil, fmt.Errorf("seed platform admin: %w", err)
		}
		res.PlatformAdminCreated = created
		if created {
			s.logger.InfoContext(ctx, "platform owner seeded", "email", privacy.MaskEmail(cfg.PlatformAdminEmail))
		}
	}

	if cfg.TenantSlug == "" {
		return res, nil
	}
	tenant, created, err := s.ensureTenant(ctx, cfg.TenantName, cfg.TenantSlug)
	if err != nil {
		return nil, fmt.Errorf("seed default tenant: %w", err)
	}
	res.TenantID = tenant.ID
	res.TenantCreated = created
	if created {
		s.logger.InfoContext(ctx, "default tenant seeded", "tenant_slug", tenant.Slug)
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := s.accounts.EnsureTenantAdmin(ctx, tenant.ID, "Admin", cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("seed tenant admin: %w", err)
		}
		res.AdminCreated = created
		if created {
			s.logger.InfoContext(ctx, "tenant admin seeded",
				"email", privacy.MaskEmail(cfg.AdminEmail),
				"tenant_slug", tenant.Slug,
			)
		}
	}
	return res, nil
}

// ensureTenant looks the slug up first and tolerates losing a creation race
// to another instance starting at the same time.
func (s *Seeder) ensureTenant(ctx context.Context, name, slug string) (*tenantmodels.Tenant, bool, error) {
	slug = tenantmodels.NormalizeSlug(slug)
	existing, err := s.tenants.FindBySlug(ctx, slug)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, false, err
	}

	tenant, err := tenantmodels.NewTenant(id.TenantID(uuid.New()), name, slug, nil, requestcontext.Now(ctx))
	if err != nil {
		return nil, false, err
	}
	if err := s.tenants.CreateIfSlugAvailable(ctx, tenant); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			existing, err := s.tenants.FindBySlug(ctx, slug)
			return existing, false, err
		}
		return nil, false, err
	}
	return tenant, true, nil
}
