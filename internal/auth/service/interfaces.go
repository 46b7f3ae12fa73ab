package service

import (
	"context"
	"time"

	"peegflow/internal/auth/models"
	"peegflow/internal/credential"
	tenantmodels "peegflow/internal/tenant/models"
	id "peegflow/pkg/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// UserStore persists tenant accounts.
// Error Contract: Find methods return sentinel.ErrNotFound when the account
// doesn't exist in that tenant; Create returns sentinel.ErrAlreadyUsed for a
// duplicate (tenant, email).
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByTenantAndID(ctx context.Context, tenantID id.TenantID, userID id.UserID) (*models.User, error)
	FindByTenantAndEmail(ctx context.Context, tenantID id.TenantID, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, tenantID id.TenantID, userID id.UserID, hash string, now time.Time) error
	SetActive(ctx context.Context, tenantID id.TenantID, userID id.UserID, active bool, now time.Time) error
}

// PlatformAdminStore persists platform operators.
type PlatformAdminStore interface {
	Create(ctx context.Context, admin *models.PlatformAdmin) error
	FindByID(ctx context.Context, adminID id.PlatformAdminID) (*models.PlatformAdmin, error)
	FindByEmail(ctx context.Context, email string) (*models.PlatformAdmin, error)
	UpdatePassword(ctx context.Context, adminID id.PlatformAdminID, hash string) error
}

// TenantStore is the slice of tenant persistence auth needs.
type TenantStore interface {
	CreateIfSlugAvailable(ctx context.Context, tenant *tenantmodels.Tenant) error
	FindByID(ctx context.Context, tenantID id.TenantID) (*tenantmodels.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*tenantmodels.Tenant, error)
}

// TokenCodec issues and verifies bearer tokens for both trust domains.
type TokenCodec interface {
	IssueTenant(ctx context.Context, userID id.UserID, tenantID id.TenantID, role id.Role) (string, error)
	IssuePlatform(ctx context.Context, adminID id.PlatformAdminID) (string, error)
	VerifyTenant(ctx context.Context, token string) (*credential.TenantIdentity, error)
	VerifyPlatform(ctx context.Context, token string) (*credential.PlatformIdentity, error)
	TTL() time.Duration
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
	NeedsRehash(digest string) bool
}

// LoginGuard throttles repeated failed logins.
type LoginGuard interface {
	Check(ctx context.Context, key string) error
	Fail(ctx context.Context, key string) bool
	Reset(ctx context.Context, key string)
}
