package seeder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmodels "peegflow/internal/auth/models"
	authservice "peegflow/internal/auth/service"
	"peegflow/internal/auth/store/platformadmin"
	userstore "peegflow/internal/auth/store/user"
	"peegflow/internal/credential"
	tenantmodels "peegflow/internal/tenant/models"
	tenantstore "peegflow/internal/tenant/store/tenant"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/sentinel"
	"peegflow/pkg/secrets"
)

var fixedNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	seeder  *Seeder
	auth    *authservice.Service
	tenants *tenantstore.InMemory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	codec, err := credential.NewCodec(credential.Config{
		TenantSecret:   []byte("tenant-secret"),
		PlatformSecret: []byte("platform-secret"),
	})
	require.NoError(t, err)

	tenants := tenantstore.NewInMemory()
	auth, err := authservice.New(
		userstore.New(),
		platformadmin.NewInMemory(),
		tenants,
		codec,
		secrets.NewHasher(secrets.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}),
	)
	require.NoError(t, err)

	s := New(auth, tenants, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return fixedNow }
	return &fixture{seeder: s, auth: auth, tenants: tenants}
}

func defaultConfig() Config {
	return Config{
		PlatformAdminName:     "Owner",
		PlatformAdminEmail:    "owner@peegflow.test",
		PlatformAdminPassword: "owner-pass",
		TenantName:            "Cliente Demo",
		TenantSlug:            "demo",
		AdminEmail:            "admin@teste.com",
		AdminPassword:         "123456",
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.seeder.Seed(ctx, defaultConfig())
	require.NoError(t, err)
	assert.True(t, first.PlatformAdminCreated)
	assert.True(t, first.TenantCreated)
	assert.True(t, first.AdminCreated)

	tenant, err := f.tenants.FindBySlug(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "Cliente Demo", tenant.Name)
	assert.True(t, tenant.IsActive)
	assert.Nil(t, tenant.LicenseExpiresAt)
	assert.Equal(t, fixedNow, tenant.CreatedAt)

	second, err := f.seeder.Seed(ctx, defaultConfig())
	require.NoError(t, err)
	assert.False(t, second.PlatformAdminCreated)
	assert.False(t, second.TenantCreated)
	assert.False(t, second.AdminCreated)
	assert.Equal(t, first.TenantID, second.TenantID)
}

func TestSeededAdminCanLogIn(t *testing.T) {
	f := newFixture(t)
	_, err := f.seeder.Seed(context.Background(), defaultConfig())
	require.NoError(t, err)

	token, err := f.auth.LoginTenant(context.Background(), &authmodels.LoginRequest{
		TenantSlug: "demo",
		Email:      "admin@teste.com",
		Password:   "123456",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)

	platform, err := f.auth.LoginPlatform(context.Background(), &authmodels.PlatformLoginRequest{
		Email:    "owner@peegflow.test",
		Password: "owner-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, platform.AccessToken)
}

func TestSeedSkipsUnconfiguredAccounts(t *testing.T) {
	f := newFixture(t)
	cfg := defaultConfig()
	cfg.PlatformAdminPassword = ""
	cfg.AdminPassword = ""

	res, err := f.seeder.Seed(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, res.PlatformAdminCreated)
	assert.True(t, res.TenantCreated)
	assert.False(t, res.AdminCreated)
}

type racingTenants struct {
	*tenantstore.InMemory
	misses int
}

// FindBySlug misses once, as if another instance had not committed yet.
func (r *racingTenants) FindBySlug(ctx context.Context, slug string) (*tenantmodels.Tenant, error) {
	if r.misses == 0 {
		r.misses++
		return nil, sentinel.ErrNotFound
	}
	return r.InMemory.FindBySlug(ctx, slug)
}

func TestSeedToleratesTenantCreationRace(t *testing.T) {
	f := newFixture(t)
	winner, err := tenantmodels.NewTenant(id.TenantID(uuid.New()), "Other Instance", "demo", nil, fixedNow)
	require.NoError(t, err)
	require.NoError(t, f.tenants.CreateIfSlugAvailable(context.Background(), winner))

	f.seeder.tenants = &racingTenants{InMemory: f.tenants}
	cfg := defaultConfig()
	cfg.PlatformAdminEmail = ""

	res, err := f.seeder.Seed(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, res.TenantCreated)
	assert.Equal(t, winner.ID, res.TenantID)
}

type brokenTenants struct{ *tenantstore.InMemory }

func (brokenTenants) FindBySlug(context.Context, string) (*tenantmodels.Tenant, error) {
	return nil, errors.New("connection reset")
}

func TestSeedSurfacesStoreErrors(t *testing.T) {
	f := newFixture(t)
	f.seeder.tenants = brokenTenants{f.tenants}

	_, err := f.seeder.Seed(context.Background(), defaultConfig())
	assert.ErrorContains(t, err, "seed default tenant")
}
