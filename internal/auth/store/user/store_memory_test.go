package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peegflow/internal/auth/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/sentinel"
)

func newUser(t *testing.T, tenantID id.TenantID, email string) *models.User {
	t.Helper()
	u, err := models.NewUser(id.UserID(uuid.New()), tenantID, "", email, "hash", id.RolePatient, time.Now())
	require.NoError(t, err)
	return u
}

func TestEmailUniquePerTenant(t *testing.T) {
	store := New()
	ctx := context.Background()
	tenantA := id.TenantID(uuid.New())
	tenantB := id.TenantID(uuid.New())

	require.NoError(t, store.Create(ctx, newUser(t, tenantA, "ana@example.com")))
	require.NoError(t, store.Create(ctx, newUser(t, tenantB, "ana@example.com")), "same email in another tenant")

	err := store.Create(ctx, newUser(t, tenantA, "ANA@example.com"))
	assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
}

func TestLookupsAreTenantScoped(t *testing.T) {
	store := New()
	ctx := context.Background()
	tenantA := id.TenantID(uuid.New())
	u := newUser(t, tenantA, "ana@example.com")
	require.NoError(t, store.Create(ctx, u))

	found, err := store.FindByTenantAndID(ctx, tenantA, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, found.Email)

	_, err = store.FindByTenantAndID(ctx, id.TenantID(uuid.New()), u.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	_, err = store.FindByTenantAndEmail(ctx, id.TenantID(uuid.New()), "ana@example.com")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestSetActiveAndPassword(t *testing.T) {
	store := New()
	ctx := context.Background()
	tenantID := id.TenantID(uuid.New())
	u := newUser(t, tenantID, "ana@example.com")
	require.NoError(t, store.Create(ctx, u))

	now := time.Now()
	require.NoError(t, store.SetActive(ctx, tenantID, u.ID, false, now))
	require.NoError(t, store.UpdatePassword(ctx, tenantID, u.ID, "new-hash", now))

	found, err := store.FindByTenantAndEmail(ctx, tenantID, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, found.IsActive)
	assert.Equal(t, "new-hash", found.PasswordHash)

	assert.ErrorIs(t, store.SetActive(ctx, id.TenantID(uuid.New()), u.ID, true, now), sentinel.ErrNotFound)
}
