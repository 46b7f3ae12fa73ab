package platformadmin

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

func TestInMemory(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()
	admin, err := models.NewPlatformAdmin(id.PlatformAdminID(uuid.New()), "Owner", "Owner@Peegflow.test", "hash", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, admin))

	found, err := store.FindByEmail(ctx, "owner@peegflow.test")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, found.ID)

	dup, err := models.NewPlatformAdmin(id.PlatformAdminID(uuid.New()), "", "owner@peegflow.test", "hash", time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, store.Create(ctx, dup), sentinel.ErrAlreadyUsed)

	require.NoError(t, store.UpdatePassword(ctx, admin.ID, "rehashed"))
	found, err = store.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "rehashed", found.PasswordHash)

	_, err = store.FindByID(ctx, id.PlatformAdminID(uuid.New()))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
