package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/httputil"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tenantID := id.TenantID(uuid.New())

	u, err := NewUser(id.UserID(uuid.New()), tenantID, " Ana ", " Ana@Example.COM ", "hash", id.RolePatient, now)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, "Ana", u.Name)
	assert.True(t, u.IsActive)

	_, err = NewUser(id.UserID(uuid.New()), id.TenantID{}, "", "a@b.test", "hash", id.RoleAdmin, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewUser(id.UserID(uuid.New()), tenantID, "", "a@b.test", "hash", id.Role("owner"), now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestRegisterRequestValidation(t *testing.T) {
	valid := RegisterRequest{
		TenantName: "Clínica", TenantSlug: " Clinica ", AdminEmail: "A@B.test", AdminPassword: " 123456 ",
	}
	require.NoError(t, httputil.PrepareRequest(&valid))
	assert.Equal(t, "clinica", valid.TenantSlug)
	assert.Equal(t, "a@b.test", valid.AdminEmail)

	short := RegisterRequest{TenantName: "X", TenantSlug: "x", AdminEmail: "a@b.test", AdminPassword: "12345 "}
	err := httputil.PrepareRequest(&short)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
