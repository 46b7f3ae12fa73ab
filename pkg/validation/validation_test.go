package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "peegflow/pkg/domain-errors"
)

type registerRequest struct {
	TenantName    string `validate:"required,notblank"`
	TenantSlug    string `validate:"required,slug"`
	AdminEmail    string `validate:"required,email"`
	AdminPassword string `validate:"required,min=6"`
}

func valid() registerRequest {
	return registerRequest{
		TenantName:    "Clinica Aurora",
		TenantSlug:    "clinica-aurora",
		AdminEmail:    "owner@aurora.com",
		AdminPassword: "s3cret!",
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(valid()))

	tests := []struct {
		name    string
		mutate  func(*registerRequest)
		message string
	}{
		{"blank name", func(r *registerRequest) { r.TenantName = "   " }, "tenant_name must not be blank"},
		{"uppercase slug", func(r *registerRequest) { r.TenantSlug = "Aurora" }, "tenant_slug must contain only lowercase letters, digits and dashes"},
		{"bad email", func(r *registerRequest) { r.AdminEmail = "owner" }, "admin_email must be a valid email"},
		{"short password", func(r *registerRequest) { r.AdminPassword = "123" }, "admin_password must be at least 6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			err := Validate(req)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestIsSlug(t *testing.T) {
	assert.True(t, IsSlug("demo"))
	assert.True(t, IsSlug("clinic-42"))
	assert.False(t, IsSlug("-demo"))
	assert.False(t, IsSlug("demo--x"))
	assert.False(t, IsSlug("demo_x"))
}
