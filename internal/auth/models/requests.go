package models

import (
	"strings"

	"peegflow/internal/tenant/models"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/validation"
)

// LoginRequest authenticates a tenant account. Username is accepted as an
// alias of Email for form posts.
type LoginRequest struct {
	TenantSlug string `json:"tenant_slug" validate:"required,slug"`
	Email      string `json:"email" validate:"required,max=255"`
	Password   string `json:"password" validate:"required,max=128"`
}

func (r *LoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.TenantSlug = models.NormalizeSlug(r.TenantSlug)
	r.Email = NormalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type PlatformLoginRequest struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

func (r *PlatformLoginRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = NormalizeEmail(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

func (r *PlatformLoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// RegisterRequest is practice self-registration: a tenant and its first
// admin.
type RegisterRequest struct {
	TenantName    string `json:"tenant_name" validate:"required,notblank,max=200"`
	TenantSlug    string `json:"tenant_slug" validate:"required,slug"`
	AdminName     string `json:"admin_name" validate:"max=200"`
	AdminEmail    string `json:"admin_email" validate:"required,email,max=255"`
	AdminPassword string `json:"admin_password" validate:"required,min=6,max=128"`
}

func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.TenantName = strings.TrimSpace(r.TenantName)
	r.TenantSlug = models.NormalizeSlug(r.TenantSlug)
	r.AdminName = strings.TrimSpace(r.AdminName)
	r.AdminEmail = NormalizeEmail(r.AdminEmail)
	r.AdminPassword = strings.TrimSpace(r.AdminPassword)
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}
