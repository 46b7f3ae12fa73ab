package handler

import (
	"strings"

	"peegflow/internal/tenant/models"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/httputil"
	"peegflow/pkg/validation"
)

// CreateTenantRequest is the platform operator's tenant creation payload.
// AdminEmail and AdminPassword are optional but must be given together.
type CreateTenantRequest struct {
	Name             string                `json:"name" validate:"required,notblank,max=200"`
	Slug             string                `json:"slug" validate:"required,slug"`
	LicenseExpiresAt httputil.OptionalTime `json:"license_expires_at"`
	AdminName        string                `json:"admin_name" validate:"max=200"`
	AdminEmail       string                `json:"admin_email" validate:"omitempty,email,max=255"`
	AdminPassword    string                `json:"admin_password" validate:"omitempty,min=6,max=128"`
}

func (r *CreateTenantRequest) Normalize() {
	if r == nil {
		return
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = models.NormalizeSlug(r.Slug)
	r.AdminName = strings.TrimSpace(r.AdminName)
	r.AdminEmail = strings.ToLower(strings.TrimSpace(r.AdminEmail))
	r.AdminPassword = strings.TrimSpace(r.AdminPassword)
}

func (r *CreateTenantRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	if (r.AdminEmail == "") != (r.AdminPassword == "") {
		return dErrors.New(dErrors.CodeValidation, "admin_email and admin_password must be provided together")
	}
	return nil
}

// UpdateTenantRequest patches a tenant. An explicit null license clears
// the expiry; an absent one leaves it alone.
type UpdateTenantRequest struct {
	Name             *string               `json:"name" validate:"omitempty,notblank,max=200"`
	IsActive         *bool                 `json:"is_active"`
	LicenseExpiresAt httputil.OptionalTime `json:"license_expires_at"`
}

func (r *UpdateTenantRequest) Normalize() {
	if r == nil || r.Name == nil {
		return
	}
	name := strings.TrimSpace(*r.Name)
	r.Name = &name
}

func (r *UpdateTenantRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Name == nil && r.IsActive == nil && !r.LicenseExpiresAt.Set {
		return dErrors.New(dErrors.CodeValidation, "at least one field is required")
	}
	return validation.Validate(r)
}

func (r *UpdateTenantRequest) patch() models.Patch {
	return models.Patch{
		Name:       r.Name,
		IsActive:   r.IsActive,
		LicenseSet: r.LicenseExpiresAt.Set,
		License:    r.LicenseExpiresAt.Value,
	}
}
