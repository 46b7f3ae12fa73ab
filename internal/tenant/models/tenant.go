package models

import (
	"strings"
	"time"

	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/validation"
)

// Tenant is a practice. Slug is globally unique and used at login.
type Tenant struct {
	ID               id.TenantID
	Name             string
	Slug             string
	IsActive         bool
	LicenseExpiresAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Access outcomes for a tenant at a point in time.
const (
	AccessGranted        = ""
	AccessTenantInactive = "tenant inactive"
	AccessLicenseExpired = "license expired"
)

// AccessAt reports whether requests for this tenant may be served at now.
// An empty reason means access is granted. A license expiring exactly at
// now is already expired.
func (t *Tenant) AccessAt(now time.Time) string {
	if !t.IsActive {
		return AccessTenantInactive
	}
	if t.LicenseExpiresAt != nil && !t.LicenseExpiresAt.After(now) {
		return AccessLicenseExpired
	}
	return AccessGranted
}

// IsLicensed is AccessAt(now) == AccessGranted.
func (t *Tenant) IsLicensed(now time.Time) bool {
	return t.AccessAt(now) == AccessGranted
}

func NewTenant(tenantID id.TenantID, name, slug string, licenseExpiresAt *time.Time, now time.Time) (*Tenant, error) {
	name = strings.TrimSpace(name)
	slug = NormalizeSlug(slug)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant name cannot be empty")
	}
	if len(name) > validation.MaxNameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant name is too long")
	}
	if !validation.IsSlug(slug) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "slug must contain only lowercase letters, digits and dashes")
	}
	return &Tenant{
		ID:               tenantID,
		Name:             name,
		Slug:             slug,
		IsActive:         true,
		LicenseExpiresAt: licenseExpiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// NormalizeSlug lowercases and trims a slug. Lookups and inserts both go
// through it so "Demo " and "demo" are the same tenant.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// Patch is a partial update applied by platform operators.
type Patch struct {
	Name     *string
	IsActive *bool
	// License is applied only when LicenseSet is true; a nil License then
	// clears the expiry.
	LicenseSet bool
	License    *time.Time
}

// Apply mutates t and reports whether anything changed.
func (t *Tenant) Apply(p Patch, now time.Time) (bool, error) {
	changed := false
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return false, dErrors.New(dErrors.CodeInvariantViolation, "tenant name cannot be empty")
		}
		if name != t.Name {
			t.Name = name
			changed = true
		}
	}
	if p.IsActive != nil && *p.IsActive != t.IsActive {
		t.IsActive = *p.IsActive
		changed = true
	}
	if p.LicenseSet && !sameInstant(t.LicenseExpiresAt, p.License) {
		t.LicenseExpiresAt = p.License
		changed = true
	}
	if changed {
		t.UpdatedAt = now
	}
	return changed, nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
