package handler

import (
	"time"

	"peegflow/internal/tenant/models"
)

type TenantResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	IsActive         bool       `json:"is_active"`
	LicenseExpiresAt *time.Time `json:"license_expires_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toTenantResponse(t *models.Tenant) *TenantResponse {
	return &TenantResponse{
		ID:               t.ID.String(),
		Name:             t.Name,
		Slug:             t.Slug,
		IsActive:         t.IsActive,
		LicenseExpiresAt: t.LicenseExpiresAt,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func toTenantResponses(tenants []*models.Tenant) []*TenantResponse {
	out := make([]*TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, toTenantResponse(t))
	}
	return out
}
