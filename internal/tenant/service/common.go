package service

import (
	"context"
	"errors"

	"peegflow/internal/tenant/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/sentinel"
)

//go:generate mockgen -source=common.go -destination=mocks/mocks.go -package=mocks

// TenantStore persists tenants.
type TenantStore interface {
	CreateIfSlugAvailable(ctx context.Context, tenant *models.Tenant) error
	Update(ctx context.Context, tenant *models.Tenant) error
	FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	List(ctx context.Context) ([]*models.Tenant, error)
}

// AdminProvisioner creates the first administrator of a new tenant. It is
// called inside the tenant creation transaction.
type AdminProvisioner interface {
	CreateAdmin(ctx context.Context, tenantID id.TenantID, name, email, password string) error
}

func requireTenantID(tenantID id.TenantID) error {
	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "tenant ID required")
	}
	return nil
}

func wrapTenantErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "tenant not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
