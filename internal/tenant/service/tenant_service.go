package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"peegflow/internal/tenant/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/audit"
	"peegflow/pkg/platform/sentinel"
	txcontext "peegflow/pkg/platform/tx"
	"peegflow/pkg/requestcontext"
)

// TenantService manages tenants on behalf of platform operators.
type TenantService struct {
	tenants TenantStore
	admins  AdminProvisioner
	logger  *slog.Logger
	audit   *audit.Logger
	metrics *Metrics
	tx      txcontext.Runner
}

// CreateTenantCommand carries a platform operator's create request.
// AdminEmail is optional; when set, AdminPassword is required.
type CreateTenantCommand struct {
	Name             string
	Slug             string
	LicenseExpiresAt *time.Time
	AdminName        string
	AdminEmail       string
	AdminPassword    string
}

func NewTenantService(tenants TenantStore, opts ...Option) *TenantService {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	tx := cfg.tx
	if tx == nil {
		tx = txcontext.NewMemoryRunner()
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantService{
		tenants: tenants,
		admins:  cfg.admins,
		logger:  logger,
		audit:   cfg.auditLogger,
		metrics: cfg.metrics,
		tx:      tx,
	}
}

// CreateTenant creates an active tenant and, when requested, its first
// admin in the same unit of work.
func (s *TenantService) CreateTenant(ctx context.Context, cmd CreateTenantCommand) (*models.Tenant, error) {
	if cmd.AdminEmail != "" && s.admins == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "admin provisioning is not available")
	}

	var tenant *models.Tenant
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := models.NewTenant(id.TenantID(uuid.New()), cmd.Name, cmd.Slug, cmd.LicenseExpiresAt, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if err := s.tenants.CreateIfSlugAvailable(txCtx, t); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "slug already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tenant")
		}
		if cmd.AdminEmail != "" {
			if err := s.admins.CreateAdmin(txCtx, t.ID, cmd.AdminName, cmd.AdminEmail, cmd.AdminPassword); err != nil {
				return err
			}
		}
		tenant = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionTenantCreated,
		TenantID: tenant.ID.String(),
		ActorID:  platformActor(ctx),
		Subject:  tenant.Slug,
	})
	s.metrics.IncrementTenantCreated()
	return tenant, nil
}

// ListTenants returns every tenant, newest first.
func (s *TenantService) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	tenants, err := s.tenants.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tenants")
	}
	return tenants, nil
}

func (s *TenantService) GetTenant(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}
	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, wrapTenantErr(err, "failed to load tenant")
	}
	return tenant, nil
}

// UpdateTenant applies a partial update. Deactivating a tenant or letting
// its license lapse takes effect on the next authenticated request of
// every user of that tenant.
func (s *TenantService) UpdateTenant(ctx context.Context, tenantID id.TenantID, patch models.Patch) (*models.Tenant, error) {
	if err := requireTenantID(tenantID); err != nil {
		return nil, err
	}

	var (
		tenant  *models.Tenant
		changed bool
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		t, err := s.tenants.FindByID(txCtx, tenantID)
		if err != nil {
			return wrapTenantErr(err, "failed to load tenant")
		}
		changed, err = t.Apply(patch, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		if changed {
			if err := s.tenants.Update(txCtx, t); err != nil {
				return wrapTenantErr(err, "failed to update tenant")
			}
		}
		tenant = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.audit.Log(ctx, audit.Event{
			Action:   audit.ActionTenantUpdated,
			TenantID: tenant.ID.String(),
			ActorID:  platformActor(ctx),
			Subject:  tenant.Slug,
			Reason:   tenant.AccessAt(requestcontext.Now(ctx)),
		})
		s.metrics.IncrementTenantUpdated(tenant.IsActive)
	}
	return tenant, nil
}

func platformActor(ctx context.Context) string {
	if p := requestcontext.PlatformAdmin(ctx); p != nil {
		return p.AdminID.String()
	}
	return ""
}
