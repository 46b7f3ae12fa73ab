package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"peegflow/internal/auth/models"
	tenantmodels "peegflow/internal/tenant/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/audit"
	"peegflow/pkg/platform/privacy"
	"peegflow/pkg/platform/sentinel"
	"peegflow/pkg/requestcontext"
)

// RegisterPractice creates a tenant and its first admin in one unit of
// work and signs the admin in.
func (s *Service) RegisterPractice(ctx context.Context, req *models.RegisterRequest) (*models.RegisterResponse, error) {
	// Hash before opening the transaction so a slow hash never holds it.
	hash, err := s.hasher.Hash(req.AdminPassword)
	if err != nil {
		return nil, err
	}

	var (
		tenant *tenantmodels.Tenant
		user   *models.User
	)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		t, err := tenantmodels.NewTenant(id.TenantID(uuid.New()), req.TenantName, req.TenantSlug, nil, now)
		if err != nil {
			return err
		}
		u, err := models.NewUser(id.UserID(uuid.New()), t.ID, req.AdminName, req.AdminEmail, hash, id.RoleAdmin, now)
		if err != nil {
			return err
		}
		if err := s.tenants.CreateIfSlugAvailable(txCtx, t); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "slug already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tenant")
		}
		if err := s.users.Create(txCtx, u); err != nil {
			return wrapCreateUserErr(err)
		}
		tenant, user = t, u
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.codec.IssueTenant(ctx, user.ID, tenant.ID, user.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.IncrementUsersCreated(string(id.RoleAdmin))
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionPracticeRegistered,
		TenantID: tenant.ID.String(),
		ActorID:  user.ID.String(),
		Subject:  tenant.Slug + " " + privacy.MaskEmail(user.Email),
	})
	return &models.RegisterResponse{
		TokenResponse: *s.tokenResponse(token),
		TenantID:      tenant.ID.String(),
		TenantSlug:    tenant.Slug,
		UserID:        user.ID.String(),
	}, nil
}

func wrapCreateUserErr(err error) error {
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		return dErrors.New(dErrors.CodeConflict, "email already registered")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
}
