package service

import (
	"context"

	"peegflow/internal/auth/metrics"
	"peegflow/internal/credential"
	tenantmodels "peegflow/internal/tenant/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/requestcontext"
)

// ResolvePrincipal turns a tenant bearer token into the principal for this
// request. The account must exist in the token's tenant and be active, the
// tenant must be active and licensed, and a non-empty slugHint must name
// the same tenant. Nothing is cached: deactivating an account or tenant
// takes effect on the next request.
func (s *Service) ResolvePrincipal(ctx context.Context, token, slugHint string) (*id.Principal, error) {
	ident, err := s.codec.VerifyTenant(ctx, token)
	if err != nil {
		return nil, s.rejectToken(ctx, metrics.DomainTenant, "credential: "+credential.Reason(err))
	}

	user, err := s.users.FindByTenantAndID(ctx, ident.TenantID, ident.UserID)
	if err != nil {
		if isNotFound(err) {
			return nil, s.rejectToken(ctx, metrics.DomainTenant, "account not found", "tenant_id", ident.TenantID.String())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if !user.IsActive {
		return nil, s.rejectToken(ctx, metrics.DomainTenant, "account inactive", "user_id", user.ID.String())
	}

	tenant, err := s.tenants.FindByID(ctx, ident.TenantID)
	if err != nil {
		if isNotFound(err) {
			return nil, s.rejectToken(ctx, metrics.DomainTenant, "tenant not found", "tenant_id", ident.TenantID.String())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant")
	}
	if access := tenant.AccessAt(requestcontext.Now(ctx)); access != tenantmodels.AccessGranted {
		return nil, s.rejectToken(ctx, metrics.DomainTenant, access, "tenant_id", tenant.ID.String())
	}
	if slugHint != "" && tenantmodels.NormalizeSlug(slugHint) != tenant.Slug {
		return nil, s.rejectToken(ctx, metrics.DomainTenant, "tenant hint mismatch", "tenant_id", tenant.ID.String())
	}

	s.metrics.IncrementResolution(metrics.DomainTenant, metrics.OutcomeSuccess)
	return &id.Principal{
		UserID:     user.ID,
		TenantID:   tenant.ID,
		TenantSlug: tenant.Slug,
		Email:      user.Email,
		Role:       user.Role,
	}, nil
}

// ResolvePlatformAdmin turns a platform bearer token into the operator for
// this request. Tenant tokens never resolve here.
func (s *Service) ResolvePlatformAdmin(ctx context.Context, token string) (*id.PlatformPrincipal, error) {
	ident, err := s.codec.VerifyPlatform(ctx, token)
	if err != nil {
		return nil, s.rejectToken(ctx, metrics.DomainPlatform, "credential: "+credential.Reason(err))
	}

	admin, err := s.admins.FindByID(ctx, ident.AdminID)
	if err != nil {
		if isNotFound(err) {
			return nil, s.rejectToken(ctx, metrics.DomainPlatform, "operator not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load platform admin")
	}
	if !admin.IsActive {
		return nil, s.rejectToken(ctx, metrics.DomainPlatform, "operator inactive", "admin_id", admin.ID.String())
	}

	s.metrics.IncrementResolution(metrics.DomainPlatform, metrics.OutcomeSuccess)
	return &id.PlatformPrincipal{AdminID: admin.ID, Email: admin.Email}, nil
}

func (s *Service) rejectToken(ctx context.Context, domain, reason string, attrs ...any) error {
	s.metrics.IncrementResolution(domain, metrics.OutcomeFailure)
	args := append([]any{
		"domain", domain,
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	}, attrs...)
	s.logger.InfoContext(ctx, "bearer token rejected", args...)
	return errInvalidToken
}
