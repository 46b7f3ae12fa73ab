package service

import (
	"context"
	"time"

	"peegflow/internal/auth/device"
	"peegflow/internal/auth/lockout"
	"peegflow/internal/auth/metrics"
	"peegflow/internal/auth/models"
	tenantmodels "peegflow/internal/tenant/models"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/audit"
	"peegflow/pkg/platform/privacy"
	"peegflow/pkg/requestcontext"
)

// LoginTenant exchanges tenant slug, email and password for a tenant
// token. Unknown tenants, unlicensed tenants, unknown or inactive accounts
// and wrong passwords all fail with the same error.
func (s *Service) LoginTenant(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveLoginDuration(metrics.DomainTenant, float64(time.Since(start).Milliseconds()))
	}()

	key := lockout.Key("tenant:"+req.TenantSlug, req.Email)
	if err := s.checkLockout(ctx, key); err != nil {
		s.metrics.IncrementLogin(metrics.DomainTenant, metrics.OutcomeLocked)
		s.audit.Log(ctx, audit.Event{
			Action:  audit.ActionLoginLocked,
			Subject: privacy.MaskEmail(req.Email),
			Reason:  "tenant:" + req.TenantSlug,
			Device:  device.Label(requestcontext.UserAgent(ctx)),
		})
		return nil, err
	}

	user, tenant, reason, err := s.authenticateTenant(ctx, req)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		s.tenantLoginFailed(ctx, key, req, tenant, reason)
		return nil, errInvalidCredentials
	}
	s.resetLockout(ctx, key)

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.upgradeUserHash(ctx, user, req.Password)
	}

	token, err := s.codec.IssueTenant(ctx, user.ID, tenant.ID, user.Role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.IncrementLogin(metrics.DomainTenant, metrics.OutcomeSuccess)
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionLoginSucceeded,
		TenantID: tenant.ID.String(),
		ActorID:  user.ID.String(),
		Subject:  privacy.MaskEmail(user.Email),
		Device:   device.Label(requestcontext.UserAgent(ctx)),
	})
	return s.tokenResponse(token), nil
}

// authenticateTenant returns a non-empty reason for every credential
// failure and an error only for infrastructure failures.
func (s *Service) authenticateTenant(ctx context.Context, req *models.LoginRequest) (*models.User, *tenantmodels.Tenant, string, error) {
	tenant, err := s.tenants.FindBySlug(ctx, req.TenantSlug)
	if err != nil {
		if isNotFound(err) {
			s.burnVerify(req.Password)
			return nil, nil, "unknown tenant", nil
		}
		return nil, nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant")
	}
	if access := tenant.AccessAt(requestcontext.Now(ctx)); access != tenantmodels.AccessGranted {
		s.burnVerify(req.Password)
		return nil, tenant, access, nil
	}

	user, err := s.users.FindByTenantAndEmail(ctx, tenant.ID, req.Email)
	if err != nil {
		if isNotFound(err) {
			s.burnVerify(req.Password)
			return nil, tenant, "unknown account", nil
		}
		return nil, nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, tenant, "wrong password", nil
	}
	if !user.IsActive {
		return nil, tenant, "account inactive", nil
	}
	return user, tenant, "", nil
}

func (s *Service) tenantLoginFailed(ctx context.Context, key string, req *models.LoginRequest, tenant *tenantmodels.Tenant, reason string) {
	locked := s.recordFailure(ctx, key)
	s.metrics.IncrementLogin(metrics.DomainTenant, metrics.OutcomeFailure)
	e := audit.Event{
		Action:  audit.ActionLoginFailed,
		Subject: privacy.MaskEmail(req.Email),
		Reason:  reason,
		Device:  device.Label(requestcontext.UserAgent(ctx)),
	}
	if tenant != nil {
		e.TenantID = tenant.ID.String()
	}
	s.audit.Log(ctx, e)
	if locked {
		s.metrics.IncrementLockouts()
		e.Action = audit.ActionLoginLocked
		e.Reason = "too many failed attempts"
		s.audit.Log(ctx, e)
	}
}

// upgradeUserHash replaces a legacy digest after a successful login. A
// failure is logged; the login still succeeds.
func (s *Service) upgradeUserHash(ctx context.Context, user *models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, user.TenantID, user.ID, hash, requestcontext.Now(ctx))
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to upgrade password hash",
			"tenant_id", user.TenantID.String(),
			"user_id", user.ID.String(),
			"error", err,
		)
		return
	}
	s.metrics.IncrementPasswordsRehashed()
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionPasswordRehashed,
		TenantID: user.TenantID.String(),
		ActorID:  user.ID.String(),
	})
}

// LoginPlatform exchanges an operator's email and password for a platform
// token.
func (s *Service) LoginPlatform(ctx context.Context, req *models.PlatformLoginRequest) (*models.TokenResponse, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveLoginDuration(metrics.DomainPlatform, float64(time.Since(start).Milliseconds()))
	}()

	key := lockout.Key("platform", req.Email)
	if err := s.checkLockout(ctx, key); err != nil {
		s.metrics.IncrementLogin(metrics.DomainPlatform, metrics.OutcomeLocked)
		return nil, err
	}

	admin, err := s.admins.FindByEmail(ctx, req.Email)
	reason := ""
	switch {
	case err != nil && !isNotFound(err):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load platform admin")
	case err != nil:
		s.burnVerify(req.Password)
		reason = "unknown operator"
	case !s.hasher.Verify(req.Password, admin.PasswordHash):
		reason = "wrong password"
	case !admin.IsActive:
		reason = "operator inactive"
	}
	if reason != "" {
		locked := s.recordFailure(ctx, key)
		if locked {
			s.metrics.IncrementLockouts()
		}
		s.metrics.IncrementLogin(metrics.DomainPlatform, metrics.OutcomeFailure)
		s.audit.Log(ctx, audit.Event{
			Action:  audit.ActionPlatformLoginFailed,
			Subject: privacy.MaskEmail(req.Email),
			Reason:  reason,
			Device:  device.Label(requestcontext.UserAgent(ctx)),
		})
		return nil, errInvalidCredentials
	}
	s.resetLockout(ctx, key)

	if s.hasher.NeedsRehash(admin.PasswordHash) {
		if hash, hashErr := s.hasher.Hash(req.Password); hashErr == nil {
			if err := s.admins.UpdatePassword(ctx, admin.ID, hash); err != nil {
				s.logger.WarnContext(ctx, "failed to upgrade platform admin hash", "admin_id", admin.ID.String(), "error", err)
			} else {
				s.metrics.IncrementPasswordsRehashed()
			}
		}
	}

	token, err := s.codec.IssuePlatform(ctx, admin.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.IncrementLogin(metrics.DomainPlatform, metrics.OutcomeSuccess)
	s.audit.Log(ctx, audit.Event{
		Action:  audit.ActionPlatformLogin,
		ActorID: admin.ID.String(),
		Subject: privacy.MaskEmail(admin.Email),
		Device:  device.Label(requestcontext.UserAgent(ctx)),
	})
	return s.tokenResponse(token), nil
}

func (s *Service) tokenResponse(token string) *models.TokenResponse {
	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int(s.codec.TTL().Seconds()),
	}
}
