package service

import (
	"context"

	"github.com/google/uuid"

	"peegflow/internal/auth/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/privacy"
	"peegflow/pkg/requestcontext"
)

// CreateAdmin adds an admin account to an existing tenant. Platform tenant
// creation calls it inside its own transaction.
func (s *Service) CreateAdmin(ctx context.Context, tenantID id.TenantID, name, email, password string) error {
	_, err := s.createUser(ctx, tenantID, name, email, password, id.RoleAdmin)
	return err
}

// CreatePatientAccount adds an active patient account to a tenant.
func (s *Service) CreatePatientAccount(ctx context.Context, tenantID id.TenantID, name, email, password string) (id.UserID, error) {
	user, err := s.createUser(ctx, tenantID, name, email, password, id.RolePatient)
	if err != nil {
		return id.UserID{}, err
	}
	return user.ID, nil
}

func (s *Service) createUser(ctx context.Context, tenantID id.TenantID, name, email, password string, role id.Role) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user, err := models.NewUser(id.UserID(uuid.New()), tenantID, name, email, hash, role, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, wrapCreateUserErr(err)
	}
	s.metrics.IncrementUsersCreated(string(role))
	s.logger.InfoContext(ctx, "account created",
		"tenant_id", tenantID.String(),
		"user_id", user.ID.String(),
		"role", string(role),
		"email", privacy.MaskEmail(user.Email),
	)
	return user, nil
}

// GrantPatientAccess restores or creates the login of a patient. It looks
// up the linked account first, then any account with the same email in the
// tenant. A found account is reactivated with the new password; admin
// accounts are never converted.
func (s *Service) GrantPatientAccess(ctx context.Context, tenantID id.TenantID, linked *id.UserID, name, email, password string) (id.UserID, error) {
	var user *models.User
	if linked != nil {
		u, err := s.users.FindByTenantAndID(ctx, tenantID, *linked)
		if err != nil && !isNotFound(err) {
			return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
		}
		user = u
	}
	if user == nil {
		u, err := s.users.FindByTenantAndEmail(ctx, tenantID, email)
		if err != nil && !isNotFound(err) {
			return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
		}
		user = u
	}
	if user == nil {
		return s.CreatePatientAccount(ctx, tenantID, name, email, password)
	}
	if user.Role != id.RolePatient {
		return id.UserID{}, dErrors.New(dErrors.CodeConflict, "email belongs to an admin account")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return id.UserID{}, err
	}
	now := requestcontext.Now(ctx)
	if err := s.users.UpdatePassword(ctx, tenantID, user.ID, hash, now); err != nil {
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset password")
	}
	if err := s.users.SetActive(ctx, tenantID, user.ID, true, now); err != nil {
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reactivate account")
	}
	s.logger.InfoContext(ctx, "patient account reactivated",
		"tenant_id", tenantID.String(),
		"user_id", user.ID.String(),
	)
	return user.ID, nil
}

// RevokePatientAccess deactivates a patient account. Missing accounts and
// admin accounts are left alone.
func (s *Service) RevokePatientAccess(ctx context.Context, tenantID id.TenantID, userID id.UserID) error {
	user, err := s.users.FindByTenantAndID(ctx, tenantID, userID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if user.Role != id.RolePatient || !user.IsActive {
		return nil
	}
	if err := s.users.SetActive(ctx, tenantID, userID, false, requestcontext.Now(ctx)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate account")
	}
	s.logger.InfoContext(ctx, "patient account deactivated",
		"tenant_id", tenantID.String(),
		"user_id", userID.String(),
	)
	return nil
}

// EnsurePlatformAdmin creates the operator unless the email is already
// registered. It reports whether it created one.
func (s *Service) EnsurePlatformAdmin(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.admins.FindByEmail(ctx, models.NormalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !isNotFound(err) {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load platform admin")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, err
	}
	admin, err := models.NewPlatformAdmin(id.PlatformAdminID(uuid.New()), name, email, hash, requestcontext.Now(ctx))
	if err != nil {
		return false, err
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create platform admin")
	}
	return true, nil
}

// EnsureTenantAdmin creates an admin in tenantID unless the email is
// already registered there. It reports whether it created one.
func (s *Service) EnsureTenantAdmin(ctx context.Context, tenantID id.TenantID, name, email, password string) (bool, error) {
	_, err := s.users.FindByTenantAndEmail(ctx, tenantID, models.NormalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !isNotFound(err) {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if err := s.CreateAdmin(ctx, tenantID, name, email, password); err != nil {
		return false, err
	}
	return true, nil
}
