package models

import (
	"strings"
	"time"

	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
)

// User is a tenant account. Email is unique within its tenant only.
// Accounts are deactivated, never deleted.
type User struct {
	ID           id.UserID
	TenantID     id.TenantID
	Name         string
	Email        string
	PasswordHash string
	Role         id.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewUser(userID id.UserID, tenantID id.TenantID, name, email, passwordHash string, role id.Role, now time.Time) (*User, error) {
	email = NormalizeEmail(email)
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user must belong to a tenant")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	return &User{
		ID:           userID,
		TenantID:     tenantID,
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// PlatformAdmin is an operator of the platform trust domain. It belongs to
// no tenant.
type PlatformAdmin struct {
	ID           id.PlatformAdminID
	Name         string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

func NewPlatformAdmin(adminID id.PlatformAdminID, name, email, passwordHash string, now time.Time) (*PlatformAdmin, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	return &PlatformAdmin{
		ID:           adminID,
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
	}, nil
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LockoutState is the failed-login record of one (scope, email) pair.
type LockoutState struct {
	Failures    int
	LockedUntil time.Time
}

// IsLocked reports whether the pair is locked at now.
func (s LockoutState) IsLocked(now time.Time) bool {
	return !s.LockedUntil.IsZero() && now.Before(s.LockedUntil)
}
