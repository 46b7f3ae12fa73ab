package user

import (
	"context"
	"fmt"
	"sync"
	"time"

	"peegflow/internal/auth/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/sentinel"
)

type emailKey struct {
	tenant id.TenantID
	email  string
}

// InMemoryUserStore keeps accounts in process. Every lookup is scoped by
// tenant, matching the Postgres queries.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[emailKey]id.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[emailKey]id.UserID),
	}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey{user.TenantID, models.NormalizeEmail(user.Email)}
	if _, exists := s.byEmail[key]; exists {
		return fmt.Errorf("user email: %w", sentinel.ErrAlreadyUsed)
	}
	cp := *user
	s.users[user.ID] = &cp
	s.byEmail[key] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByTenantAndID(_ context.Context, tenantID id.TenantID, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok && u.TenantID == tenantID {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryUserStore) FindByTenantAndEmail(_ context.Context, tenantID id.TenantID, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID, ok := s.byEmail[emailKey{tenantID, models.NormalizeEmail(email)}]; ok {
		cp := *s.users[userID]
		return &cp, nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryUserStore) UpdatePassword(_ context.Context, tenantID id.TenantID, userID id.UserID, hash string, now time.Time) error {
	return s.mutate(tenantID, userID, func(u *models.User) {
		u.PasswordHash = hash
		u.UpdatedAt = now
	})
}

func (s *InMemoryUserStore) SetActive(_ context.Context, tenantID id.TenantID, userID id.UserID, active bool, now time.Time) error {
	return s.mutate(tenantID, userID, func(u *models.User) {
		u.IsActive = active
		u.UpdatedAt = now
	})
}

func (s *InMemoryUserStore) mutate(tenantID id.TenantID, userID id.UserID, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.TenantID != tenantID {
		return fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
	}
	fn(u)
	return nil
}
