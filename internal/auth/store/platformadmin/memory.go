package platformadmin

import (
	"context"
	"fmt"
	"sync"

	"peegflow/internal/auth/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/sentinel"
)

type InMemory struct {
	mu      sync.RWMutex
	admins  map[id.PlatformAdminID]*models.PlatformAdmin
	byEmail map[string]id.PlatformAdminID
}

func NewInMemory() *InMemory {
	return &InMemory{
		admins:  make(map[id.PlatformAdminID]*models.PlatformAdmin),
		byEmail: make(map[string]id.PlatformAdminID),
	}
}

func (s *InMemory) Create(_ context.Context, admin *models.PlatformAdmin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := models.NormalizeEmail(admin.Email)
	if _, exists := s.byEmail[email]; exists {
		return fmt.Errorf("platform admin email: %w", sentinel.ErrAlreadyUsed)
	}
	cp := *admin
	s.admins[admin.ID] = &cp
	s.byEmail[email] = admin.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, adminID id.PlatformAdminID) (*models.PlatformAdmin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.admins[adminID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, fmt.Errorf("platform admin not found: %w", sentinel.ErrNotFound)
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.PlatformAdmin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if adminID, ok := s.byEmail[models.NormalizeEmail(email)]; ok {
		cp := *s.admins[adminID]
		return &cp, nil
	}
	return nil, fmt.Errorf("platform admin not found: %w", sentinel.ErrNotFound)
}

func (s *InMemory) UpdatePassword(_ context.Context, adminID id.PlatformAdminID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[adminID]
	if !ok {
		return fmt.Errorf("platform admin not found: %w", sentinel.ErrNotFound)
	}
	a.PasswordHash = hash
	return nil
}
