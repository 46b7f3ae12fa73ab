package tenant

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"peegflow/internal/tenant/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/sentinel"
)

// InMemory stores tenants in process. Returned tenants are copies so
// callers cannot mutate stored state without going through Update.
type InMemory struct {
	mu      sync.RWMutex
	tenants map[id.TenantID]*models.Tenant
	slugIdx map[string]id.TenantID
}

func NewInMemory() *InMemory {
	return &InMemory{
		tenants: make(map[id.TenantID]*models.Tenant),
		slugIdx: make(map[string]id.TenantID),
	}
}

// CreateIfSlugAvailable inserts t unless its slug is taken.
func (s *InMemory) CreateIfSlugAvailable(_ context.Context, t *models.Tenant) error {
	if t == nil {
		return fmt.Errorf("tenant is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	slug := models.NormalizeSlug(t.Slug)
	if _, exists := s.slugIdx[slug]; exists {
		return fmt.Errorf("tenant slug %q: %w", slug, sentinel.ErrAlreadyUsed)
	}
	cp := clone(t)
	cp.Slug = slug
	s.tenants[t.ID] = cp
	s.slugIdx[slug] = t.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tenants[tenantID]; ok {
		return clone(t), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tenantID, ok := s.slugIdx[models.NormalizeSlug(slug)]; ok {
		return clone(s.tenants[tenantID]), nil
	}
	return nil, sentinel.ErrNotFound
}

// List returns all tenants, newest first.
func (s *InMemory) List(_ context.Context) ([]*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, clone(t))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Slug < out[j].Slug
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tenants), nil
}

// Update replaces the mutable fields of an existing tenant. The slug is
// immutable.
func (s *InMemory) Update(_ context.Context, t *models.Tenant) error {
	if t == nil {
		return fmt.Errorf("tenant is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tenants[t.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	cp := clone(t)
	cp.Slug = existing.Slug
	cp.CreatedAt = existing.CreatedAt
	s.tenants[t.ID] = cp
	return nil
}

func clone(t *models.Tenant) *models.Tenant {
	cp := *t
	if t.LicenseExpiresAt != nil {
		license := *t.LicenseExpiresAt
		cp.LicenseExpiresAt = &license
	}
	return &cp
}
