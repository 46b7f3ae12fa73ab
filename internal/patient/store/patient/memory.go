package patient

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"peegflow/internal/patient/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/sentinel"
)

// InMemory stores patients in process and hands out copies.
type InMemory struct {
	mu       sync.RWMutex
	patients map[id.PatientID]*models.Patient
}

func NewInMemory() *InMemory {
	return &InMemory{patients: make(map[id.PatientID]*models.Patient)}
}

func (s *InMemory) Create(_ context.Context, p *models.Patient) error {
	if p == nil {
		return fmt.Errorf("patient is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.patients[p.ID]; exists {
		return fmt.Errorf("patient %s: %w", p.ID, sentinel.ErrAlreadyUsed)
	}
	s.patients[p.ID] = clone(p)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID, patientID id.PatientID) (*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[patientID]
	if !ok || p.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	return clone(p), nil
}

// List returns a tenant's patients ordered by full name.
func (s *InMemory) List(_ context.Context, tenantID id.TenantID) ([]*models.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Patient, 0)
	for _, p := range s.patients {
		if p.TenantID == tenantID {
			out = append(out, clone(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].FullName), strings.ToLower(out[j].FullName)
		if a == b {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return a < b
	})
	return out, nil
}

// FindByUserIDs returns the patients linked to any of userIDs.
func (s *InMemory) FindByUserIDs(_ context.Context, tenantID id.TenantID, userIDs []id.UserID) ([]*models.Patient, error) {
	want := make(map[id.UserID]struct{}, len(userIDs))
	for _, u := range userIDs {
		want[u] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Patient, 0)
	for _, p := range s.patients {
		if p.TenantID != tenantID || p.UserID == nil {
			continue
		}
		if _, ok := want[*p.UserID]; ok {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (s *InMemory) Update(_ context.Context, p *models.Patient) error {
	if p == nil {
		return fmt.Errorf("patient is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.patients[p.ID]
	if !ok || existing.TenantID != p.TenantID {
		return sentinel.ErrNotFound
	}
	cp := clone(p)
	cp.CreatedAt = existing.CreatedAt
	s.patients[p.ID] = cp
	return nil
}

func (s *InMemory) Delete(_ context.Context, tenantID id.TenantID, patientID id.PatientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[patientID]
	if !ok || p.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	delete(s.patients, patientID)
	return nil
}

func clone(p *models.Patient) *models.Patient {
	cp := *p
	if p.UserID != nil {
		userID := *p.UserID
		cp.UserID = &userID
	}
	if p.BirthDate != nil {
		birth := *p.BirthDate
		cp.BirthDate = &birth
	}
	return &cp
}
