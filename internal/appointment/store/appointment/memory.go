package appointment

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"peegflow/internal/appointment/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/sentinel"
)

type slotKey struct {
	tenant id.TenantID
	start  int64
	end    int64
}

func keyOf(a *models.Appointment) slotKey {
	return slotKey{tenant: a.TenantID, start: a.StartAt.UnixNano(), end: a.EndAt.UnixNano()}
}

// InMemory keeps appointments in process. Every state change happens under
// one mutex, so a conditional transition observes the latest status.
type InMemory struct {
	mu    sync.RWMutex
	byID  map[id.AppointmentID]*models.Appointment
	slots map[slotKey]id.AppointmentID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:  make(map[id.AppointmentID]*models.Appointment),
		slots: make(map[slotKey]id.AppointmentID),
	}
}

// CreateIfAbsent inserts the slots whose exact (tenant, start, end) does
// not exist yet and returns how many were inserted.
func (s *InMemory) CreateIfAbsent(_ context.Context, slots []*models.Appointment) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	created := 0
	for _, a := range slots {
		if a == nil {
			return created, fmt.Errorf("appointment is required")
		}
		k := keyOf(a)
		if _, exists := s.slots[k]; exists {
			continue
		}
		s.byID[a.ID] = clone(a)
		s.slots[k] = a.ID
		created++
	}
	return created, nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID, apptID id.AppointmentID) (*models.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[apptID]
	if !ok || a.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	return clone(a), nil
}

// Claim books an available slot whose start is after now.
func (s *InMemory) Claim(_ context.Context, tenantID id.TenantID, apptID id.AppointmentID, patient id.UserID, now time.Time) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[apptID]
	if !ok || a.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	if a.Status != models.StatusAvailable || !a.StartAt.After(now) {
		return nil, sentinel.ErrInvalidState
	}
	a.Status = models.StatusBooked
	a.PatientUserID = &patient
	a.UpdatedAt = now
	return clone(a), nil
}

// Transition moves a slot to `to` if its current status is one of from.
func (s *InMemory) Transition(_ context.Context, tenantID id.TenantID, apptID id.AppointmentID, from []models.Status, to models.Status, now time.Time) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[apptID]
	if !ok || a.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	if !slices.Contains(from, a.Status) {
		return nil, sentinel.ErrInvalidState
	}
	a.Status = to
	a.UpdatedAt = now
	return clone(a), nil
}

// ListRange returns slots starting inside w, oldest first. A non-nil
// patient restricts the result to that patient's slots.
func (s *InMemory) ListRange(_ context.Context, tenantID id.TenantID, w id.Window, patient *id.UserID) ([]*models.Appointment, error) {
	return s.filter(tenantID, func(a *models.Appointment) bool {
		if !w.Contains(a.StartAt) {
			return false
		}
		return patient == nil || a.BookedBy(*patient)
	}, false), nil
}

func (s *InMemory) ListAvailable(_ context.Context, tenantID id.TenantID, after time.Time) ([]*models.Appointment, error) {
	return s.filter(tenantID, func(a *models.Appointment) bool {
		return a.Status == models.StatusAvailable && a.StartAt.After(after)
	}, false), nil
}

// ListByPatient returns a patient's slots, newest first.
func (s *InMemory) ListByPatient(_ context.Context, tenantID id.TenantID, patient id.UserID) ([]*models.Appointment, error) {
	return s.filter(tenantID, func(a *models.Appointment) bool {
		return a.BookedBy(patient)
	}, true), nil
}

func (s *InMemory) filter(tenantID id.TenantID, keep func(*models.Appointment) bool, desc bool) []*models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Appointment, 0)
	for _, a := range s.byID {
		if a.TenantID == tenantID && keep(a) {
			out = append(out, clone(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].StartAt.After(out[j].StartAt)
		}
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out
}

func clone(a *models.Appointment) *models.Appointment {
	cp := *a
	if a.PatientUserID != nil {
		patient := *a.PatientUserID
		cp.PatientUserID = &patient
	}
	return &cp
}
