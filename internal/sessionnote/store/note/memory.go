package note

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"peegflow/internal/sessionnote/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/sentinel"
)

// InMemory keeps notes in process and hands out copies.
type InMemory struct {
	mu    sync.RWMutex
	notes map[id.SessionNoteID]*models.Note
}

func NewInMemory() *InMemory {
	return &InMemory{notes: make(map[id.SessionNoteID]*models.Note)}
}

func (s *InMemory) Create(_ context.Context, n *models.Note) error {
	if n == nil {
		return fmt.Errorf("session note is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.notes[n.ID]; exists {
		return fmt.Errorf("session note %s: %w", n.ID, sentinel.ErrAlreadyUsed)
	}
	s.notes[n.ID] = clone(n)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID, noteID id.SessionNoteID) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notes[noteID]
	if !ok || n.TenantID != tenantID {
		return nil, sentinel.ErrNotFound
	}
	return clone(n), nil
}

// UpdateUnlocked replaces a note that is still unlocked in storage.
func (s *InMemory) UpdateUnlocked(_ context.Context, n *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.notes[n.ID]
	if !ok || current.TenantID != n.TenantID {
		return sentinel.ErrNotFound
	}
	if current.IsLocked {
		return sentinel.ErrInvalidState
	}
	s.notes[n.ID] = clone(n)
	return nil
}

// ListByPatient returns the patient's notes, newest session first. A nil
// window returns all of them.
func (s *InMemory) ListByPatient(_ context.Context, tenantID id.TenantID, patientID id.PatientID, w *id.Window) ([]*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Note, 0)
	for _, n := range s.notes {
		if n.TenantID != tenantID || n.PatientID != patientID {
			continue
		}
		if w != nil && !w.Contains(n.SessionDate) {
			continue
		}
		out = append(out, clone(n))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SessionDate.Equal(out[j].SessionDate) {
			return out[i].SessionDate.After(out[j].SessionDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func clone(n *models.Note) *models.Note {
	c := *n
	if n.AppointmentID != nil {
		apptID := *n.AppointmentID
		c.AppointmentID = &apptID
	}
	return &c
}
