package expense

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"peegflow/internal/finance/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/sentinel"
)

type InMemory struct {
	mu       sync.RWMutex
	expenses map[id.ExpenseID]*models.Expense
}

func NewInMemory() *InMemory {
	return &InMemory{expenses: make(map[id.ExpenseID]*models.Expense)}
}

func (s *InMemory) Create(_ context.Context, e *models.Expense) error {
	if e == nil {
		return fmt.Errorf("expense is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.expenses[e.ID]; exists {
		return fmt.Errorf("expense %s: %w", e.ID, sentinel.ErrAlreadyUsed)
	}
	c := *e
	s.expenses[e.ID] = &c
	return nil
}

// ListRange returns the tenant's expenses spent inside w, newest first.
func (s *InMemory) ListRange(_ context.Context, tenantID id.TenantID, w id.Window) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Expense, 0)
	for _, e := range s.expenses {
		if e.TenantID == tenantID && w.Contains(e.SpentAt) {
			c := *e
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SpentAt.Equal(out[j].SpentAt) {
			return out[i].SpentAt.After(out[j].SpentAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, tenantID id.TenantID, expenseID id.ExpenseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[expenseID]
	if !ok || e.TenantID != tenantID {
		return sentinel.ErrNotFound
	}
	delete(s.expenses, expenseID)
	return nil
}
