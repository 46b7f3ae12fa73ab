package service

import (
	"context"

	apptmodels "peegflow/internal/appointment/models"
	"peegflow/internal/finance/models"
	id "peegflow/pkg/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type ExpenseStore interface {
	Create(ctx context.Context, e *models.Expense) error
	ListRange(ctx context.Context, tenantID id.TenantID, w id.Window) ([]*models.Expense, error)
	Delete(ctx context.Context, tenantID id.TenantID, expenseID id.ExpenseID) error
}

// Appointments is the read side of the appointment store.
type Appointments interface {
	ListRange(ctx context.Context, tenantID id.TenantID, w id.Window, patient *id.UserID) ([]*apptmodels.Appointment, error)
}
