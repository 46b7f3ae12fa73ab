package service

import (
	"context"
	"time"

	"peegflow/internal/appointment/models"
	id "peegflow/pkg/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// Store persists appointments. Claim and Transition are conditional writes
// returning sentinel.ErrInvalidState when the status precondition no
// longer holds.
type Store interface {
	CreateIfAbsent(ctx context.Context, slots []*models.Appointment) (int, error)
	FindByID(ctx context.Context, tenantID id.TenantID, apptID id.AppointmentID) (*models.Appointment, error)
	Claim(ctx context.Context, tenantID id.TenantID, apptID id.AppointmentID, patient id.UserID, now time.Time) (*models.Appointment, error)
	Transition(ctx context.Context, tenantID id.TenantID, apptID id.AppointmentID, from []models.Status, to models.Status, now time.Time) (*models.Appointment, error)
	ListRange(ctx context.Context, tenantID id.TenantID, w id.Window, patient *id.UserID) ([]*models.Appointment, error)
	ListAvailable(ctx context.Context, tenantID id.TenantID, after time.Time) ([]*models.Appointment, error)
	ListByPatient(ctx context.Context, tenantID id.TenantID, patient id.UserID) ([]*models.Appointment, error)
}

// PatientDirectory resolves booking accounts to patient profiles.
type PatientDirectory interface {
	ContactsByUser(ctx context.Context, tenantID id.TenantID, userIDs []id.UserID) (map[id.UserID]models.Contact, error)
}
