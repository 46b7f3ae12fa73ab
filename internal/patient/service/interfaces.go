package service

import (
	"context"

	"peegflow/internal/patient/models"
	id "peegflow/pkg/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// Store persists patient records.
type Store interface {
	Create(ctx context.Context, p *models.Patient) error
	FindByID(ctx context.Context, tenantID id.TenantID, patientID id.PatientID) (*models.Patient, error)
	List(ctx context.Context, tenantID id.TenantID) ([]*models.Patient, error)
	FindByUserIDs(ctx context.Context, tenantID id.TenantID, userIDs []id.UserID) ([]*models.Patient, error)
	Update(ctx context.Context, p *models.Patient) error
	Delete(ctx context.Context, tenantID id.TenantID, patientID id.PatientID) error
}

// Accounts manages patient logins. It is implemented by the auth service
// and called inside the patient's unit of work.
type Accounts interface {
	CreatePatientAccount(ctx context.Context, tenantID id.TenantID, name, email, password string) (id.UserID, error)
	GrantPatientAccess(ctx context.Context, tenantID id.TenantID, linked *id.UserID, name, email, password string) (id.UserID, error)
	RevokePatientAccess(ctx context.Context, tenantID id.TenantID, userID id.UserID) error
}
