package service

import (
	"context"

	patientmodels "peegflow/internal/patient/models"
	"peegflow/internal/sessionnote/models"
	id "peegflow/pkg/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type Store interface {
	Create(ctx context.Context, n *models.Note) error
	FindByID(ctx context.Context, tenantID id.TenantID, noteID id.SessionNoteID) (*models.Note, error)
	UpdateUnlocked(ctx context.Context, n *models.Note) error
	ListByPatient(ctx context.Context, tenantID id.TenantID, patientID id.PatientID, w *id.Window) ([]*models.Note, error)
}

// Patients resolves the patient a note belongs to, scoped to the tenant.
type Patients interface {
	Lookup(ctx context.Context, tenantID id.TenantID, patientID id.PatientID) (*patientmodels.Patient, error)
}
