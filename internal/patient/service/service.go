package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	apptmodels "peegflow/internal/appointment/models"
	"peegflow/internal/patient/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/audit"
	"peegflow/pkg/platform/sentinel"
	txcontext "peegflow/pkg/platform/tx"
	"peegflow/pkg/requestcontext"
)

var (
	errNotFound      = dErrors.New(dErrors.CodeNotFound, "patient not found")
	errEmailRequired = dErrors.New(dErrors.CodeBadRequest, "patient needs an email to have access")
)

// Service manages a tenant's patient records and their portal access.
// Every operation is admin only.
type Service struct {
	store    Store
	accounts Accounts
	logger   *slog.Logger
	audit    *audit.Logger
	tx       txcontext.Runner
}

// CreateCommand creates a patient. With CreateAccess the profile email is
// required and a patient login is created with Password.
type CreateCommand struct {
	Profile      models.Profile
	CreateAccess bool
	Password     string
}

func New(store Store, accounts Accounts, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("patient store is required")
	}
	if accounts == nil {
		return nil, errors.New("patient accounts are required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	tx := cfg.tx
	if tx == nil {
		tx = txcontext.NewMemoryRunner()
	}
	return &Service{
		store:    store,
		accounts: accounts,
		logger:   logger,
		audit:    cfg.auditLogger,
		tx:       tx,
	}, nil
}

func (s *Service) Create(ctx context.Context, p *id.Principal, cmd CreateCommand) (*models.Patient, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	patient, err := models.NewPatient(id.PatientID(uuid.New()), p.TenantID, cmd.Profile, now)
	if err != nil {
		return nil, err
	}
	if cmd.CreateAccess && patient.Email == "" {
		return nil, errEmailRequired
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if cmd.CreateAccess {
			userID, err := s.accounts.CreatePatientAccount(txCtx, p.TenantID, patient.FullName, patient.Email, password(cmd.Password))
			if err != nil {
				return err
			}
			patient.Link(&userID, now)
		}
		if err := s.store.Create(txCtx, patient); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create patient")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionPatientCreated,
		TenantID: p.TenantID.String(),
		ActorID:  p.UserID.String(),
		Subject:  patient.ID.String(),
	})
	return patient, nil
}

// List returns the tenant's patients ordered by name.
func (s *Service) List(ctx context.Context, p *id.Principal) ([]*models.Patient, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	patients, err := s.store.List(ctx, p.TenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list patients")
	}
	return patients, nil
}

func (s *Service) Get(ctx context.Context, p *id.Principal, patientID id.PatientID) (*models.Patient, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return s.find(ctx, p.TenantID, patientID)
}

// Update patches the profile. The linked account keeps its own email.
func (s *Service) Update(ctx context.Context, p *id.Principal, patientID id.PatientID, patch models.Patch) (*models.Patient, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	var patient *models.Patient
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.find(txCtx, p.TenantID, patientID)
		if err != nil {
			return err
		}
		if err := current.Apply(patch, requestcontext.Now(txCtx)); err != nil {
			return err
		}
		if err := s.store.Update(txCtx, current); err != nil {
			return translate(err, "failed to update patient")
		}
		patient = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

// GrantAccess creates or restores the patient's login with a new password.
func (s *Service) GrantAccess(ctx context.Context, p *id.Principal, patientID id.PatientID, pw string) (*models.Patient, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	var patient *models.Patient
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.find(txCtx, p.TenantID, patientID)
		if err != nil {
			return err
		}
		if current.Email == "" {
			return errEmailRequired
		}
		userID, err := s.accounts.GrantPatientAccess(txCtx, p.TenantID, current.UserID, current.FullName, current.Email, password(pw))
		if err != nil {
			return err
		}
		current.Link(&userID, requestcontext.Now(txCtx))
		if err := s.store.Update(txCtx, current); err != nil {
			return translate(err, "failed to link patient account")
		}
		patient = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionPatientAccessGranted,
		TenantID: p.TenantID.String(),
		ActorID:  p.UserID.String(),
		Subject:  patient.ID.String(),
	})
	return patient, nil
}

// RevokeAccess deactivates the linked login and unlinks it. The account
// is kept so its appointment history stays attributable. A patient
// without a login is left alone.
func (s *Service) RevokeAccess(ctx context.Context, p *id.Principal, patientID id.PatientID) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	revoked := false
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.find(txCtx, p.TenantID, patientID)
		if err != nil {
			return err
		}
		if current.UserID == nil {
			return nil
		}
		if err := s.accounts.RevokePatientAccess(txCtx, p.TenantID, *current.UserID); err != nil {
			return err
		}
		current.Link(nil, requestcontext.Now(txCtx))
		if err := s.store.Update(txCtx, current); err != nil {
			return translate(err, "failed to unlink patient account")
		}
		revoked = true
		return nil
	})
	if err != nil || !revoked {
		return err
	}
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionPatientAccessRevoked,
		TenantID: p.TenantID.String(),
		ActorID:  p.UserID.String(),
		Subject:  patientID.String(),
	})
	return nil
}

// Delete removes the record after deactivating its login.
func (s *Service) Delete(ctx context.Context, p *id.Principal, patientID id.PatientID) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.find(txCtx, p.TenantID, patientID)
		if err != nil {
			return err
		}
		if current.UserID != nil {
			if err := s.accounts.RevokePatientAccess(txCtx, p.TenantID, *current.UserID); err != nil {
				return err
			}
		}
		if err := s.store.Delete(txCtx, p.TenantID, patientID); err != nil {
			return translate(err, "failed to delete patient")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionPatientDeleted,
		TenantID: p.TenantID.String(),
		ActorID:  p.UserID.String(),
		Subject:  patientID.String(),
	})
	return nil
}

// ContactsByUser lets appointment listings show who booked a slot.
func (s *Service) ContactsByUser(ctx context.Context, tenantID id.TenantID, userIDs []id.UserID) (map[id.UserID]apptmodels.Contact, error) {
	patients, err := s.store.FindByUserIDs(ctx, tenantID, userIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[id.UserID]apptmodels.Contact, len(patients))
	for _, p := range patients {
		out[*p.UserID] = apptmodels.Contact{Name: p.FullName, Email: p.Email}
	}
	return out, nil
}

// Lookup returns the patient when it belongs to the tenant. Session notes
// call it before touching clinical records.
func (s *Service) Lookup(ctx context.Context, tenantID id.TenantID, patientID id.PatientID) (*models.Patient, error) {
	return s.find(ctx, tenantID, patientID)
}

func (s *Service) find(ctx context.Context, tenantID id.TenantID, patientID id.PatientID) (*models.Patient, error) {
	patient, err := s.store.FindByID(ctx, tenantID, patientID)
	if err != nil {
		return nil, translate(err, "failed to load patient")
	}
	return patient, nil
}

func password(pw string) string {
	if pw == "" {
		return models.DefaultAccessPassword
	}
	return pw
}

func requireAdmin(p *id.Principal) error {
	if p == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
	}
	if !p.IsAdmin() {
		return dErrors.New(dErrors.CodeForbidden, "Access denied")
	}
	return nil
}

func translate(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return errNotFound
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
