package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"peegflow/internal/sessionnote/models"
	"peegflow/internal/sessionnote/pdf"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/audit"
	"peegflow/pkg/platform/sentinel"
	"peegflow/pkg/requestcontext"
)

var errNotFound = dErrors.New(dErrors.CodeNotFound, "session note not found")

// unknownPatient is printed when the note outlived its patient record.
const unknownPatient = "Paciente"

// Service manages session notes. Every operation is admin only.
type Service struct {
	store    Store
	patients Patients
	logger   *slog.Logger
	audit    *audit.Logger
}

type CreateCommand struct {
	PatientID     id.PatientID
	AppointmentID *id.AppointmentID
	Content       string
	IsLocked      bool
	SessionDate   *time.Time
}

// Export is a rendered note ready for download.
type Export struct {
	Filename string
	Body     []byte
}

func New(store Store, patients Patients, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("session note store is required")
	}
	if patients == nil {
		return nil, errors.New("patient lookup is required")
	}
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, patients: patients, logger: logger, audit: cfg.auditLogger}, nil
}

func (s *Service) Create(ctx context.Context, p *id.Principal, cmd CreateCommand) (*models.Note, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if _, err := s.patients.Lookup(ctx, p.TenantID, cmd.PatientID); err != nil {
		return nil, err
	}
	note, err := models.NewNote(id.SessionNoteID(uuid.New()), p.TenantID, cmd.PatientID, cmd.AppointmentID,
		cmd.Content, cmd.IsLocked, cmd.SessionDate, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, note); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "appointment_id does not reference an appointment")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session note")
	}
	if note.IsLocked {
		s.logLocked(ctx, p, note)
	}
	return note, nil
}

func (s *Service) Get(ctx context.Context, p *id.Principal, noteID id.SessionNoteID) (*models.Note, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return s.find(ctx, p.TenantID, noteID)
}

// Update edits an unlocked note. Locking is one way.
func (s *Service) Update(ctx context.Context, p *id.Principal, noteID id.SessionNoteID, patch models.Patch) (*models.Note, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	note, err := s.find(ctx, p.TenantID, noteID)
	if err != nil {
		return nil, err
	}
	locked, err := note.Apply(patch, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateUnlocked(ctx, note); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, models.ErrLocked
		}
		return nil, translate(err, "failed to update session note")
	}
	if locked {
		s.logLocked(ctx, p, note)
	}
	return note, nil
}

// ListByPatient lists a patient's notes, newest first. A nil month lists
// every note.
func (s *Service) ListByPatient(ctx context.Context, p *id.Principal, patientID id.PatientID, month *time.Time) ([]*models.Note, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if _, err := s.patients.Lookup(ctx, p.TenantID, patientID); err != nil {
		return nil, err
	}
	var window *id.Window
	if month != nil {
		w := id.MonthWindow(*month)
		window = &w
	}
	notes, err := s.store.ListByPatient(ctx, p.TenantID, patientID, window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list session notes")
	}
	return notes, nil
}

// ExportPDF renders the note for printing.
func (s *Service) ExportPDF(ctx context.Context, p *id.Principal, noteID id.SessionNoteID) (*Export, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	note, err := s.find(ctx, p.TenantID, noteID)
	if err != nil {
		return nil, err
	}

	name := unknownPatient
	patient, err := s.patients.Lookup(ctx, p.TenantID, note.PatientID)
	switch {
	case err == nil:
		name = patient.FullName
	case !dErrors.HasCode(err, dErrors.CodeNotFound):
		return nil, err
	}

	var buf bytes.Buffer
	err = pdf.Render(&buf, pdf.Document{
		PatientName: name,
		SessionDate: note.SessionDate,
		CreatedAt:   note.CreatedAt,
		IsLocked:    note.IsLocked,
		Content:     note.Content,
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render session note")
	}

	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionSessionNoteExported,
		TenantID: p.TenantID.String(),
		ActorID:  p.UserID.String(),
		Subject:  note.ID.String(),
	})
	return &Export{Filename: note.Filename(), Body: buf.Bytes()}, nil
}

func (s *Service) logLocked(ctx context.Context, p *id.Principal, note *models.Note) {
	s.audit.Log(ctx, audit.Event{
		Action:   audit.ActionSessionNoteLocked,
		TenantID: p.TenantID.String(),
		ActorID:  p.UserID.String(),
		Subject:  note.ID.String(),
	})
}

func (s *Service) find(ctx context.Context, tenantID id.TenantID, noteID id.SessionNoteID) (*models.Note, error) {
	note, err := s.store.FindByID(ctx, tenantID, noteID)
	if err != nil {
		return nil, translate(err, "failed to load session note")
	}
	return note, nil
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
