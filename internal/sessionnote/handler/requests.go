package handler

import (
	"strings"
	"time"

	"peegflow/internal/sessionnote/models"
	"peegflow/internal/sessionnote/service"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/validation"
)

// Session dates are accepted as ISO dates or in the Brazilian layout.
const brazilianDate = "02/01/2006"

func parseSessionDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(brazilianDate, raw); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := id.ParseDate(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "session_date must be YYYY-MM-DD or DD/MM/YYYY")
	}
	return &t, nil
}

type CreateNoteRequest struct {
	PatientID     string  `json:"patient_id" validate:"required"`
	AppointmentID *string `json:"appointment_id"`
	Content       string  `json:"content" validate:"max=100000"`
	IsLocked      bool    `json:"is_locked"`
	SessionDate   string  `json:"session_date"`

	cmd service.CreateCommand
}

func (r *CreateNoteRequest) Normalize() {
	if r == nil {
		return
	}
	r.PatientID = strings.TrimSpace(r.PatientID)
	if r.AppointmentID != nil && strings.TrimSpace(*r.AppointmentID) == "" {
		r.AppointmentID = nil
	}
}

// Validate parses identifiers and dates into the create command.
func (r *CreateNoteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	patientID, err := id.ParsePatientID(r.PatientID)
	if err != nil {
		return err
	}
	r.cmd = service.CreateCommand{PatientID: patientID, Content: r.Content, IsLocked: r.IsLocked}
	if r.AppointmentID != nil {
		apptID, err := id.ParseAppointmentID(strings.TrimSpace(*r.AppointmentID))
		if err != nil {
			return err
		}
		r.cmd.AppointmentID = &apptID
	}
	r.cmd.SessionDate, err = parseSessionDate(r.SessionDate)
	return err
}

type UpdateNoteRequest struct {
	Content     *string `json:"content" validate:"omitempty,max=100000"`
	IsLocked    *bool   `json:"is_locked"`
	SessionDate *string `json:"session_date"`

	patch models.Patch
}

func (r *UpdateNoteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	r.patch = models.Patch{Content: r.Content, IsLocked: r.IsLocked}
	if r.SessionDate != nil {
		day, err := parseSessionDate(*r.SessionDate)
		if err != nil {
			return err
		}
		r.patch.SessionDate = day
	}
	return nil
}
