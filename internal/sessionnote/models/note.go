package models

import (
	"time"

	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
)

// MaxContentLength bounds a note's text in bytes.
const MaxContentLength = 100_000

// ErrLocked is returned for any edit of a locked note.
var ErrLocked = dErrors.New(dErrors.CodeConflict, "session note is locked")

// Note is the clinical record of one session. Once locked it is read only.
type Note struct {
	ID            id.SessionNoteID
	TenantID      id.TenantID
	PatientID     id.PatientID
	AppointmentID *id.AppointmentID
	Content       string
	IsLocked      bool
	SessionDate   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewNote builds a note. A nil sessionDate means the day of now.
func NewNote(noteID id.SessionNoteID, tenantID id.TenantID, patientID id.PatientID, appointmentID *id.AppointmentID,
	content string, locked bool, sessionDate *time.Time, now time.Time,
) (*Note, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "session note must belong to a tenant")
	}
	if patientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "session note must belong to a patient")
	}
	if err := checkContent(content); err != nil {
		return nil, err
	}
	day := now
	if sessionDate != nil {
		day = *sessionDate
	}
	return &Note{
		ID:            noteID,
		TenantID:      tenantID,
		PatientID:     patientID,
		AppointmentID: appointmentID,
		Content:       content,
		IsLocked:      locked,
		SessionDate:   id.DayWindow(day).From,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func checkContent(content string) error {
	if len(content) > MaxContentLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "session note content is too long")
	}
	return nil
}

// Patch edits an unlocked note. Nil fields are left alone.
type Patch struct {
	Content     *string
	IsLocked    *bool
	SessionDate *time.Time
}

// Apply edits the note and reports whether this edit locked it.
func (n *Note) Apply(p Patch, now time.Time) (bool, error) {
	if n.IsLocked {
		return false, ErrLocked
	}
	if p.Content != nil {
		if err := checkContent(*p.Content); err != nil {
			return false, err
		}
		n.Content = *p.Content
	}
	if p.SessionDate != nil {
		n.SessionDate = id.DayWindow(*p.SessionDate).From
	}
	locked := false
	if p.IsLocked != nil && *p.IsLocked {
		n.IsLocked = true
		locked = true
	}
	n.UpdatedAt = now
	return locked, nil
}

// Filename is the download name of the note's PDF.
func (n *Note) Filename() string {
	return "prontuario_" + n.ID.String() + ".pdf"
}
