// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "peegflow/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing UserID where TenantID is expected.
type (
	TenantID        uuid.UUID
	UserID          uuid.UUID
	PlatformAdminID uuid.UUID
	PatientID       uuid.UUID
	AppointmentID   uuid.UUID
	SessionNoteID   uuid.UUID
	ExpenseID       uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, token claims).

func ParseTenantID(s string) (TenantID, error) {
	id, err := parseUUID(s, "tenant ID")
	return TenantID(id), err
}

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParsePlatformAdminID(s string) (PlatformAdminID, error) {
	id, err := parseUUID(s, "platform admin ID")
	return PlatformAdminID(id), err
}

func ParsePatientID(s string) (PatientID, error) {
	id, err := parseUUID(s, "patient ID")
	return PatientID(id), err
}

func ParseAppointmentID(s string) (AppointmentID, error) {
	id, err := parseUUID(s, "appointment ID")
	return AppointmentID(id), err
}

func ParseSessionNoteID(s string) (SessionNoteID, error) {
	id, err := parseUUID(s, "session note ID")
	return SessionNoteID(id), err
}

func ParseExpenseID(s string) (ExpenseID, error) {
	id, err := parseUUID(s, "expense ID")
	return ExpenseID(id), err
}

func (id TenantID) String() string        { return uuid.UUID(id).String() }
func (id UserID) String() string          { return uuid.UUID(id).String() }
func (id PlatformAdminID) String() string { return uuid.UUID(id).String() }
func (id PatientID) String() string       { return uuid.UUID(id).String() }
func (id AppointmentID) String() string   { return uuid.UUID(id).String() }
func (id SessionNoteID) String() string   { return uuid.UUID(id).String() }
func (id ExpenseID) String() string       { return uuid.UUID(id).String() }

func (id TenantID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id PlatformAdminID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id PatientID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id AppointmentID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id SessionNoteID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ExpenseID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

// parseUUID rejects empty, malformed and nil UUIDs.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
