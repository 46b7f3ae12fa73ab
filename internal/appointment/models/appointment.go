package models

import (
	"math"
	"time"

	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
)

// Status is the lifecycle state of an appointment slot.
type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusDone      Status = "done"
	StatusCanceled  Status = "canceled"
	StatusNoShow    Status = "no_show"
)

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "status must be one of available, booked, done, canceled, no_show")
	}
	return st, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBooked, StatusDone, StatusCanceled, StatusNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is accepted.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCanceled || s == StatusNoShow
}

func (s Status) String() string { return string(s) }

// Appointment is a bookable slot of one tenant. PatientUserID is set once
// the slot is booked and kept through the terminal states.
type Appointment struct {
	ID            id.AppointmentID
	TenantID      id.TenantID
	StartAt       time.Time
	EndAt         time.Time
	Status        Status
	PriceCents    int64
	PatientUserID *id.UserID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Price returns the price in currency units.
func (a *Appointment) Price() float64 {
	return float64(a.PriceCents) / 100
}

// BookedBy reports whether userID holds this slot.
func (a *Appointment) BookedBy(userID id.UserID) bool {
	return a.PatientUserID != nil && *a.PatientUserID == userID
}

// CanBook returns nil when the slot may move to booked at now.
func (a *Appointment) CanBook(now time.Time) error {
	if a.Status != StatusAvailable {
		return ErrSlotUnavailable
	}
	if !a.StartAt.After(now) {
		return ErrSlotUnavailable
	}
	return nil
}

// CanCancel checks the cancel rules for a principal with the given role.
// Patients may cancel only their own booked slot. Admins may cancel any
// non-terminal slot; canceling an available slot blocks it.
func (a *Appointment) CanCancel(role id.Role, userID id.UserID) error {
	if role == id.RolePatient {
		if !a.BookedBy(userID) {
			return ErrNotYours
		}
		if a.Status != StatusBooked {
			return dErrors.New(dErrors.CodeConflict, "only booked appointments can be canceled")
		}
		return nil
	}
	if a.Status.IsTerminal() {
		return terminalErr(a.Status)
	}
	return nil
}

// CanSetStatus checks an admin status change. Only done, no_show and
// canceled may be set; done and no_show require a booked slot.
func (a *Appointment) CanSetStatus(to Status) error {
	switch to {
	case StatusDone, StatusNoShow, StatusCanceled:
	default:
		return dErrors.New(dErrors.CodeValidation, "status must be one of done, no_show, canceled")
	}
	if a.Status.IsTerminal() {
		return terminalErr(a.Status)
	}
	if to != StatusCanceled && a.Status != StatusBooked {
		return dErrors.New(dErrors.CodeConflict, "only booked appointments can be marked "+string(to))
	}
	return nil
}

// Sources returns the states from which a transition to `to` is legal.
// Stores condition their writes on it.
func Sources(to Status) []Status {
	switch to {
	case StatusBooked:
		return []Status{StatusAvailable}
	case StatusDone, StatusNoShow:
		return []Status{StatusBooked}
	case StatusCanceled:
		return []Status{StatusAvailable, StatusBooked}
	}
	return nil
}

func terminalErr(s Status) error {
	return dErrors.New(dErrors.CodeConflict, "appointment is already "+string(s))
}

var (
	ErrSlotUnavailable = dErrors.New(dErrors.CodeConflict, "slot unavailable")
	ErrNotYours        = dErrors.New(dErrors.CodeForbidden, "not your appointment")
	ErrNotFound        = dErrors.New(dErrors.CodeNotFound, "appointment not found")
)

// PriceToCents converts a wire price to integer cents, rounding half away
// from zero.
func PriceToCents(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "price must be a non-negative number")
	}
	return int64(math.Round(price * 100)), nil
}
