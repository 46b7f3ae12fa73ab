package handler

import (
	"strings"
	"time"

	"peegflow/internal/appointment/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/validation"
)

// BulkRequest generates consecutive slots over one day.
type BulkRequest struct {
	Date            string  `json:"date" validate:"required"`
	StartTime       string  `json:"start_time" validate:"required"`
	EndTime         string  `json:"end_time" validate:"required"`
	DurationMinutes int     `json:"duration_minutes" validate:"gt=0,max=1440"`
	Price           float64 `json:"price" validate:"gte=0"`
}

func (r *BulkRequest) Normalize() {
	if r == nil {
		return
	}
	r.Date = strings.TrimSpace(r.Date)
	r.StartTime = strings.TrimSpace(r.StartTime)
	r.EndTime = strings.TrimSpace(r.EndTime)
}

func (r *BulkRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *BulkRequest) plan() (models.SlotPlan, error) {
	day, err := id.ParseDate(r.Date)
	if err != nil {
		return models.SlotPlan{}, err
	}
	start, err := id.ParseClock(r.StartTime)
	if err != nil {
		return models.SlotPlan{}, err
	}
	end, err := id.ParseClock(r.EndTime)
	if err != nil {
		return models.SlotPlan{}, err
	}
	cents, err := models.PriceToCents(r.Price)
	if err != nil {
		return models.SlotPlan{}, err
	}
	return models.SlotPlan{
		Day:        day,
		Start:      start,
		End:        end,
		Duration:   time.Duration(r.DurationMinutes) * time.Minute,
		PriceCents: cents,
	}, nil
}

// AppointmentRequest names one appointment for book and cancel.
type AppointmentRequest struct {
	AppointmentID string `json:"appointment_id" validate:"required"`

	parsedID id.AppointmentID
}

func (r *AppointmentRequest) Normalize() {
	if r != nil {
		r.AppointmentID = strings.TrimSpace(r.AppointmentID)
	}
}

func (r *AppointmentRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	return r.parseID()
}

func (r *AppointmentRequest) parseID() error {
	apptID, err := id.ParseAppointmentID(r.AppointmentID)
	if err != nil {
		return err
	}
	r.parsedID = apptID
	return nil
}

// appointmentID is only set once Validate has succeeded.
func (r *AppointmentRequest) appointmentID() id.AppointmentID {
	return r.parsedID
}

// SetStatusRequest is the admin's status marking.
type SetStatusRequest struct {
	AppointmentRequest
	Status string `json:"status" validate:"required,oneof=done no_show canceled"`
}

func (r *SetStatusRequest) Normalize() {
	if r == nil {
		return
	}
	r.AppointmentRequest.Normalize()
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
}

func (r *SetStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	return r.parseID()
}
