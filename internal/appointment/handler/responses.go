package handler

import (
	"time"

	"peegflow/internal/appointment/models"
)

type AppointmentResponse struct {
	ID            string    `json:"id"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	Status        string    `json:"status"`
	Price         float64   `json:"price"`
	PatientUserID *string   `json:"patient_user_id"`
	PatientName   *string   `json:"patient_name"`
	PatientEmail  *string   `json:"patient_email"`
}

type BulkResponse struct {
	Created int `json:"created"`
}

func toAppointmentResponse(v *models.View) *AppointmentResponse {
	res := &AppointmentResponse{
		ID:      v.ID.String(),
		StartAt: v.StartAt,
		EndAt:   v.EndAt,
		Status:  string(v.Status),
		Price:   v.Price(),
	}
	if v.PatientUserID != nil {
		userID := v.PatientUserID.String()
		res.PatientUserID = &userID
	}
	if v.Contact != nil {
		res.PatientName = &v.Contact.Name
		res.PatientEmail = &v.Contact.Email
	}
	return res
}

func toAppointmentResponses(views []*models.View) []*AppointmentResponse {
	out := make([]*AppointmentResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toAppointmentResponse(v))
	}
	return out
}
