package handler

import (
	"time"

	"peegflow/internal/sessionnote/models"
	id "peegflow/pkg/domain"
)

type NoteResponse struct {
	ID            string    `json:"id"`
	PatientID     string    `json:"patient_id"`
	AppointmentID *string   `json:"appointment_id"`
	Content       string    `json:"content"`
	IsLocked      bool      `json:"is_locked"`
	SessionDate   string    `json:"session_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toNoteResponse(n *models.Note) *NoteResponse {
	resp := &NoteResponse{
		ID:          n.ID.String(),
		PatientID:   n.PatientID.String(),
		Content:     n.Content,
		IsLocked:    n.IsLocked,
		SessionDate: n.SessionDate.Format(id.DateLayout),
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
	if n.AppointmentID != nil {
		apptID := n.AppointmentID.String()
		resp.AppointmentID = &apptID
	}
	return resp
}

func toNoteResponses(notes []*models.Note) []*NoteResponse {
	out := make([]*NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	return out
}
