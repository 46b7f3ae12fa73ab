package handler

import (
	"time"

	"peegflow/internal/patient/models"
)

type PatientResponse struct {
	ID             string    `json:"id"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	BirthDate      *string   `json:"birth_date"`
	Sex            string    `json:"sex"`
	MaritalStatus  string    `json:"marital_status"`
	Address        string    `json:"address"`
	Occupation     string    `json:"occupation"`
	EmergencyName  string    `json:"emergency_name"`
	EmergencyPhone string    `json:"emergency_phone"`
	DocumentID     string    `json:"document_id"`
	UserID         *string   `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toPatientResponse(p *models.Patient) *PatientResponse {
	resp := &PatientResponse{
		ID:             p.ID.String(),
		FullName:       p.FullName,
		Phone:          p.Phone,
		Email:          p.Email,
		Sex:            p.Sex,
		MaritalStatus:  p.MaritalStatus,
		Address:        p.Address,
		Occupation:     p.Occupation,
		EmergencyName:  p.EmergencyName,
		EmergencyPhone: p.EmergencyPhone,
		DocumentID:     p.DocumentID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.BirthDate != nil {
		d := p.BirthDate.Format(time.DateOnly)
		resp.BirthDate = &d
	}
	if p.UserID != nil {
		u := p.UserID.String()
		resp.UserID = &u
	}
	return resp
}

func toPatientResponses(patients []*models.Patient) []*PatientResponse {
	out := make([]*PatientResponse, 0, len(patients))
	for _, p := range patients {
		out = append(out, toPatientResponse(p))
	}
	return out
}
