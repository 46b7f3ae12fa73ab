package handler

import (
	"strings"

	"peegflow/internal/patient/models"
	"peegflow/internal/patient/service"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/httputil"
	"peegflow/pkg/validation"
)

// CreatePatientRequest registers a patient. CreateUser defaults to true,
// in which case email becomes mandatory.
type CreatePatientRequest struct {
	FullName       string                `json:"full_name" validate:"required,notblank,max=200"`
	Phone          string                `json:"phone" validate:"max=40"`
	Email          string                `json:"email" validate:"omitempty,email,max=255"`
	BirthDate      httputil.OptionalTime `json:"birth_date"`
	Sex            string                `json:"sex" validate:"max=40"`
	MaritalStatus  string                `json:"marital_status" validate:"max=40"`
	Address        string                `json:"address" validate:"max=500"`
	Occupation     string                `json:"occupation" validate:"max=200"`
	EmergencyName  string                `json:"emergency_name" validate:"max=200"`
	EmergencyPhone string                `json:"emergency_phone" validate:"max=40"`
	DocumentID     string                `json:"document_id" validate:"max=40"`
	CreateUser     *bool                 `json:"create_user"`
	UserPassword   string                `json:"user_password" validate:"omitempty,min=6,max=128"`
}

func (r *CreatePatientRequest) Normalize() {
	if r == nil {
		return
	}
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.UserPassword = strings.TrimSpace(r.UserPassword)
}

func (r *CreatePatientRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *CreatePatientRequest) command() service.CreateCommand {
	createUser := r.CreateUser == nil || *r.CreateUser
	return service.CreateCommand{
		Profile: models.Profile{
			FullName:       r.FullName,
			Phone:          r.Phone,
			Email:          r.Email,
			BirthDate:      r.BirthDate.Value,
			Sex:            r.Sex,
			MaritalStatus:  r.MaritalStatus,
			Address:        r.Address,
			Occupation:     r.Occupation,
			EmergencyName:  r.EmergencyName,
			EmergencyPhone: r.EmergencyPhone,
			DocumentID:     r.DocumentID,
		},
		CreateAccess: createUser,
		Password:     r.UserPassword,
	}
}

// UpdatePatientRequest patches a profile. Absent keys are left alone; an
// explicit null birth_date clears it.
type UpdatePatientRequest struct {
	FullName       *string               `json:"full_name" validate:"omitempty,notblank,max=200"`
	Phone          *string               `json:"phone" validate:"omitempty,max=40"`
	Email          *string               `json:"email" validate:"omitempty,email,max=255"`
	BirthDate      httputil.OptionalTime `json:"birth_date"`
	Sex            *string               `json:"sex" validate:"omitempty,max=40"`
	MaritalStatus  *string               `json:"marital_status" validate:"omitempty,max=40"`
	Address        *string               `json:"address" validate:"omitempty,max=500"`
	Occupation     *string               `json:"occupation" validate:"omitempty,max=200"`
	EmergencyName  *string               `json:"emergency_name" validate:"omitempty,max=200"`
	EmergencyPhone *string               `json:"emergency_phone" validate:"omitempty,max=40"`
	DocumentID     *string               `json:"document_id" validate:"omitempty,max=40"`
}

func (r *UpdatePatientRequest) Normalize() {
	if r == nil || r.Email == nil {
		return
	}
	email := strings.ToLower(strings.TrimSpace(*r.Email))
	r.Email = &email
}

func (r *UpdatePatientRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.patch().IsEmpty() {
		return dErrors.New(dErrors.CodeValidation, "at least one field is required")
	}
	return validation.Validate(r)
}

func (r *UpdatePatientRequest) patch() models.Patch {
	return models.Patch{
		FullName:       r.FullName,
		Phone:          r.Phone,
		Email:          r.Email,
		BirthDateSet:   r.BirthDate.Set,
		BirthDate:      r.BirthDate.Value,
		Sex:            r.Sex,
		MaritalStatus:  r.MaritalStatus,
		Address:        r.Address,
		Occupation:     r.Occupation,
		EmergencyName:  r.EmergencyName,
		EmergencyPhone: r.EmergencyPhone,
		DocumentID:     r.DocumentID,
	}
}

// AccessRequest restores portal access. An empty password falls back to
// the default.
type AccessRequest struct {
	Password string `json:"password" validate:"omitempty,min=6,max=128"`
}

func (r *AccessRequest) Normalize() {
	if r != nil {
		r.Password = strings.TrimSpace(r.Password)
	}
}

func (r *AccessRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}
