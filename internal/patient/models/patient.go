package models

import (
	"strings"
	"time"

	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/validation"
)

// DefaultAccessPassword is used when an admin provisions patient access
// without choosing a password.
const DefaultAccessPassword = "123456"

// Profile is the clinical registration form of a patient. Empty strings
// mean "not informed".
type Profile struct {
	FullName       string
	Phone          string
	Email          string
	BirthDate      *time.Time
	Sex            string
	MaritalStatus  string
	Address        string
	Occupation     string
	EmergencyName  string
	EmergencyPhone string
	DocumentID     string
}

// Normalize trims every field and lowercases the email.
func (p *Profile) Normalize() {
	p.FullName = strings.TrimSpace(p.FullName)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Sex = strings.TrimSpace(p.Sex)
	p.MaritalStatus = strings.TrimSpace(p.MaritalStatus)
	p.Address = strings.TrimSpace(p.Address)
	p.Occupation = strings.TrimSpace(p.Occupation)
	p.EmergencyName = strings.TrimSpace(p.EmergencyName)
	p.EmergencyPhone = strings.TrimSpace(p.EmergencyPhone)
	p.DocumentID = strings.TrimSpace(p.DocumentID)
}

// Patient is a tenant's patient record. UserID links the login account,
// when the patient has access to the portal.
type Patient struct {
	ID       id.PatientID
	TenantID id.TenantID
	UserID   *id.UserID
	Profile
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewPatient(patientID id.PatientID, tenantID id.TenantID, profile Profile, now time.Time) (*Patient, error) {
	profile.Normalize()
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "patient must belong to a tenant")
	}
	if err := checkName(profile.FullName); err != nil {
		return nil, err
	}
	return &Patient{
		ID:        patientID,
		TenantID:  tenantID,
		Profile:   profile,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func checkName(name string) error {
	if name == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "full name cannot be empty")
	}
	if len(name) > validation.MaxNameLength {
		return dErrors.New(dErrors.CodeInvariantViolation, "full name is too long")
	}
	return nil
}

// Link binds a login account. A nil userID unlinks.
func (p *Patient) Link(userID *id.UserID, now time.Time) {
	p.UserID = userID
	p.UpdatedAt = now
}

// Patch is a partial profile update. A nil field is left alone; a set
// field, including an empty string, replaces the stored value.
type Patch struct {
	FullName       *string
	Phone          *string
	Email          *string
	BirthDateSet   bool
	BirthDate      *time.Time
	Sex            *string
	MaritalStatus  *string
	Address        *string
	Occupation     *string
	EmergencyName  *string
	EmergencyPhone *string
	DocumentID     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.FullName == nil && p.Phone == nil && p.Email == nil && !p.BirthDateSet &&
		p.Sex == nil && p.MaritalStatus == nil && p.Address == nil && p.Occupation == nil &&
		p.EmergencyName == nil && p.EmergencyPhone == nil && p.DocumentID == nil
}

// Apply mutates the patient and re-normalizes the profile.
func (p *Patient) Apply(patch Patch, now time.Time) error {
	next := p.Profile
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&next.FullName, patch.FullName)
	set(&next.Phone, patch.Phone)
	set(&next.Email, patch.Email)
	set(&next.Sex, patch.Sex)
	set(&next.MaritalStatus, patch.MaritalStatus)
	set(&next.Address, patch.Address)
	set(&next.Occupation, patch.Occupation)
	set(&next.EmergencyName, patch.EmergencyName)
	set(&next.EmergencyPhone, patch.EmergencyPhone)
	set(&next.DocumentID, patch.DocumentID)
	if patch.BirthDateSet {
		next.BirthDate = patch.BirthDate
	}
	next.Normalize()
	if err := checkName(next.FullName); err != nil {
		return err
	}
	p.Profile = next
	p.UpdatedAt = now
	return nil
}
