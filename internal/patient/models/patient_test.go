package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
)

var now = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func TestNewPatient(t *testing.T) {
	p, err := NewPatient(id.PatientID(uuid.New()), id.TenantID(uuid.New()), Profile{
		FullName: "  Maria Souza ",
		Email:    " Maria@Example.COM ",
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", p.FullName)
	assert.Equal(t, "maria@example.com", p.Email)
	assert.Nil(t, p.UserID)

	_, err = NewPatient(id.PatientID(uuid.New()), id.TenantID(uuid.New()), Profile{FullName: "   "}, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestApply(t *testing.T) {
	birth := time.Date(1990, 3, 4, 0, 0, 0, 0, time.UTC)
	p, err := NewPatient(id.PatientID(uuid.New()), id.TenantID(uuid.New()), Profile{
		FullName: "Maria", Phone: "1199", BirthDate: &birth,
	}, now)
	require.NoError(t, err)

	empty := ""
	occupation := " Engenheira "
	later := now.Add(time.Hour)
	require.NoError(t, p.Apply(Patch{Phone: &empty, Occupation: &occupation, BirthDateSet: true}, later))
	assert.Equal(t, "", p.Phone)
	assert.Equal(t, "Engenheira", p.Occupation)
	assert.Nil(t, p.BirthDate)
	assert.Equal(t, "Maria", p.FullName)
	assert.Equal(t, later, p.UpdatedAt)

	blank := " "
	assert.Error(t, p.Apply(Patch{FullName: &blank}, later))
	assert.Equal(t, "Maria", p.FullName, "failed patch leaves the record untouched")
}

func TestPatchIsEmpty(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{BirthDateSet: true}.IsEmpty())
}
