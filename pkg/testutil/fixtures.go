package testutil

import (
	"time"

	"github.com/google/uuid"

	apptmodels "peegflow/internal/appointment/models"
	authmodels "peegflow/internal/auth/models"
	tenantmodels "peegflow/internal/tenant/models"
	id "peegflow/pkg/domain"
)

// TestIDs provides pre-generated IDs for deterministic test data.
var TestIDs = struct {
	TenantID1 id.TenantID
	TenantID2 id.TenantID
	UserID1   id.UserID
	UserID2   id.UserID
}{
	TenantID1: id.TenantID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000001")),
	TenantID2: id.TenantID(uuid.MustParse("aaaa0000-0000-0000-0000-000000000002")),
	UserID1:   id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	UserID2:   id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
}

// FixedNow is the clock most package tests run at: 2025-06-01 08:00 UTC.
var FixedNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

// TenantBuilder provides a fluent interface for building test tenants.
type TenantBuilder struct {
	tenant *tenantmodels.Tenant
}

func NewTenantBuilder() *TenantBuilder {
	return &TenantBuilder{
		tenant: &tenantmodels.Tenant{
			ID:        TestIDs.TenantID1,
			Name:      "Clínica Demo",
			Slug:      "demo",
			IsActive:  true,
			CreatedAt: FixedNow,
			UpdatedAt: FixedNow,
		},
	}
}

func (b *TenantBuilder) WithID(tenantID id.TenantID) *TenantBuilder {
	b.tenant.ID = tenantID
	return b
}

func (b *TenantBuilder) WithSlug(slug string) *TenantBuilder {
	b.tenant.Slug = slug
	return b
}

func (b *TenantBuilder) Inactive() *TenantBuilder {
	b.tenant.IsActive = false
	return b
}

func (b *TenantBuilder) LicensedUntil(t time.Time) *TenantBuilder {
	b.tenant.LicenseExpiresAt = &t
	return b
}

func (b *TenantBuilder) Build() *tenantmodels.Tenant {
	return b.tenant
}

// UserBuilder builds tenant accounts. The password hash is a placeholder;
// tests that log in hash a real password instead.
type UserBuilder struct {
	user *authmodels.User
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		user: &authmodels.User{
			ID:           id.UserID(uuid.New()),
			TenantID:     TestIDs.TenantID1,
			Name:         "Test User",
			Email:        "user@peegflow.test",
			PasswordHash: "not-a-real-hash",
			Role:         id.RolePatient,
			IsActive:     true,
			CreatedAt:    FixedNow,
			UpdatedAt:    FixedNow,
		},
	}
}

func (b *UserBuilder) WithID(userID id.UserID) *UserBuilder {
	b.user.ID = userID
	return b
}

func (b *UserBuilder) WithTenantID(tenantID id.TenantID) *UserBuilder {
	b.user.TenantID = tenantID
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = authmodels.NormalizeEmail(email)
	return b
}

func (b *UserBuilder) WithRole(role id.Role) *UserBuilder {
	b.user.Role = role
	return b
}

func (b *UserBuilder) Inactive() *UserBuilder {
	b.user.IsActive = false
	return b
}

func (b *UserBuilder) Build() *authmodels.User {
	return b.user
}

// AppointmentBuilder builds a one-hour available slot starting at 09:00
// on the FixedNow day.
type AppointmentBuilder struct {
	appt *apptmodels.Appointment
}

func NewAppointmentBuilder() *AppointmentBuilder {
	start := FixedNow.Truncate(24 * time.Hour).Add(9 * time.Hour)
	return &AppointmentBuilder{
		appt: &apptmodels.Appointment{
			ID:         id.AppointmentID(uuid.New()),
			TenantID:   TestIDs.TenantID1,
			StartAt:    start,
			EndAt:      start.Add(time.Hour),
			Status:     apptmodels.StatusAvailable,
			PriceCents: 10000,
			CreatedAt:  FixedNow,
			UpdatedAt:  FixedNow,
		},
	}
}

func (b *AppointmentBuilder) WithTenantID(tenantID id.TenantID) *AppointmentBuilder {
	b.appt.TenantID = tenantID
	return b
}

func (b *AppointmentBuilder) StartingAt(start time.Time, d time.Duration) *AppointmentBuilder {
	b.appt.StartAt = start
	b.appt.EndAt = start.Add(d)
	return b
}

func (b *AppointmentBuilder) WithPrice(cents int64) *AppointmentBuilder {
	b.appt.PriceCents = cents
	return b
}

// BookedBy marks the slot booked by userID.
func (b *AppointmentBuilder) BookedBy(userID id.UserID) *AppointmentBuilder {
	b.appt.Status = apptmodels.StatusBooked
	b.appt.PatientUserID = &userID
	return b
}

func (b *AppointmentBuilder) WithStatus(status apptmodels.Status) *AppointmentBuilder {
	b.appt.Status = status
	return b
}

func (b *AppointmentBuilder) Build() *apptmodels.Appointment {
	return b.appt
}
