package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"peegflow/internal/appointment/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/sentinel"
	"peegflow/pkg/testutil"
)

type InMemorySuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = testutil.FixedNow
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) seed(appts ...*models.Appointment) {
	n, err := s.store.CreateIfAbsent(s.ctx, appts)
	s.Require().NoError(err)
	s.Require().Equal(len(appts), n)
}

func (s *InMemorySuite) TestCreateIfAbsentSkipsExactDuplicates() {
	a := testutil.NewAppointmentBuilder().Build()
	s.seed(a)

	dup := testutil.NewAppointmentBuilder().Build()
	otherTenant := testutil.NewAppointmentBuilder().WithTenantID(testutil.TestIDs.TenantID2).Build()
	shorter := testutil.NewAppointmentBuilder().StartingAt(a.StartAt, 30*time.Minute).Build()

	n, err := s.store.CreateIfAbsent(s.ctx, []*models.Appointment{dup, otherTenant, shorter})
	s.Require().NoError(err)
	s.Equal(2, n)

	_, err = s.store.FindByID(s.ctx, a.TenantID, dup.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestFindByIDIsTenantScoped() {
	a := testutil.NewAppointmentBuilder().Build()
	s.seed(a)

	_, err := s.store.FindByID(s.ctx, testutil.TestIDs.TenantID2, a.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	found, err := s.store.FindByID(s.ctx, a.TenantID, a.ID)
	s.Require().NoError(err)
	found.Status = models.StatusDone
	again, _ := s.store.FindByID(s.ctx, a.TenantID, a.ID)
	s.Equal(models.StatusAvailable, again.Status, "returned values are copies")
}

func (s *InMemorySuite) TestClaim() {
	a := testutil.NewAppointmentBuilder().Build()
	s.seed(a)
	patient := testutil.TestIDs.UserID1

	booked, err := s.store.Claim(s.ctx, a.TenantID, a.ID, patient, s.now)
	s.Require().NoError(err)
	s.Equal(models.StatusBooked, booked.Status)
	s.True(booked.BookedBy(patient))

	_, err = s.store.Claim(s.ctx, a.TenantID, a.ID, testutil.TestIDs.UserID2, s.now)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	_, err = s.store.Claim(s.ctx, a.TenantID, id.AppointmentID(uuid.New()), patient, s.now)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestClaimPastSlot() {
	a := testutil.NewAppointmentBuilder().StartingAt(s.now.Add(-time.Hour), time.Hour).Build()
	s.seed(a)
	_, err := s.store.Claim(s.ctx, a.TenantID, a.ID, testutil.TestIDs.UserID1, s.now)
	s.ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *InMemorySuite) TestTransition() {
	a := testutil.NewAppointmentBuilder().BookedBy(testutil.TestIDs.UserID1).Build()
	s.seed(a)

	done, err := s.store.Transition(s.ctx, a.TenantID, a.ID, models.Sources(models.StatusDone), models.StatusDone, s.now)
	s.Require().NoError(err)
	s.Equal(models.StatusDone, done.Status)
	s.True(done.BookedBy(testutil.TestIDs.UserID1), "patient stays bound after done")

	_, err = s.store.Transition(s.ctx, a.TenantID, a.ID, models.Sources(models.StatusCanceled), models.StatusCanceled, s.now)
	s.ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *InMemorySuite) TestListings() {
	day := s.now.Truncate(24 * time.Hour)
	patient := testutil.TestIDs.UserID1
	first := testutil.NewAppointmentBuilder().StartingAt(day.Add(9*time.Hour), time.Hour).BookedBy(patient).Build()
	second := testutil.NewAppointmentBuilder().StartingAt(day.Add(10*time.Hour), time.Hour).Build()
	past := testutil.NewAppointmentBuilder().StartingAt(day.Add(7*time.Hour), time.Hour).Build()
	nextDay := testutil.NewAppointmentBuilder().StartingAt(day.AddDate(0, 0, 1).Add(9*time.Hour), time.Hour).BookedBy(patient).Build()
	foreign := testutil.NewAppointmentBuilder().WithTenantID(testutil.TestIDs.TenantID2).StartingAt(day.Add(11*time.Hour), time.Hour).Build()
	s.seed(nextDay, second, first, past, foreign)

	s.Run("range is inclusive and ordered", func() {
		list, err := s.store.ListRange(s.ctx, testutil.TestIDs.TenantID1, id.DayWindow(day), nil)
		s.Require().NoError(err)
		s.Require().Len(list, 3)
		s.Equal(past.ID, list[0].ID)
		s.Equal(second.ID, list[2].ID)
	})

	s.Run("range restricted to a patient", func() {
		w, err := id.DaysWindow(day, day.AddDate(0, 0, 1))
		s.Require().NoError(err)
		list, err := s.store.ListRange(s.ctx, testutil.TestIDs.TenantID1, w, &patient)
		s.Require().NoError(err)
		s.Len(list, 2)
	})

	s.Run("available excludes past and booked", func() {
		list, err := s.store.ListAvailable(s.ctx, testutil.TestIDs.TenantID1, s.now)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(second.ID, list[0].ID)
	})

	s.Run("mine is newest first", func() {
		list, err := s.store.ListByPatient(s.ctx, testutil.TestIDs.TenantID1, patient)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(nextDay.ID, list[0].ID)
	})
}

func TestInMemoryConcurrentClaim(t *testing.T) {
	store := NewInMemory()
	a := testutil.NewAppointmentBuilder().Build()
	_, err := store.CreateIfAbsent(context.Background(), []*models.Appointment{a})
	require.NoError(t, err)

	patients := make([]id.UserID, 20)
	for i := range patients {
		patients[i] = id.UserID(uuid.New())
	}
	result := testutil.RunConcurrent(len(patients), func(idx int) error {
		_, err := store.Claim(context.Background(), a.TenantID, a.ID, patients[idx], testutil.FixedNow)
		return err
	})

	assert.Equal(t, int32(1), result.Successes)
	assert.Equal(t, int32(len(patients)-1), result.Conflicts)

	final, err := store.FindByID(context.Background(), a.TenantID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBooked, final.Status)
	require.NotNil(t, final.PatientUserID)
}
