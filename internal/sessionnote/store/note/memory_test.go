package note

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"peegflow/internal/sessionnote/models"
	id "peegflow/pkg/domain"
	"peegflow/pkg/platform/sentinel"
	"peegflow/pkg/testutil"
)

type InMemorySuite struct {
	suite.Suite
	store   *InMemory
	ctx     context.Context
	patient id.PatientID
}

func (s *InMemorySuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.patient = id.PatientID(uuid.New())
}

func TestInMemorySuite(t *testing.T) {
	suite.Run(t, new(InMemorySuite))
}

func (s *InMemorySuite) add(tenantID id.TenantID, day time.Time, createdAt time.Time) *models.Note {
	n, err := models.NewNote(id.SessionNoteID(uuid.New()), tenantID, s.patient, nil, "nota", false, &day, createdAt)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, n))
	return n
}

func (s *InMemorySuite) TestFindIsTenantScoped() {
	n := s.add(testutil.TestIDs.TenantID1, testutil.FixedNow, testutil.FixedNow)

	got, err := s.store.FindByID(s.ctx, testutil.TestIDs.TenantID1, n.ID)
	s.Require().NoError(err)
	s.Equal(n.Content, got.Content)

	_, err = s.store.FindByID(s.ctx, testutil.TestIDs.TenantID2, n.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Create(s.ctx, n), sentinel.ErrAlreadyUsed)
}

func (s *InMemorySuite) TestUpdateUnlocked() {
	n := s.add(testutil.TestIDs.TenantID1, testutil.FixedNow, testutil.FixedNow)

	n.Content = "revisada"
	n.IsLocked = true
	s.Require().NoError(s.store.UpdateUnlocked(s.ctx, n))

	n.Content = "tarde demais"
	s.ErrorIs(s.store.UpdateUnlocked(s.ctx, n), sentinel.ErrInvalidState)

	got, err := s.store.FindByID(s.ctx, n.TenantID, n.ID)
	s.Require().NoError(err)
	s.Equal("revisada", got.Content)

	n.ID = id.SessionNoteID(uuid.New())
	s.ErrorIs(s.store.UpdateUnlocked(s.ctx, n), sentinel.ErrNotFound)
}

func (s *InMemorySuite) TestListByPatient() {
	may := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	juneEarly := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	juneLate := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	s.add(testutil.TestIDs.TenantID1, may, testutil.FixedNow)
	first := s.add(testutil.TestIDs.TenantID1, juneEarly, testutil.FixedNow)
	second := s.add(testutil.TestIDs.TenantID1, juneEarly, testutil.FixedNow.Add(time.Minute))
	last := s.add(testutil.TestIDs.TenantID1, juneLate, testutil.FixedNow)
	s.add(testutil.TestIDs.TenantID2, juneEarly, testutil.FixedNow)

	all, err := s.store.ListByPatient(s.ctx, testutil.TestIDs.TenantID1, s.patient, nil)
	s.Require().NoError(err)
	s.Len(all, 4)

	w := id.MonthWindow(juneEarly)
	june, err := s.store.ListByPatient(s.ctx, testutil.TestIDs.TenantID1, s.patient, &w)
	s.Require().NoError(err)
	s.Require().Len(june, 3)
	s.Equal(last.ID, june[0].ID)
	s.Equal(second.ID, june[1].ID)
	s.Equal(first.ID, june[2].ID)
}
