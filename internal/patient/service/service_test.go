package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	authservice "peegflow/internal/auth/service"
	"peegflow/internal/auth/store/platformadmin"
	userstore "peegflow/internal/auth/store/user"
	"peegflow/internal/credential"
	"peegflow/internal/patient/models"
	"peegflow/internal/patient/service/mocks"
	patientstore "peegflow/internal/patient/store/patient"
	tenantstore "peegflow/internal/tenant/store/tenant"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/audit"
	"peegflow/pkg/requestcontext"
	"peegflow/pkg/secrets"
	"peegflow/pkg/testutil"
)

type ServiceSuite struct {
	suite.Suite
	users      *userstore.InMemoryUserStore
	store      *patientstore.InMemory
	auditStore *audit.MemoryStore
	service    *Service
	ctx        context.Context
	admin      *id.Principal
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec, err := credential.NewCodec(credential.Config{
		TenantSecret:   []byte("tenant-secret"),
		PlatformSecret: []byte("platform-secret"),
	})
	s.Require().NoError(err)
	hasher := secrets.NewHasher(secrets.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

	s.users = userstore.New()
	accounts, err := authservice.New(s.users, platformadmin.NewInMemory(), tenantstore.NewInMemory(), codec, hasher,
		authservice.WithLogger(logger))
	s.Require().NoError(err)

	s.store = patientstore.NewInMemory()
	s.auditStore = audit.NewMemoryStore()
	s.service, err = New(s.store, accounts,
		WithLogger(logger),
		WithAuditLogger(audit.NewLogger(logger, s.auditStore)),
	)
	s.Require().NoError(err)

	s.ctx = requestcontext.WithTime(context.Background(), testutil.FixedNow)
	s.admin = &id.Principal{UserID: id.UserID(uuid.New()), TenantID: testutil.TestIDs.TenantID1, Role: id.RoleAdmin}
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) create(cmd CreateCommand) *models.Patient {
	p, err := s.service.Create(s.ctx, s.admin, cmd)
	s.Require().NoError(err)
	return p
}

func (s *ServiceSuite) account(p *models.Patient) (isActive bool) {
	s.Require().NotNil(p.UserID)
	u, err := s.users.FindByTenantAndID(s.ctx, p.TenantID, *p.UserID)
	s.Require().NoError(err)
	s.Equal(id.RolePatient, u.Role)
	return u.IsActive
}

func (s *ServiceSuite) TestCreateWithAccess() {
	p := s.create(CreateCommand{
		Profile:      models.Profile{FullName: "Maria Souza", Email: "Maria@Demo.test"},
		CreateAccess: true,
	})
	s.Equal("maria@demo.test", p.Email)
	s.True(s.account(p))
	s.Contains(s.auditStore.Actions(), audit.ActionPatientCreated)

	s.Run("email already used by another account", func() {
		_, err := s.service.Create(s.ctx, s.admin, CreateCommand{
			Profile:      models.Profile{FullName: "Outra Maria", Email: "maria@demo.test"},
			CreateAccess: true,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("access needs an email", func() {
		_, err := s.service.Create(s.ctx, s.admin, CreateCommand{
			Profile:      models.Profile{FullName: "Sem Email"},
			CreateAccess: true,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *ServiceSuite) TestAccessLifecycle() {
	p := s.create(CreateCommand{
		Profile:      models.Profile{FullName: "João", Email: "joao@demo.test"},
		CreateAccess: true,
		Password:     "secret1",
	})
	userID := *p.UserID

	s.Require().NoError(s.service.RevokeAccess(s.ctx, s.admin, p.ID))
	revoked, err := s.service.Get(s.ctx, s.admin, p.ID)
	s.Require().NoError(err)
	s.Nil(revoked.UserID)
	u, err := s.users.FindByTenantAndID(s.ctx, p.TenantID, userID)
	s.Require().NoError(err)
	s.False(u.IsActive)

	s.Require().NoError(s.service.RevokeAccess(s.ctx, s.admin, p.ID), "revoking twice is a no-op")

	restored, err := s.service.GrantAccess(s.ctx, s.admin, p.ID, "")
	s.Require().NoError(err)
	s.Require().NotNil(restored.UserID)
	s.Equal(userID, *restored.UserID, "the same account is found by email and reactivated")
	s.True(s.account(restored))

	s.Equal([]audit.Action{
		audit.ActionPatientCreated,
		audit.ActionPatientAccessRevoked,
		audit.ActionPatientAccessGranted,
	}, s.auditStore.Actions())
}

func (s *ServiceSuite) TestGrantAccessWithoutEmail() {
	p := s.create(CreateCommand{Profile: models.Profile{FullName: "Sem Email"}})
	_, err := s.service.GrantAccess(s.ctx, s.admin, p.ID, "secret1")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestDeleteDeactivatesAccount() {
	p := s.create(CreateCommand{
		Profile:      models.Profile{FullName: "Ana", Email: "ana@demo.test"},
		CreateAccess: true,
	})

	s.Require().NoError(s.service.Delete(s.ctx, s.admin, p.ID))
	_, err := s.service.Get(s.ctx, s.admin, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	u, err := s.users.FindByTenantAndID(s.ctx, p.TenantID, *p.UserID)
	s.Require().NoError(err)
	s.False(u.IsActive)

	s.True(dErrors.HasCode(s.service.Delete(s.ctx, s.admin, p.ID), dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestUpdateAndList() {
	ana := s.create(CreateCommand{Profile: models.Profile{FullName: "Ana"}})
	s.create(CreateCommand{Profile: models.Profile{FullName: "Bruno"}})

	phone := " 11 99999-0000 "
	updated, err := s.service.Update(s.ctx, s.admin, ana.ID, models.Patch{Phone: &phone})
	s.Require().NoError(err)
	s.Equal("11 99999-0000", updated.Phone)

	list, err := s.service.List(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Ana", list[0].FullName)

	s.Run("another tenant sees nothing", func() {
		other := &id.Principal{UserID: s.admin.UserID, TenantID: testutil.TestIDs.TenantID2, Role: id.RoleAdmin}
		list, err := s.service.List(s.ctx, other)
		s.Require().NoError(err)
		s.Empty(list)
		_, err = s.service.Get(s.ctx, other, ana.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("patients are forbidden", func() {
		patient := &id.Principal{UserID: testutil.TestIDs.UserID1, TenantID: s.admin.TenantID, Role: id.RolePatient}
		_, err := s.service.List(s.ctx, patient)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ServiceSuite) TestContactsByUser() {
	p := s.create(CreateCommand{
		Profile:      models.Profile{FullName: "Carla", Email: "carla@demo.test"},
		CreateAccess: true,
	})
	contacts, err := s.service.ContactsByUser(s.ctx, s.admin.TenantID, []id.UserID{*p.UserID, testutil.TestIDs.UserID2})
	s.Require().NoError(err)
	s.Require().Len(contacts, 1)
	s.Equal("Carla", contacts[*p.UserID].Name)
	s.Equal("carla@demo.test", contacts[*p.UserID].Email)
}

func TestCreateAccountFailureSkipsRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	accounts := mocks.NewMockAccounts(ctrl)
	svc, err := New(store, accounts)
	require.NoError(t, err)

	accounts.EXPECT().
		CreatePatientAccount(gomock.Any(), testutil.TestIDs.TenantID1, "Ana", "ana@demo.test", models.DefaultAccessPassword).
		Return(id.UserID{}, dErrors.New(dErrors.CodeConflict, "email already registered"))

	admin := &id.Principal{UserID: testutil.TestIDs.UserID1, TenantID: testutil.TestIDs.TenantID1, Role: id.RoleAdmin}
	_, err = svc.Create(context.Background(), admin, CreateCommand{
		Profile:      models.Profile{FullName: "Ana", Email: "ana@demo.test"},
		CreateAccess: true,
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRevokeFailureKeepsLink(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	accounts := mocks.NewMockAccounts(ctrl)
	svc, err := New(store, accounts)
	require.NoError(t, err)

	userID := testutil.TestIDs.UserID2
	patient := &models.Patient{ID: id.PatientID(uuid.New()), TenantID: testutil.TestIDs.TenantID1, UserID: &userID}
	store.EXPECT().FindByID(gomock.Any(), patient.TenantID, patient.ID).Return(patient, nil)
	accounts.EXPECT().RevokePatientAccess(gomock.Any(), patient.TenantID, userID).Return(assert.AnError)

	admin := &id.Principal{UserID: testutil.TestIDs.UserID1, TenantID: testutil.TestIDs.TenantID1, Role: id.RoleAdmin}
	err = svc.RevokeAccess(context.Background(), admin, patient.ID)
	assert.ErrorIs(t, err, assert.AnError)
}
