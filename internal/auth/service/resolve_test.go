package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"peegflow/internal/auth/service/mocks"
	"peegflow/internal/credential"
	tenantmodels "peegflow/internal/tenant/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/requestcontext"
)

func (s *ServiceSuite) TestResolvePrincipal() {
	user := s.newUser(s.tenant.ID, "pat@demo.test", "secret1", id.RolePatient)
	token, err := s.codec.IssueTenant(s.ctx, user.ID, s.tenant.ID, user.Role)
	s.Require().NoError(err)

	s.Run("resolves an active account", func() {
		p, err := s.service.ResolvePrincipal(s.ctx, token, "")
		s.Require().NoError(err)
		s.Equal(user.ID, p.UserID)
		s.Equal(s.tenant.ID, p.TenantID)
		s.Equal("demo", p.TenantSlug)
		s.Equal(id.RolePatient, p.Role)
		s.Equal("pat@demo.test", p.Email)
	})

	s.Run("matching slug hint", func() {
		_, err := s.service.ResolvePrincipal(s.ctx, token, "Demo")
		s.NoError(err)
	})

	s.Run("mismatched slug hint", func() {
		s.newTenant("elsewhere")
		_, err := s.service.ResolvePrincipal(s.ctx, token, "elsewhere")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("garbage token", func() {
		_, err := s.service.ResolvePrincipal(s.ctx, "not-a-token", "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal("Invalid or expired token", err.Error())
	})

	s.Run("expired token", func() {
		later := requestcontext.WithTime(s.ctx, fixedNow.Add(credential.DefaultTTL))
		_, err := s.service.ResolvePrincipal(later, token, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("account in another tenant", func() {
		other := s.newTenant("foreign")
		forged, err := s.codec.IssueTenant(s.ctx, user.ID, other.ID, user.Role)
		s.Require().NoError(err)
		_, err = s.service.ResolvePrincipal(s.ctx, forged, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestDeactivatingTenantInvalidatesTokens() {
	user := s.newUser(s.tenant.ID, "ana@demo.test", "secret1", id.RoleAdmin)
	res, err := s.login("demo", "ana@demo.test", "secret1")
	s.Require().NoError(err)

	_, err = s.service.ResolvePrincipal(s.ctx, res.AccessToken, "")
	s.Require().NoError(err)

	s.setTenantActive(false)
	_, err = s.service.ResolvePrincipal(s.ctx, res.AccessToken, "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	s.setTenantActive(true)
	_, err = s.service.ResolvePrincipal(s.ctx, res.AccessToken, "")
	s.NoError(err)

	s.Require().NoError(s.users.SetActive(s.ctx, s.tenant.ID, user.ID, false, fixedNow))
	_, err = s.service.ResolvePrincipal(s.ctx, res.AccessToken, "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestExpiredLicenseInvalidatesTokens() {
	user := s.newUser(s.tenant.ID, "ana@demo.test", "secret1", id.RoleAdmin)
	token, err := s.codec.IssueTenant(s.ctx, user.ID, s.tenant.ID, user.Role)
	s.Require().NoError(err)

	t, err := s.tenants.FindByID(s.ctx, s.tenant.ID)
	s.Require().NoError(err)
	expiry := fixedNow.Add(time.Hour)
	_, err = t.Apply(tenantmodels.Patch{LicenseSet: true, License: &expiry}, fixedNow)
	s.Require().NoError(err)
	s.Require().NoError(s.tenants.Update(s.ctx, t))

	_, err = s.service.ResolvePrincipal(s.ctx, token, "")
	s.NoError(err)

	atExpiry := requestcontext.WithTime(s.ctx, expiry)
	_, err = s.service.ResolvePrincipal(atExpiry, token, "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestResolvePrincipalStoreFailureIsInternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserStore(ctrl)
	codec := mocks.NewMockTokenCodec(ctrl)

	svc, err := New(users, mocks.NewMockPlatformAdminStore(ctrl), mocks.NewMockTenantStore(ctrl), codec, mocks.NewMockPasswordHasher(ctrl))
	require.NoError(t, err)

	ident := &credential.TenantIdentity{
		UserID:   id.UserID(uuid.New()),
		TenantID: id.TenantID(uuid.New()),
		Role:     id.RoleAdmin,
	}
	codec.EXPECT().VerifyTenant(gomock.Any(), "tok").Return(ident, nil)
	users.EXPECT().FindByTenantAndID(gomock.Any(), ident.TenantID, ident.UserID).Return(nil, assert.AnError)

	_, err = svc.ResolvePrincipal(context.Background(), "tok", "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestNewRequiresDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := New(nil, mocks.NewMockPlatformAdminStore(ctrl), mocks.NewMockTenantStore(ctrl),
		mocks.NewMockTokenCodec(ctrl), mocks.NewMockPasswordHasher(ctrl))
	assert.Error(t, err)
}
