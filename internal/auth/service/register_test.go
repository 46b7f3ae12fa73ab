package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"peegflow/internal/auth/models"
	"peegflow/internal/auth/service/mocks"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/audit"
)

func (s *ServiceSuite) register(slug string) (*models.RegisterResponse, error) {
	req := &models.RegisterRequest{
		TenantName:    "Consultório Sol",
		TenantSlug:    slug,
		AdminName:     "Dra. Sol",
		AdminEmail:    "sol@sol.test",
		AdminPassword: "secret1",
	}
	req.Normalize()
	return s.service.RegisterPractice(s.ctx, req)
}

func (s *ServiceSuite) TestRegisterPractice() {
	s.Run("creates tenant and admin and signs in", func() {
		res, err := s.register("sol")
		s.Require().NoError(err)
		s.Equal("sol", res.TenantSlug)
		s.Equal("bearer", res.TokenType)

		p, err := s.service.ResolvePrincipal(s.ctx, res.AccessToken, "sol")
		s.Require().NoError(err)
		s.Equal(id.RoleAdmin, p.Role)
		s.Equal(res.TenantID, p.TenantID.String())
		s.Contains(s.auditStore.Actions(), audit.ActionPracticeRegistered)

		_, err = s.login("sol", "sol@sol.test", "secret1")
		s.NoError(err)
	})

	s.Run("duplicate slug is a conflict", func() {
		_, err := s.register("sol")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("slug already exists", err.Error())
	})

	s.Run("invalid slug creates nothing", func() {
		_, err := s.register("bad slug")
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		_, err = s.tenants.FindBySlug(s.ctx, "bad slug")
		s.Error(err)
	})
}

func TestRegisterPracticeUserFailureSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserStore(ctrl)
	tenants := mocks.NewMockTenantStore(ctrl)
	hasher := mocks.NewMockPasswordHasher(ctrl)

	svc, err := New(users, mocks.NewMockPlatformAdminStore(ctrl), tenants, mocks.NewMockTokenCodec(ctrl), hasher)
	require.NoError(t, err)

	hasher.EXPECT().Hash("secret1").Return("$argon2id$stub", nil)
	tenants.EXPECT().CreateIfSlugAvailable(gomock.Any(), gomock.Any()).Return(nil)
	users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(assert.AnError)

	_, err = svc.RegisterPractice(context.Background(), &models.RegisterRequest{
		TenantName: "X", TenantSlug: "x", AdminEmail: "a@x.test", AdminPassword: "secret1",
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
