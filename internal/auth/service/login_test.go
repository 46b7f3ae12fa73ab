package service

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"peegflow/internal/auth/models"
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/audit"
	"peegflow/pkg/requestcontext"
)

func (s *ServiceSuite) TestLoginTenant() {
	user := s.newUser(s.tenant.ID, "ana@demo.test", "secret1", id.RoleAdmin)

	s.Run("issues a bearer token", func() {
		res, err := s.login("demo", " ANA@demo.test ", " secret1 ")
		s.Require().NoError(err)
		s.Equal("bearer", res.TokenType)
		s.Equal(int((7 * 24 * time.Hour).Seconds()), res.ExpiresIn)

		ident, err := s.codec.VerifyTenant(s.ctx, res.AccessToken)
		s.Require().NoError(err)
		s.Equal(user.ID, ident.UserID)
		s.Equal(s.tenant.ID, ident.TenantID)
		s.Equal(id.RoleAdmin, ident.Role)
		s.Contains(s.auditStore.Actions(), audit.ActionLoginSucceeded)
	})

	s.Run("failures share one error", func() {
		cases := []struct {
			slug, email, password string
		}{
			{"demo", "ana@demo.test", "wrong"},
			{"demo", "nobody@demo.test", "secret1"},
			{"missing", "ana@demo.test", "secret1"},
		}
		for _, c := range cases {
			_, err := s.login(c.slug, c.email, c.password)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
			s.Equal("Invalid credentials", err.Error())
		}
	})

	s.Run("email is scoped to the tenant", func() {
		other := s.newTenant("other")
		s.newUser(other.ID, "ana@demo.test", "other-pass", id.RoleAdmin)

		_, err := s.login("demo", "ana@demo.test", "other-pass")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		_, err = s.login("other", "ana@demo.test", "other-pass")
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestLoginTenantRejectsInactive() {
	user := s.newUser(s.tenant.ID, "ana@demo.test", "secret1", id.RoleAdmin)

	s.Run("inactive account", func() {
		s.Require().NoError(s.users.SetActive(s.ctx, s.tenant.ID, user.ID, false, fixedNow))
		_, err := s.login("demo", "ana@demo.test", "secret1")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Require().NoError(s.users.SetActive(s.ctx, s.tenant.ID, user.ID, true, fixedNow))
	})

	s.Run("inactive tenant", func() {
		s.setTenantActive(false)
		_, err := s.login("demo", "ana@demo.test", "secret1")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.setTenantActive(true)
	})
}

func (s *ServiceSuite) TestLoginLockout() {
	s.newUser(s.tenant.ID, "ana@demo.test", "secret1", id.RoleAdmin)

	for range 3 {
		_, err := s.login("demo", "ana@demo.test", "wrong")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}
	s.Contains(s.auditStore.Actions(), audit.ActionLoginLocked)

	_, err := s.login("demo", "ana@demo.test", "secret1")
	s.True(dErrors.HasCode(err, dErrors.CodeTooManyRequests))

	s.ctx = requestcontext.WithTime(s.ctx, fixedNow.Add(6*time.Minute))
	_, err = s.login("demo", "ana@demo.test", "secret1")
	s.NoError(err)
}

func (s *ServiceSuite) TestLoginUpgradesLegacyHash() {
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	s.Require().NoError(err)
	user := s.storeUser(s.tenant.ID, "old@demo.test", string(legacy), id.RolePatient)

	_, err = s.login("demo", "old@demo.test", "secret1")
	s.Require().NoError(err)

	stored, err := s.users.FindByTenantAndID(s.ctx, s.tenant.ID, user.ID)
	s.Require().NoError(err)
	s.Contains(stored.PasswordHash, "$argon2id$")
	s.False(s.hasher.NeedsRehash(stored.PasswordHash))
	s.Contains(s.auditStore.Actions(), audit.ActionPasswordRehashed)

	_, err = s.login("demo", "old@demo.test", "secret1")
	s.NoError(err)
}

func (s *ServiceSuite) TestLoginPlatform() {
	created, err := s.service.EnsurePlatformAdmin(s.ctx, "Owner", "owner@peegflow.test", "owner-pass")
	s.Require().NoError(err)
	s.True(created)

	s.Run("issues a platform token", func() {
		res, err := s.service.LoginPlatform(s.ctx, &models.PlatformLoginRequest{Email: "owner@peegflow.test", Password: "owner-pass"})
		s.Require().NoError(err)

		p, err := s.service.ResolvePlatformAdmin(s.ctx, res.AccessToken)
		s.Require().NoError(err)
		s.Equal("owner@peegflow.test", p.Email)

		_, err = s.service.ResolvePrincipal(s.ctx, res.AccessToken, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("wrong password", func() {
		_, err := s.service.LoginPlatform(s.ctx, &models.PlatformLoginRequest{Email: "owner@peegflow.test", Password: "nope"})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Contains(s.auditStore.Actions(), audit.ActionPlatformLoginFailed)
	})

	s.Run("ensure is idempotent", func() {
		created, err := s.service.EnsurePlatformAdmin(s.ctx, "Owner", "OWNER@peegflow.test", "other")
		s.Require().NoError(err)
		s.False(created)
	})
}
