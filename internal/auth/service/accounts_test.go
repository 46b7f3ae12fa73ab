package service

import (
	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
)

func (s *ServiceSuite) TestCreateAdmin() {
	s.Require().NoError(s.service.CreateAdmin(s.ctx, s.tenant.ID, "Ana", "ana@demo.test", "secret1"))

	err := s.service.CreateAdmin(s.ctx, s.tenant.ID, "Ana", "ANA@demo.test", "secret1")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	created, err := s.service.EnsureTenantAdmin(s.ctx, s.tenant.ID, "Ana", "ana@demo.test", "secret1")
	s.Require().NoError(err)
	s.False(created)
}

func (s *ServiceSuite) TestPatientAccess() {
	userID, err := s.service.CreatePatientAccount(s.ctx, s.tenant.ID, "Paula", "paula@demo.test", "123456")
	s.Require().NoError(err)

	s.Run("revoke deactivates the account", func() {
		s.Require().NoError(s.service.RevokePatientAccess(s.ctx, s.tenant.ID, userID))
		_, err := s.login("demo", "paula@demo.test", "123456")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("grant reactivates with a new password", func() {
		got, err := s.service.GrantPatientAccess(s.ctx, s.tenant.ID, &userID, "Paula", "paula@demo.test", "novasenha")
		s.Require().NoError(err)
		s.Equal(userID, got)
		_, err = s.login("demo", "paula@demo.test", "novasenha")
		s.NoError(err)
	})

	s.Run("grant finds the account by email", func() {
		got, err := s.service.GrantPatientAccess(s.ctx, s.tenant.ID, nil, "Paula", "paula@demo.test", "outra1")
		s.Require().NoError(err)
		s.Equal(userID, got)
	})

	s.Run("grant creates a new account", func() {
		got, err := s.service.GrantPatientAccess(s.ctx, s.tenant.ID, nil, "Novo", "novo@demo.test", "123456")
		s.Require().NoError(err)
		s.NotEqual(userID, got)
	})

	s.Run("admin accounts are never converted", func() {
		admin := s.newUser(s.tenant.ID, "admin@demo.test", "secret1", id.RoleAdmin)
		_, err := s.service.GrantPatientAccess(s.ctx, s.tenant.ID, nil, "X", "admin@demo.test", "123456")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		s.Require().NoError(s.service.RevokePatientAccess(s.ctx, s.tenant.ID, admin.ID))
		_, err = s.login("demo", "admin@demo.test", "secret1")
		s.NoError(err)
	})
}
