package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/requestcontext"
)

// MockResolver is a testify mock for both resolvers.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolvePrincipal(ctx context.Context, token, slugHint string) (*id.Principal, error) {
	args := m.Called(ctx, token, slugHint)
	if p := args.Get(0); p != nil {
		return p.(*id.Principal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockResolver) ResolvePlatformAdmin(ctx context.Context, token string) (*id.PlatformPrincipal, error) {
	args := m.Called(ctx, token)
	if p := args.Get(0); p != nil {
		return p.(*id.PlatformPrincipal), args.Error(1)
	}
	return nil, args.Error(1)
}

// mockHandler captures whether it was called and the context it saw.
type mockHandler struct {
	called  bool
	context context.Context
}

func (m *mockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.called = true
	m.context = r.Context()
	w.WriteHeader(http.StatusOK)
}

type GuardSuite struct {
	suite.Suite
	resolver *MockResolver
	next     *mockHandler
	logger   *slog.Logger
	admin    *id.Principal
	patient  *id.Principal
}

func (s *GuardSuite) SetupTest() {
	s.resolver = new(MockResolver)
	s.next = &mockHandler{}
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	tenantID := id.TenantID(uuid.New())
	s.admin = &id.Principal{UserID: id.UserID(uuid.New()), TenantID: tenantID, TenantSlug: "demo", Role: id.RoleAdmin}
	s.patient = &id.Principal{UserID: id.UserID(uuid.New()), TenantID: tenantID, TenantSlug: "demo", Role: id.RolePatient}
}

func TestGuardSuite(t *testing.T) {
	suite.Run(t, new(GuardSuite))
}

func (s *GuardSuite) serve(h http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func (s *GuardSuite) TestRequireTenantAuth() {
	s.Run("missing header", func() {
		rec := s.serve(RequireTenantAuth(s.resolver, s.logger)(s.next), nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.False(s.next.called)
	})

	s.Run("resolved principal reaches the handler", func() {
		s.resolver.On("ResolvePrincipal", mock.Anything, "good", "demo").Return(s.admin, nil).Once()
		rec := s.serve(RequireTenantAuth(s.resolver, s.logger)(s.next), map[string]string{
			"Authorization":  "Bearer good",
			TenantSlugHeader: "demo",
		})
		s.Equal(http.StatusOK, rec.Code)
		s.Require().True(s.next.called)
		s.Equal(s.admin, requestcontext.Principal(s.next.context))
		s.Nil(requestcontext.PlatformAdmin(s.next.context))
	})

	s.Run("resolver rejection is a 401", func() {
		s.next.called = false
		s.resolver.On("ResolvePrincipal", mock.Anything, "bad", "").
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")).Once()
		rec := s.serve(RequireTenantAuth(s.resolver, s.logger)(s.next), map[string]string{"Authorization": "Bearer bad"})
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Contains(rec.Body.String(), "Invalid or expired token")
		s.False(s.next.called)
	})
}

func (s *GuardSuite) TestRequirePlatformAdmin() {
	s.Run("tenant principal in context does not satisfy it", func() {
		s.resolver.On("ResolvePlatformAdmin", mock.Anything, "tenant-token").
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")).Once()
		h := withPrincipal(s.admin, RequirePlatformAdmin(s.resolver, s.logger)(s.next))
		rec := s.serve(h, map[string]string{"Authorization": "Bearer tenant-token"})
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.False(s.next.called)
	})

	s.Run("operator reaches the handler", func() {
		op := &id.PlatformPrincipal{AdminID: id.PlatformAdminID(uuid.New()), Email: "ops@peegflow.test"}
		s.resolver.On("ResolvePlatformAdmin", mock.Anything, "ops").Return(op, nil).Once()
		rec := s.serve(RequirePlatformAdmin(s.resolver, s.logger)(s.next), map[string]string{"Authorization": "Bearer ops"})
		s.Equal(http.StatusOK, rec.Code)
		s.Equal(op, requestcontext.PlatformAdmin(s.next.context))
		s.Nil(requestcontext.Principal(s.next.context))
	})
}

// withPrincipal places p in the context as RequireTenantAuth would.
func withPrincipal(p *id.Principal, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(r.Context(), p)))
	})
}

func (s *GuardSuite) TestRequireRole() {
	cases := []struct {
		name      string
		principal *id.Principal
		roles     []id.Role
		want      int
	}{
		{"admin allowed", s.admin, []id.Role{id.RoleAdmin}, http.StatusOK},
		{"patient denied", s.patient, []id.Role{id.RoleAdmin}, http.StatusForbidden},
		{"either role", s.patient, []id.Role{id.RoleAdmin, id.RolePatient}, http.StatusOK},
		{"no principal", nil, []id.Role{id.RoleAdmin}, http.StatusForbidden},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			next := &mockHandler{}
			h := withPrincipal(tc.principal, RequireRole(s.logger, tc.roles...)(next))
			rec := s.serve(h, nil)
			s.Equal(tc.want, rec.Code)
			s.Equal(tc.want == http.StatusOK, next.called)
		})
	}
}

func TestCheckRole(t *testing.T) {
	p := &id.Principal{Role: id.RolePatient}
	require.NoError(t, CheckRole(p, id.RolePatient))

	err := CheckRole(p, id.RoleAdmin)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	assert.True(t, dErrors.HasCode(CheckRole(nil, id.RoleAdmin), dErrors.CodeForbidden))
}
