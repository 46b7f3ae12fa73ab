package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"peegflow/internal/auth/models"
	"peegflow/internal/auth/service"
	"peegflow/internal/auth/store/platformadmin"
	userstore "peegflow/internal/auth/store/user"
	"peegflow/internal/credential"
	tenantstore "peegflow/internal/tenant/store/tenant"
	authmw "peegflow/pkg/platform/middleware/auth"
	"peegflow/pkg/secrets"
)

type HandlerSuite struct {
	suite.Suite
	router http.Handler
	svc    *service.Service
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec, err := credential.NewCodec(credential.Config{
		TenantSecret:   []byte("tenant-secret"),
		PlatformSecret: []byte("platform-secret"),
	})
	s.Require().NoError(err)
	hasher := secrets.NewHasher(secrets.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

	s.svc, err = service.New(userstore.New(), platformadmin.NewInMemory(), tenantstore.NewInMemory(), codec, hasher,
		service.WithLogger(logger))
	s.Require().NoError(err)

	h := New(s.svc, logger)
	r := chi.NewRouter()
	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireTenantAuth(s.svc, logger))
		h.RegisterTenant(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequirePlatformAdmin(s.svc, logger))
		h.RegisterPlatform(r)
	})
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *HandlerSuite) get(path, token string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return s.do(req)
}

func (s *HandlerSuite) registerDemo() models.RegisterResponse {
	rec := s.postJSON("/auth/register", `{"tenant_name":"Demo","tenant_slug":"demo","admin_email":"ana@demo.test","admin_password":"secret1"}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var out models.RegisterResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *HandlerSuite) TestRegisterAndMe() {
	reg := s.registerDemo()
	s.NotEmpty(reg.AccessToken)

	rec := s.get("/auth/me", reg.AccessToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var me models.MeResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &me))
	s.Equal("ana@demo.test", me.Email)
	s.Equal("admin", me.Role)
	s.Equal("demo", me.TenantSlug)

	rec = s.get("/auth/me", reg.AccessToken, map[string]string{authmw.TenantSlugHeader: "other"})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestRegisterValidation() {
	rec := s.postJSON("/auth/register", `{"tenant_name":"Demo","tenant_slug":"demo","admin_email":"ana@demo.test","admin_password":"123"}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	s.registerDemo()
	rec = s.postJSON("/auth/register", `{"tenant_name":"Again","tenant_slug":"demo","admin_email":"x@demo.test","admin_password":"secret1"}`)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestLoginJSONAndForm() {
	s.registerDemo()

	rec := s.postJSON("/auth/login", `{"tenant_slug":"demo","email":"ana@demo.test","password":"secret1"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var tok models.TokenResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &tok))
	s.Equal("bearer", tok.TokenType)

	form := url.Values{"username": {"ana@demo.test"}, "password": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(authmw.TenantSlugHeader, "demo")
	rec = s.do(req)
	s.Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.postJSON("/auth/login", `{"tenant_slug":"demo","email":"ana@demo.test","password":"wrong"}`)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "Invalid credentials")

	rec = s.postJSON("/auth/login", `{"email":"ana@demo.test","password":"secret1"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestPlatformLoginAndMe() {
	_, err := s.svc.EnsurePlatformAdmin(s.T().Context(), "Owner", "owner@peegflow.test", "owner-pass")
	s.Require().NoError(err)

	rec := s.postJSON("/platform/login", `{"email":"owner@peegflow.test","password":"owner-pass"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var tok models.TokenResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &tok))

	rec = s.get("/platform/me", tok.AccessToken, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "owner@peegflow.test")

	s.Run("platform token is not a tenant token", func() {
		rec := s.get("/auth/me", tok.AccessToken, nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("tenant token is not a platform token", func() {
		reg := s.registerDemo()
		rec := s.get("/platform/me", reg.AccessToken, nil)
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}
