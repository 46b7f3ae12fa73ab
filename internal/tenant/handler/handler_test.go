package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"peegflow/internal/tenant/service"
	tenantstore "peegflow/internal/tenant/store/tenant"
)

type HandlerSuite struct {
	suite.Suite
	router http.Handler
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewTenantService(tenantstore.NewInMemory(), service.WithLogger(logger))
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) create(body string) TenantResponse {
	rec := s.do(http.MethodPost, "/platform/tenants", body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var out TenantResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (s *HandlerSuite) TestCreateAndList() {
	first := s.create(`{"name":"Demo","slug":"demo","license_expires_at":"2030-01-01"}`)
	s.Equal("demo", first.Slug)
	s.True(first.IsActive)
	s.Require().NotNil(first.LicenseExpiresAt)
	s.Equal(2030, first.LicenseExpiresAt.Year())

	rec := s.do(http.MethodGet, "/platform/tenants", "")
	s.Equal(http.StatusOK, rec.Code)
	var list []TenantResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &list))
	s.Len(list, 1)
}

func (s *HandlerSuite) TestCreateDuplicateSlug() {
	s.create(`{"name":"Demo","slug":"demo"}`)
	rec := s.do(http.MethodPost, "/platform/tenants", `{"name":"Other","slug":"demo"}`)
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestCreateValidation() {
	cases := map[string]string{
		"missing slug":             `{"name":"Demo"}`,
		"bad slug":                 `{"name":"Demo","slug":"Not_Valid!"}`,
		"admin email without pass": `{"name":"Demo","slug":"demo","admin_email":"a@b.test"}`,
		"bad license":              `{"name":"Demo","slug":"demo","license_expires_at":"soon"}`,
	}
	for name, body := range cases {
		s.Run(name, func() {
			rec := s.do(http.MethodPost, "/platform/tenants", body)
			s.Equal(http.StatusBadRequest, rec.Code)
		})
	}
}

func (s *HandlerSuite) TestPatchNullClearsLicense() {
	created := s.create(`{"name":"Demo","slug":"demo","license_expires_at":"2030-01-01T00:00:00Z"}`)

	rec := s.do(http.MethodPatch, "/platform/tenants/"+created.ID, `{"is_active":false}`)
	s.Require().Equal(http.StatusOK, rec.Code)
	var out TenantResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	s.False(out.IsActive)
	s.NotNil(out.LicenseExpiresAt, "absent license leaves it untouched")

	rec = s.do(http.MethodPatch, "/platform/tenants/"+created.ID, `{"license_expires_at":null}`)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	s.Nil(out.LicenseExpiresAt)
}

func (s *HandlerSuite) TestPatchErrors() {
	s.Equal(http.StatusBadRequest, s.do(http.MethodPatch, "/platform/tenants/not-a-uuid", `{"is_active":true}`).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPatch, "/platform/tenants/"+uuid.NewString(), `{"is_active":true}`).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPatch, "/platform/tenants/"+uuid.NewString(), `{}`).Code)
}
