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
	"go.uber.org/mock/gomock"

	"peegflow/internal/patient/service"
	"peegflow/internal/patient/service/mocks"
	patientstore "peegflow/internal/patient/store/patient"
	id "peegflow/pkg/domain"
	"peegflow/pkg/requestcontext"
	"peegflow/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	accounts   *mocks.MockAccounts
	router     http.Handler
	principals map[string]*id.Principal
}

func (s *HandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.accounts = mocks.NewMockAccounts(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := service.New(patientstore.NewInMemory(), s.accounts, service.WithLogger(logger))
	s.Require().NoError(err)

	s.principals = map[string]*id.Principal{
		"admin": {UserID: id.UserID(uuid.New()), TenantID: testutil.TestIDs.TenantID1, Role: id.RoleAdmin},
		"other": {UserID: id.UserID(uuid.New()), TenantID: testutil.TestIDs.TenantID2, Role: id.RoleAdmin},
		"ana":   {UserID: testutil.TestIDs.UserID1, TenantID: testutil.TestIDs.TenantID1, Role: id.RolePatient},
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), testutil.FixedNow)
			if p, ok := s.principals[r.Header.Get("X-As")]; ok {
				ctx = requestcontext.WithPrincipal(ctx, p)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	New(svc, logger).Register(r)
	s.router = r
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) do(as, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-As", as)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder) PatientResponse {
	var out PatientResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *HandlerSuite) createWithoutAccess(name string) PatientResponse {
	rec := s.do("admin", http.MethodPost, "/patients", `{"full_name":"`+name+`","create_user":false}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	return s.decode(rec)
}

func (s *HandlerSuite) TestCreateProvisionsAccessByDefault() {
	userID := id.UserID(uuid.New())
	s.accounts.EXPECT().
		CreatePatientAccount(gomock.Any(), testutil.TestIDs.TenantID1, "Ana Souza", "ana@demo.test", "123456").
		Return(userID, nil)

	rec := s.do("admin", http.MethodPost, "/patients",
		`{"full_name":" Ana Souza ","email":"ANA@demo.test","birth_date":"1990-04-12","phone":"11 99999-0000"}`)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	got := s.decode(rec)
	s.Equal("Ana Souza", got.FullName)
	s.Equal("ana@demo.test", got.Email)
	s.Require().NotNil(got.BirthDate)
	s.Equal("1990-04-12", *got.BirthDate)
	s.Require().NotNil(got.UserID)
	s.Equal(userID.String(), *got.UserID)
}

func (s *HandlerSuite) TestCreateValidation() {
	s.Run("access without email", func() {
		rec := s.do("admin", http.MethodPost, "/patients", `{"full_name":"Sem Email"}`)
		s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
	})
	s.Run("blank name", func() {
		rec := s.do("admin", http.MethodPost, "/patients", `{"full_name":"  ","create_user":false}`)
		s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
	})
	s.Run("short password", func() {
		rec := s.do("admin", http.MethodPost, "/patients", `{"full_name":"Ana","email":"a@b.test","user_password":"123"}`)
		s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
	})
}

func (s *HandlerSuite) TestUpdate() {
	created := s.createWithoutAccess("Bruno")
	path := "/patients/" + created.ID

	rec := s.do("admin", http.MethodPatch, path, `{"occupation":"Engenheiro","birth_date":"1985-01-30"}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	got := s.decode(rec)
	s.Equal("Bruno", got.FullName)
	s.Equal("Engenheiro", got.Occupation)
	s.Require().NotNil(got.BirthDate)

	rec = s.do("admin", http.MethodPatch, path, `{"birth_date":null}`)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Nil(s.decode(rec).BirthDate)

	s.Equal(http.StatusBadRequest, s.do("admin", http.MethodPatch, path, `{}`).Code)
	s.Equal(http.StatusBadRequest, s.do("admin", http.MethodPatch, path, `{"email":"not-an-email"}`).Code)
}

func (s *HandlerSuite) TestAccessLifecycle() {
	created := s.createWithoutAccess("Carla")
	userID := id.UserID(uuid.New())

	s.accounts.EXPECT().
		GrantPatientAccess(gomock.Any(), testutil.TestIDs.TenantID1, nil, "Carla", "carla@demo.test", "123456").
		Return(userID, nil)
	s.Require().Equal(http.StatusOK,
		s.do("admin", http.MethodPatch, "/patients/"+created.ID, `{"email":"carla@demo.test"}`).Code)

	rec := s.do("admin", http.MethodPost, "/patients/"+created.ID+"/access", "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Require().NotNil(s.decode(rec).UserID)

	s.accounts.EXPECT().RevokePatientAccess(gomock.Any(), testutil.TestIDs.TenantID1, userID).Return(nil)
	rec = s.do("admin", http.MethodDelete, "/patients/"+created.ID+"/access", "")
	s.Equal(http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do("admin", http.MethodGet, "/patients/"+created.ID, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Nil(s.decode(rec).UserID)
}

func (s *HandlerSuite) TestDeleteAndIsolation() {
	created := s.createWithoutAccess("Diego")
	path := "/patients/" + created.ID

	s.Equal(http.StatusNotFound, s.do("other", http.MethodGet, path, "").Code)
	s.Equal(http.StatusForbidden, s.do("ana", http.MethodGet, path, "").Code)
	s.Equal(http.StatusForbidden, s.do("ana", http.MethodGet, "/patients", "").Code)
	s.Equal(http.StatusBadRequest, s.do("admin", http.MethodGet, "/patients/not-a-uuid", "").Code)

	s.Equal(http.StatusNoContent, s.do("admin", http.MethodDelete, path, "").Code)
	s.Equal(http.StatusNotFound, s.do("admin", http.MethodGet, path, "").Code)

	rec := s.do("admin", http.MethodGet, "/patients", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())
}
