package opstoken

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"
)

type OpsTokenSuite struct {
	suite.Suite
	logger *slog.Logger
}

func TestOpsTokenSuite(t *testing.T) {
	suite.Run(t, new(OpsTokenSuite))
}

func (s *OpsTokenSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *OpsTokenSuite) serve(expected, header string) (int, bool) {
	called := false
	h := Require(expected, s.logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, called
}

func (s *OpsTokenSuite) TestMatchingTokenPasses() {
	code, called := s.serve("scrape-secret", "Bearer scrape-secret")
	s.Equal(http.StatusOK, code)
	s.True(called)
}

func (s *OpsTokenSuite) TestWrongOrMissingTokenNeverReachesHandler() {
	for _, header := range []string{"", "Bearer nope", "scrape-secret"} {
		code, called := s.serve("scrape-secret", header)
		s.Equal(http.StatusUnauthorized, code, header)
		s.False(called, header)
	}
}

func (s *OpsTokenSuite) TestTokenWithoutBearerSchemeRejected() {
	for _, header := range []string{"scrape-secret", "Basic scrape-secret", "bearer scrape-secret", "Bearer"} {
		code, called := s.serve("scrape-secret", header)
		s.Equal(http.StatusUnauthorized, code, header)
		s.False(called, header)
	}
}

func (s *OpsTokenSuite) TestEmptyExpectedLeavesOpen() {
	code, called := s.serve("", "")
	s.Equal(http.StatusOK, code)
	s.True(called)
}
