package request

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peegflow/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	capture := func(header string) (ctxID, respID string) {
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxID = requestcontext.RequestID(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("X-Request-ID", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return ctxID, rec.Header().Get("X-Request-ID")
	}

	t.Run("keeps a valid client id", func(t *testing.T) {
		ctxID, respID := capture("abc-123_x.y")
		assert.Equal(t, "abc-123_x.y", ctxID)
		assert.Equal(t, ctxID, respID)
	})

	t.Run("replaces injected ids", func(t *testing.T) {
		for _, bad := range []string{"a\nb", "a b", "<script>", strings.Repeat("a", MaxRequestIDLength+1)} {
			ctxID, _ := capture(bad)
			assert.NotEqual(t, bad, ctxID)
			assert.Len(t, ctxID, 36)
		}
	})

	t.Run("generates when absent", func(t *testing.T) {
		ctxID, respID := capture("")
		assert.NotEmpty(t, ctxID)
		assert.Equal(t, ctxID, respID)
	})
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, rec.Body.String())
}

func TestContentTypeJSON(t *testing.T) {
	h := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := map[string]int{
		"application/json":                http.StatusNoContent,
		"application/json; charset=utf-8": http.StatusNoContent,
		"text/plain":                      http.StatusUnsupportedMediaType,
	}
	for ct, want := range cases {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{}"))
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, ct)
	}
}

func TestLatencyUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(Latency(m))
	r.Get("/appointments/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/appointments/9d1f", nil))

	n, err := testutil.GatherAndCount(reg, "peegflow_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
