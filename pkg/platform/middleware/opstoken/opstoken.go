// Package opstoken guards operational endpoints such as /metrics with a
// static bearer token shared with the scraper.
package opstoken

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"peegflow/pkg/requestcontext"
)

// Require rejects requests whose bearer token differs from expected. An
// empty expected token leaves the endpoint open, which is only meant for
// local development.
func Require(expected string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if expected == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(expected)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "ops token mismatch",
					"path", r.URL.Path,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`)) //nolint:errcheck // headers already sent
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
