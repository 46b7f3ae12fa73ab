package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"peegflow/internal/ratelimit/models"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/httputil"
	"peegflow/pkg/requestcontext"
)

type Limiter interface {
	Check(ctx context.Context, class models.Class, ip string) *models.Result
}

// RateLimit rejects requests once the client IP has spent its budget for
// class. It must run after the client metadata middleware.
func RateLimit(limiter Limiter, class models.Class) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			res := limiter.Check(ctx, class, requestcontext.ClientIP(ctx))
			if res == nil {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retry := int(math.Ceil(res.RetryAfter.Seconds()))
				h.Set("Retry-After", strconv.Itoa(retry))
				httputil.WriteError(w, dErrors.New(dErrors.CodeTooManyRequests,
					fmt.Sprintf("too many requests, try again in %d seconds", retry)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
