// Package auth holds the authorization guards: bearer-token middleware for
// the tenant and platform trust domains, and role checks.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	id "peegflow/pkg/domain"
	dErrors "peegflow/pkg/domain-errors"
	"peegflow/pkg/platform/httputil"
	"peegflow/pkg/requestcontext"
)

// TenantSlugHeader optionally pins a request to one tenant. When present it
// must match the tenant of the bearer token.
const TenantSlugHeader = "X-Tenant-Slug"

// PrincipalResolver turns a tenant bearer token into a principal.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token, slugHint string) (*id.Principal, error)
}

// PlatformResolver turns a platform bearer token into an operator.
type PlatformResolver interface {
	ResolvePlatformAdmin(ctx context.Context, token string) (*id.PlatformPrincipal, error)
}

var (
	errMissingToken = dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header")
	errForbidden    = dErrors.New(dErrors.CodeForbidden, "Access denied")
)

func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// RequireTenantAuth resolves the bearer token into a tenant principal and
// stores it in the request context.
func RequireTenantAuth(resolver PrincipalResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := bearerToken(r)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, errMissingToken)
				return
			}

			p, err := resolver.ResolvePrincipal(ctx, token, r.Header.Get(TenantSlugHeader))
			if err != nil {
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, p)))
		})
	}
}

// RequirePlatformAdmin resolves the bearer token through the platform
// verifier only. The operator goes under its own context key, so nothing
// placed by RequireTenantAuth can satisfy it.
func RequirePlatformAdmin(resolver PlatformResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := bearerToken(r)
			if !ok {
				logger.WarnContext(ctx, "unauthorized platform access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, errMissingToken)
				return
			}

			p, err := resolver.ResolvePlatformAdmin(ctx, token)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPlatformAdmin(ctx, p)))
		})
	}
}

// CheckRole returns a forbidden error unless p holds one of roles.
func CheckRole(p *id.Principal, roles ...id.Role) error {
	if p == nil || !slices.Contains(roles, p.Role) {
		return errForbidden
	}
	return nil
}

// RequireRole must run after RequireTenantAuth.
func RequireRole(logger *slog.Logger, roles ...id.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p := requestcontext.Principal(ctx)
			if err := CheckRole(p, roles...); err != nil {
				attrs := []any{"request_id", requestcontext.RequestID(ctx), "path", r.URL.Path}
				if p != nil {
					attrs = append(attrs, "user_id", p.UserID.String(), "role", p.Role.String())
				}
				logger.WarnContext(ctx, "forbidden - role not allowed", attrs...)
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
