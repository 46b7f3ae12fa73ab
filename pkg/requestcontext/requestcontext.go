// Package requestcontext holds the request-scoped values shared between
// middleware, handlers and services.
package requestcontext

import (
	"context"
	"time"

	id "peegflow/pkg/domain"
)

type (
	requestIDKey     struct{}
	timeKey          struct{}
	clientIPKey      struct{}
	userAgentKey     struct{}
	principalKey     struct{}
	platformAdminKey struct{}
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithTime pins the clock for everything downstream of ctx.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timeKey{}, t)
}

// Now returns the request-scoped time, or time.Now() outside a request.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(timeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}

func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(userAgentKey{}).(string)
	return v
}

// WithPrincipal stores the tenant principal resolved for this request.
func WithPrincipal(ctx context.Context, p *id.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// Principal returns the tenant principal, or nil when the request is not
// tenant-authenticated.
func Principal(ctx context.Context) *id.Principal {
	p, _ := ctx.Value(principalKey{}).(*id.Principal)
	return p
}

// WithPlatformAdmin stores the platform operator resolved for this request.
// It uses its own key so a tenant principal can never be read back as one.
func WithPlatformAdmin(ctx context.Context, p *id.PlatformPrincipal) context.Context {
	return context.WithValue(ctx, platformAdminKey{}, p)
}

func PlatformAdmin(ctx context.Context) *id.PlatformPrincipal {
	p, _ := ctx.Value(platformAdminKey{}).(*id.PlatformPrincipal)
	return p
}
