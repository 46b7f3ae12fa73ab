// Package credential issues and verifies the signed bearer tokens used by
// the two trust domains: tenant accounts and platform operators.
//
// Each domain has its own secret, audience and claims type, and every token
// carries a "kind" discriminator that is checked before any other claim is
// trusted. A token from one domain never verifies in the other, even when
// both secrets are the same.
package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "peegflow/pkg/domain"
	"peegflow/pkg/requestcontext"
)

// Kind is the trust-domain discriminator embedded in every token.
type Kind string

const (
	KindTenant   Kind = "tenant"
	KindPlatform Kind = "platform_admin"
)

const (
	DefaultTTL = 7 * 24 * time.Hour
	issuer     = "peegflow"

	audienceTenant   = "peegflow-tenant"
	audiencePlatform = "peegflow-platform"
)

// ErrInvalid is the only error verification returns to callers. Use Reason
// to get the internal cause for logging.
var ErrInvalid = errors.New("invalid credential")

type invalidError struct {
	reason string
}

func (e *invalidError) Error() string { return ErrInvalid.Error() }
func (e *invalidError) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(format string, args ...any) error {
	return &invalidError{reason: fmt.Sprintf(format, args...)}
}

// Reason returns the internal cause of a verification failure. It must only
// be written to logs, never to responses.
func Reason(err error) string {
	var ie *invalidError
	if errors.As(err, &ie) {
		return ie.reason
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// TenantClaims are the claims of a tenant-domain token.
type TenantClaims struct {
	Kind     Kind    `json:"kind"`
	TenantID string  `json:"tenant_id"`
	Role     id.Role `json:"role"`
	jwt.RegisteredClaims
}

// PlatformClaims are the claims of a platform-domain token. They carry no
// tenant and no role.
type PlatformClaims struct {
	Kind Kind `json:"kind"`
	jwt.RegisteredClaims
}

// TenantIdentity is what a verified tenant token asserts.
type TenantIdentity struct {
	UserID    id.UserID
	TenantID  id.TenantID
	Role      id.Role
	ExpiresAt time.Time
}

// PlatformIdentity is what a verified platform token asserts.
type PlatformIdentity struct {
	AdminID   id.PlatformAdminID
	ExpiresAt time.Time
}

// Config holds the per-domain signing secrets. Both are required.
type Config struct {
	TenantSecret   []byte
	PlatformSecret []byte
	TTL            time.Duration
}

// Codec signs and verifies HS256 tokens for both trust domains.
type Codec struct {
	tenantKey   []byte
	platformKey []byte
	ttl         time.Duration
}

func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.TenantSecret) == 0 || len(cfg.PlatformSecret) == 0 {
		return nil, errors.New("credential: both tenant and platform secrets are required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Codec{tenantKey: cfg.TenantSecret, platformKey: cfg.PlatformSecret, ttl: ttl}, nil
}

// TTL is the lifetime applied to newly issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// IssueTenant signs a tenant-domain token for an account.
func (c *Codec) IssueTenant(ctx context.Context, userID id.UserID, tenantID id.TenantID, role id.Role) (string, error) {
	if userID.IsNil() || tenantID.IsNil() {
		return "", errors.New("credential: user and tenant are required")
	}
	if !role.IsValid() {
		return "", fmt.Errorf("credential: unknown role %q", role)
	}
	now := requestcontext.Now(ctx)
	claims := TenantClaims{
		Kind:             KindTenant,
		TenantID:         tenantID.String(),
		Role:             role,
		RegisteredClaims: c.registered(userID.String(), audienceTenant, now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.tenantKey)
}

// IssuePlatform signs a platform-domain token for an operator.
func (c *Codec) IssuePlatform(ctx context.Context, adminID id.PlatformAdminID) (string, error) {
	if adminID.IsNil() {
		return "", errors.New("credential: admin is required")
	}
	now := requestcontext.Now(ctx)
	claims := PlatformClaims{
		Kind:             KindPlatform,
		RegisteredClaims: c.registered(adminID.String(), audiencePlatform, now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.platformKey)
}

func (c *Codec) registered(subject, audience string, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		ID:        uuid.NewString(),
	}
}

// VerifyTenant checks signature, expiry, audience and the tenant
// discriminator, then parses the identity. Every failure is ErrInvalid.
func (c *Codec) VerifyTenant(ctx context.Context, token string) (*TenantIdentity, error) {
	claims := new(TenantClaims)
	if err := c.parse(ctx, token, claims, c.tenantKey, audienceTenant); err != nil {
		return nil, err
	}
	if claims.Kind != KindTenant {
		return nil, invalid("wrong token kind %q", claims.Kind)
	}
	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return nil, invalid("malformed subject")
	}
	tenantID, err := id.ParseTenantID(claims.TenantID)
	if err != nil {
		return nil, invalid("malformed tenant_id")
	}
	if !claims.Role.IsValid() {
		return nil, invalid("unknown role %q", claims.Role)
	}
	return &TenantIdentity{
		UserID:    userID,
		TenantID:  tenantID,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// VerifyPlatform is VerifyTenant for the platform domain.
func (c *Codec) VerifyPlatform(ctx context.Context, token string) (*PlatformIdentity, error) {
	claims := new(PlatformClaims)
	if err := c.parse(ctx, token, claims, c.platformKey, audiencePlatform); err != nil {
		return nil, err
	}
	if claims.Kind != KindPlatform {
		return nil, invalid("wrong token kind %q", claims.Kind)
	}
	adminID, err := id.ParsePlatformAdminID(claims.Subject)
	if err != nil {
		return nil, invalid("malformed subject")
	}
	return &PlatformIdentity{AdminID: adminID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (c *Codec) parse(ctx context.Context, token string, claims jwt.Claims, key []byte, audience string) error {
	if token == "" {
		return invalid("empty token")
	}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, jwt.ErrTokenUnverifiable
			}
			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return requestcontext.Now(ctx) }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return invalid("expired")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return invalid("bad signature")
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return invalid("wrong audience")
		default:
			return invalid("parse: %v", err)
		}
	}
	if !parsed.Valid {
		return invalid("token not valid")
	}
	return nil
}
