package credential

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "peegflow/pkg/domain"
	"peegflow/pkg/requestcontext"
)

var (
	userID   = id.UserID(uuid.New())
	tenantID = id.TenantID(uuid.New())
	adminID  = id.PlatformAdminID(uuid.New())
	issuedAt = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
)

func newCodec(t *testing.T, tenantSecret, platformSecret string) *Codec {
	t.Helper()
	c, err := NewCodec(Config{TenantSecret: []byte(tenantSecret), PlatformSecret: []byte(platformSecret)})
	require.NoError(t, err)
	return c
}

func at(ts time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), ts)
}

func TestNewCodecRequiresBothSecrets(t *testing.T) {
	_, err := NewCodec(Config{TenantSecret: []byte("t")})
	assert.Error(t, err)
	_, err = NewCodec(Config{PlatformSecret: []byte("p")})
	assert.Error(t, err)
}

func TestTenantRoundTrip(t *testing.T) {
	c := newCodec(t, "tenant-secret", "platform-secret")
	token, err := c.IssueTenant(at(issuedAt), userID, tenantID, id.RolePatient)
	require.NoError(t, err)

	got, err := c.VerifyTenant(at(issuedAt.Add(time.Hour)), token)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, tenantID, got.TenantID)
	assert.Equal(t, id.RolePatient, got.Role)
	assert.Equal(t, issuedAt.Add(DefaultTTL), got.ExpiresAt.UTC())
}

func TestPlatformRoundTrip(t *testing.T) {
	c := newCodec(t, "tenant-secret", "platform-secret")
	token, err := c.IssuePlatform(at(issuedAt), adminID)
	require.NoError(t, err)

	got, err := c.VerifyPlatform(at(issuedAt.Add(time.Hour)), token)
	require.NoError(t, err)
	assert.Equal(t, adminID, got.AdminID)
}

func TestExpiryIsSevenDays(t *testing.T) {
	c := newCodec(t, "tenant-secret", "platform-secret")
	token, err := c.IssueTenant(at(issuedAt), userID, tenantID, id.RoleAdmin)
	require.NoError(t, err)

	_, err = c.VerifyTenant(at(issuedAt.Add(DefaultTTL-time.Minute)), token)
	require.NoError(t, err)

	_, err = c.VerifyTenant(at(issuedAt.Add(DefaultTTL+time.Minute)), token)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, "expired", Reason(err))
	assert.Equal(t, "invalid credential", err.Error(), "the caller-visible message never names the cause")
}

func TestCrossDomainRejection(t *testing.T) {
	for name, c := range map[string]*Codec{
		"distinct secrets": newCodec(t, "tenant-secret", "platform-secret"),
		"shared fallback":  newCodec(t, "shared-bootstrap", "shared-bootstrap"),
	} {
		t.Run(name, func(t *testing.T) {
			ctx := at(issuedAt)
			tenantToken, err := c.IssueTenant(ctx, userID, tenantID, id.RoleAdmin)
			require.NoError(t, err)
			platformToken, err := c.IssuePlatform(ctx, adminID)
			require.NoError(t, err)

			_, err = c.VerifyPlatform(ctx, tenantToken)
			assert.ErrorIs(t, err, ErrInvalid)
			_, err = c.VerifyTenant(ctx, platformToken)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestDiscriminatorCheckedEvenWithMatchingAudience(t *testing.T) {
	c := newCodec(t, "shared", "shared")
	now := issuedAt

	// A platform-shaped payload dressed with the tenant audience.
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, TenantClaims{
		Kind:     KindPlatform,
		TenantID: tenantID.String(),
		Role:     id.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audienceTenant},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	token, err := forged.SignedString([]byte("shared"))
	require.NoError(t, err)

	_, err = c.VerifyTenant(at(now), token)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, Reason(err), "wrong token kind")
}

func TestMissingDiscriminatorRejected(t *testing.T) {
	c := newCodec(t, "tenant-secret", "platform-secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       userID.String(),
		"tenant_id": tenantID.String(),
		"role":      "admin",
		"iss":       issuer,
		"aud":       audienceTenant,
		"iat":       issuedAt.Unix(),
		"exp":       issuedAt.Add(time.Hour).Unix(),
	}).SignedString([]byte("tenant-secret"))
	require.NoError(t, err)

	_, err = c.VerifyTenant(at(issuedAt), token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestOtherPayloadShapesRejected(t *testing.T) {
	c := newCodec(t, "tenant-secret", "platform-secret")
	// tenant_id as a number instead of a UUID string.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"kind":      "tenant",
		"sub":       userID.String(),
		"tenant_id": 7,
		"role":      "admin",
		"iss":       issuer,
		"aud":       audienceTenant,
		"iat":       issuedAt.Unix(),
		"exp":       issuedAt.Add(time.Hour).Unix(),
	}).SignedString([]byte("tenant-secret"))
	require.NoError(t, err)

	_, err = c.VerifyTenant(at(issuedAt), token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMalformedClaimsRejected(t *testing.T) {
	c := newCodec(t, "tenant-secret", "platform-secret")
	build := func(subject, tenant string, role id.Role) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, TenantClaims{
			Kind:     KindTenant,
			TenantID: tenant,
			Role:     role,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   subject,
				Issuer:    issuer,
				Audience:  jwt.ClaimStrings{audienceTenant},
				IssuedAt:  jwt.NewNumericDate(issuedAt),
				ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
			},
		}).SignedString([]byte("tenant-secret"))
		require.NoError(t, err)
		return tok
	}

	cases := map[string]string{
		"subject not a uuid": build("42", tenantID.String(), id.RoleAdmin),
		"tenant not a uuid":  build(userID.String(), "demo", id.RoleAdmin),
		"unknown role":       build(userID.String(), tenantID.String(), "owner"),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.VerifyTenant(at(issuedAt), tok)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestRejectsAlgorithmConfusionAndTampering(t *testing.T) {
	c := newCodec(t, "tenant-secret", "platform-secret")
	claims := TenantClaims{
		Kind:     KindTenant,
		TenantID: tenantID.String(),
		Role:     id.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audienceTenant},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
		},
	}

	cases := []struct {
		name   string
		method jwt.SigningMethod
		key    any
	}{
		{"hs512 header", jwt.SigningMethodHS512, []byte("tenant-secret")},
		{"alg none", jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType},
		{"wrong key", jwt.SigningMethodHS256, []byte("guessed")},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := jwt.NewWithClaims(tt.method, claims).SignedString(tt.key)
			require.NoError(t, err)
			_, err = c.VerifyTenant(at(issuedAt), tok)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	t.Run("payload edited after signing", func(t *testing.T) {
		tok, err := c.IssueTenant(at(issuedAt), userID, tenantID, id.RolePatient)
		require.NoError(t, err)
		parts := strings.Split(tok, ".")
		parts[1] = parts[1][:len(parts[1])-2] + "xy"
		_, err = c.VerifyTenant(at(issuedAt), strings.Join(parts, "."))
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		for _, tok := range []string{"", "not-a-token", "a.b.c"} {
			_, err := c.VerifyTenant(at(issuedAt), tok)
			assert.ErrorIs(t, err, ErrInvalid)
		}
	})
}

func TestIssueValidatesInputs(t *testing.T) {
	c := newCodec(t, "tenant-secret", "platform-secret")
	_, err := c.IssueTenant(context.Background(), id.UserID{}, tenantID, id.RoleAdmin)
	assert.Error(t, err)
	_, err = c.IssueTenant(context.Background(), userID, tenantID, "root")
	assert.Error(t, err)
	_, err = c.IssuePlatform(context.Background(), id.PlatformAdminID{})
	assert.Error(t, err)
}

func TestReason(t *testing.T) {
	assert.Equal(t, "", Reason(nil))
	assert.Equal(t, "boom", Reason(errors.New("boom")))
}
