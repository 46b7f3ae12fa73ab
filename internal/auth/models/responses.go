package models

// TokenResponse mirrors the OAuth2 password grant response shape so existing
// clients keep working.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type RegisterResponse struct {
	TokenResponse
	TenantID   string `json:"tenant_id"`
	TenantSlug string `json:"tenant_slug"`
	UserID     string `json:"user_id"`
}

type MeResponse struct {
	UserID     string `json:"user_id"`
	TenantID   string `json:"tenant_id"`
	TenantSlug string `json:"tenant_slug"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

type PlatformMeResponse struct {
	AdminID string `json:"admin_id"`
	Email   string `json:"email"`
}
