package domain

// Role is the tenant-scoped role carried by an account and its credential.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePatient Role = "patient"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RolePatient
}

func (r Role) String() string { return string(r) }

// Principal is the authenticated, tenant-bound account for one request.
type Principal struct {
	UserID     UserID
	TenantID   TenantID
	TenantSlug string
	Email      string
	Role       Role
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// PlatformPrincipal is the authenticated platform operator for one request.
// It carries no tenant and no role.
type PlatformPrincipal struct {
	AdminID PlatformAdminID
	Email   string
}
