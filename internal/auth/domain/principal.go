package domain

import "time"

// Role classifies a principal for scope resolution. Roles are closed at
// deploy time; the catalog validates every role it maps.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// PrincipalStatus is the account lifecycle state. Only active principals may
// authenticate.
type PrincipalStatus string

const (
	StatusActive    PrincipalStatus = "active"
	StatusSuspended PrincipalStatus = "suspended"
	StatusClosed    PrincipalStatus = "closed"
)

// Principal is the authenticated identity. User management itself lives in
// the storefront; this service only reads credentials and writes login
// activity.
type Principal struct {
	ID           string
	Email        string
	PasswordHash string // argon2id encoded
	Role         Role
	Status       PrincipalStatus

	TwoFactorSecret  *string    // TOTP secret (nullable, base32 encoded)
	TwoFactorEnabled *time.Time // when 2FA was turned on (nullable)

	LastLoginAt *time.Time
	LastLoginIP string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the principal may authenticate.
func (p Principal) Active() bool { return p.Status == StatusActive }

// TwoFactorActive reports whether the principal has completed 2FA enrollment.
func (p Principal) TwoFactorActive() bool {
	return p.TwoFactorEnabled != nil && p.TwoFactorSecret != nil && *p.TwoFactorSecret != ""
}
