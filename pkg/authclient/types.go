// Package authclient holds the wire types for the Lumamart auth service and
// a typed Go client for it. The server handlers and the integration tests
// share these definitions so the two cannot drift.
package authclient

import "time"

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	// Error is the machine-readable code, e.g. "invalid_credentials".
	Error string `json:"error"`

	// ErrorDescription is a human-readable description.
	ErrorDescription string `json:"error_description"`
}

// LoginRequest is the body of POST /v1/auth/login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceType string `json:"device_type"`
	DeviceName string `json:"device_name,omitempty"`
	TokenName  string `json:"token_name,omitempty"`

	// Scopes narrows the granted set; empty means "everything available to
	// this role and device".
	Scopes []string `json:"scopes,omitempty"`

	TwoFactorCode string `json:"two_factor_code,omitempty"`
}

// RefreshRequest is the optional body of POST /v1/auth/refresh.
type RefreshRequest struct {
	// DeviceVerification asks the server to check the request's device
	// fingerprint against the one captured at login before rotating.
	DeviceVerification bool `json:"device_verification,omitempty"`
}

// TokenResponse is returned by login and refresh. Token is the opaque bearer
// secret; it is shown exactly once and never recoverable afterwards.
type TokenResponse struct {
	Token      string   `json:"token"`
	TokenID    string   `json:"token_id"`
	TokenType  string   `json:"token_type"` // always "Bearer"
	Scopes     []string `json:"scopes"`
	DeviceType string   `json:"device_type"`

	// ExpiresAt is omitted for device types whose tokens never expire.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// SessionsRemaining is how many more concurrent sessions this device
	// type allows. Only set on login.
	SessionsRemaining *int `json:"sessions_remaining,omitempty"`
}

// LogoutRequest is the body of POST /v1/auth/logout.
type LogoutRequest struct {
	AllDevices bool `json:"all_devices,omitempty"`
}

// LogoutResponse reports how many tokens the logout revoked.
type LogoutResponse struct {
	Revoked int `json:"revoked"`
}

// TokenInfo is one live session in the GET /v1/auth/tokens listing.
type TokenInfo struct {
	TokenID    string     `json:"token_id"`
	Name       string     `json:"name"`
	DeviceType string     `json:"device_type"`
	DeviceName string     `json:"device_name,omitempty"`
	Scopes     []string   `json:"scopes"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	LastUsedIP string     `json:"last_used_ip,omitempty"`
	Current    bool       `json:"current"`
}

// TokenListResponse is the body of GET /v1/auth/tokens.
type TokenListResponse struct {
	Tokens []TokenInfo `json:"tokens"`
}

// MeResponse is the body of GET /v1/me: the caller as the token sees them.
type MeResponse struct {
	PrincipalID string   `json:"principal_id"`
	Role        string   `json:"role"`
	TokenID     string   `json:"token_id"`
	DeviceType  string   `json:"device_type"`
	Scopes      []string `json:"scopes"`
}

// HealthChecks itemizes dependency status in the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
