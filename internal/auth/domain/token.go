package domain

import (
	"slices"
	"time"
)

// ScopeWildcard grants every capability. It appears only on tokens whose
// role and device both resolved to "no restriction".
const ScopeWildcard = "*"

// Token is the stored record of an issued bearer token. The opaque secret is
// never persisted; only its SHA-256 fingerprint (TokenHash) is, under a
// unique index.
type Token struct {
	ID          string
	PrincipalID string
	Name        string   // display name, e.g. "Sarah's iPhone"
	Scopes      []string // subset of the catalog, or the wildcard
	DeviceType  string
	DeviceName  string
	Fingerprint string // derived device fingerprint, soft signal only
	TokenHash   string

	CreatedFromIP string
	CreatedAt     time.Time
	ExpiresAt     *time.Time // nil means never expires
	LastUsedAt    *time.Time
	LastUsedIP    string

	// RevokedAt, once set, is never cleared.
	RevokedAt *time.Time

	// RefreshedInto points at the successor token after a refresh. The old
	// token stays valid for a grace period; the housekeeping sweep revokes it.
	RefreshedInto *string
	RefreshedAt   *time.Time
	RefreshCount  int
}

// Live reports whether the token is neither revoked nor past its expiry.
func (t Token) Live(now time.Time) bool {
	if t.RevokedAt != nil {
		return false
	}
	return t.ExpiresAt == nil || t.ExpiresAt.After(now)
}

// HasScope reports whether the token carries the named capability, either
// directly or via the wildcard.
func (t Token) HasScope(scope string) bool {
	return slices.Contains(t.Scopes, ScopeWildcard) || slices.Contains(t.Scopes, scope)
}

// AuthResult is what a successful authentication or refresh returns. Secret
// is the opaque bearer value; this is the only place it ever appears in
// plaintext.
type AuthResult struct {
	Secret            string
	TokenID           string
	Scopes            []string
	DeviceType        string
	ExpiresAt         *time.Time
	SessionsRemaining int
}

// Identity is the resolved caller attached to a request after successful
// token validation.
type Identity struct {
	PrincipalID string
	Role        Role
	TokenID     string
	DeviceType  string
	Scopes      []string
}

// HasScope reports whether the identity carries the named capability.
func (id Identity) HasScope(scope string) bool {
	return slices.Contains(id.Scopes, ScopeWildcard) || slices.Contains(id.Scopes, scope)
}
