package store

import (
	"context"
	"errors"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. Sub-repositories keep concerns tidy and let transactions
// reuse the same query code.
type Store interface {
	Principals() Principals
	Tokens() Tokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Prefer this
	// over Tx for multi-step operations (refresh rotation, revoke-all).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Principals interface {
	// GetPrincipalByID returns a principal by id.
	GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error)

	// GetPrincipalByEmail is used during credential verification.
	GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error)

	// CreatePrincipal inserts a new principal (id is provided by app via ULID).
	CreatePrincipal(ctx context.Context, p domain.Principal) error

	// UpdateLoginActivity records a successful authentication.
	UpdateLoginActivity(ctx context.Context, principalID, ip string, at time.Time) error

	// UpdateStatus moves a principal through its lifecycle (active,
	// suspended, closed). Status changes originate in the storefront.
	UpdateStatus(ctx context.Context, principalID string, status domain.PrincipalStatus, at time.Time) error

	// SetTwoFactor stores an enrolled TOTP secret and marks 2FA enabled.
	// Enrollment itself lives in the storefront; this service only needs
	// the result.
	SetTwoFactor(ctx context.Context, principalID, secret string, enabledAt time.Time) error

	// IsEmpty returns true if there are no principals (boot seeding check).
	IsEmpty(ctx context.Context) (bool, error)
}

type Tokens interface {
	// CreateToken stores a new token record. The bearer secret itself is
	// never stored, only its hash.
	CreateToken(ctx context.Context, t domain.Token) error

	// GetTokenByID returns a token by id regardless of liveness.
	GetTokenByID(ctx context.Context, id string) (domain.Token, error)

	// GetTokenByHash returns the token whose hash matches the presented
	// bearer secret's fingerprint. Liveness is the caller's concern.
	GetTokenByHash(ctx context.Context, hash string) (domain.Token, error)

	// CountLiveTokens counts non-revoked, non-expired tokens for a
	// (principal, device type) pair as of now.
	CountLiveTokens(ctx context.Context, principalID, deviceType string, now time.Time) (int, error)

	// ListLiveTokensByPrincipal returns every live token a principal holds,
	// newest first.
	ListLiveTokensByPrincipal(ctx context.Context, principalID string, now time.Time) ([]domain.Token, error)

	// RevokeToken sets revoked_at if not already set. Revoking an already
	// revoked token is a no-op, not an error; the original revoked_at wins.
	RevokeToken(ctx context.Context, tokenID string, at time.Time) error

	// RevokeAllPrincipalTokens revokes every live token for a principal and
	// returns how many were revoked. Run inside WithTx for atomicity.
	RevokeAllPrincipalTokens(ctx context.Context, principalID string, at time.Time) (int, error)

	// MarkRefreshed links a superseded token to its successor. It never
	// touches expires_at or revoked_at: the grace-period sweep revokes the
	// old token later.
	MarkRefreshed(ctx context.Context, oldTokenID, newTokenID string, at time.Time) error

	// TouchTokenUsage updates last_used_at/last_used_ip. Best-effort from
	// the caller's perspective.
	TouchTokenUsage(ctx context.Context, tokenID, ip string, at time.Time) error

	// RevokeSupersededTokens revokes tokens refreshed before the cutoff
	// (grace period elapsed) that are still unrevoked. Housekeeping.
	RevokeSupersededTokens(ctx context.Context, refreshedBefore, at time.Time) (int, error)

	// DeleteDeadTokens permanently removes tokens revoked or expired before
	// the cutoff. The only physical delete; housekeeping only.
	DeleteDeadTokens(ctx context.Context, cutoff time.Time) (int, error)
}
