package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
)

// The closed set of authentication failures. Handlers map these onto HTTP
// statuses; anything outside this set is an internal error.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to probe which emails exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrUnknownDeviceType = errors.New("unknown device type")

	ErrTwoFactorRequired    = errors.New("two-factor code required")
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")

	ErrUnauthenticated = errors.New("missing or invalid token")

	ErrRefreshNotAllowed = errors.New("refresh not permitted for this device type")

	ErrDeviceVerificationFailed = errors.New("device verification failed")

	ErrTokenNotFound = errors.New("token not found")

	// ErrNotTokenOwner is returned when a principal tries to manage a token
	// that belongs to someone else.
	ErrNotTokenOwner = errors.New("token belongs to another principal")

	// ErrCurrentTokenConfirmation is returned when a delete targets the
	// request's own token without the confirmation flag.
	ErrCurrentTokenConfirmation = errors.New("revoking the current token requires confirmation")
)

// RateLimitedError is returned when the attempt limiter throttles a client.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry after %s", e.RetryAfter)
}

// AccountInactiveError distinguishes a valid-credential login against a
// suspended or closed account. Deliberately a distinct error: the caller
// proved they hold the password, so naming the account state is not a leak.
type AccountInactiveError struct {
	Status domain.PrincipalStatus
}

func (e *AccountInactiveError) Error() string {
	return fmt.Sprintf("account is %s", e.Status)
}

// SessionLimitError is returned when a device type's concurrent session cap
// is reached.
type SessionLimitError struct {
	DeviceType string
	Limit      int
}

func (e *SessionLimitError) Error() string {
	return fmt.Sprintf("session limit of %d reached for device type %q", e.Limit, e.DeviceType)
}

// InsufficientScopeError is returned when a live token lacks a required
// capability. The missing scope is named so clients can re-authenticate with
// a broader request.
type InsufficientScopeError struct {
	Scope string
}

func (e *InsufficientScopeError) Error() string {
	return fmt.Sprintf("token lacks required scope %q", e.Scope)
}
