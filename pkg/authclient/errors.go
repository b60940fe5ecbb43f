package authclient

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lumamart/auth/pkg/httpx"
)

// Error codes shared between server and client.
const (
	ErrorCodeInvalidRequest           = "invalid_request"
	ErrorCodeInvalidCredentials       = "invalid_credentials"
	ErrorCodeAccountInactive          = "account_inactive"
	ErrorCodeUnknownDeviceType        = "unknown_device_type"
	ErrorCodeTwoFactorRequired        = "two_factor_required"
	ErrorCodeInvalidTwoFactorCode     = "invalid_two_factor_code"
	ErrorCodeRateLimited              = "rate_limited"
	ErrorCodeSessionLimitReached      = "session_limit_reached"
	ErrorCodeInvalidToken             = "invalid_token"
	ErrorCodeInsufficientScope        = "insufficient_scope"
	ErrorCodeRefreshNotAllowed        = "refresh_not_allowed"
	ErrorCodeDeviceVerification       = "device_verification_failed"
	ErrorCodeTokenNotFound            = "token_not_found"
	ErrorCodeNotTokenOwner            = "not_token_owner"
	ErrorCodeConfirmationRequired     = "confirmation_required"
	ErrorCodeServerError              = "server_error"
)

// APIError is the error type shared by the server (to write responses) and
// the client (to surface them). It implements the error interface.
type APIError struct {
	// StatusCode is the HTTP status for this error.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code.
	Code string `json:"error"`

	// Description is human-readable.
	Description string `json:"error_description"`

	// RetryAfter is set on rate-limit errors and mirrored in the
	// Retry-After header.
	RetryAfter time.Duration `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes the error as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	if e.RetryAfter > 0 {
		secs := int(e.RetryAfter.Round(time.Second).Seconds())
		if secs < 1 {
			secs = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	httpx.WriteJSON(w, e.StatusCode, ErrorResponse{
		Error:            e.Code,
		ErrorDescription: e.Description,
	})
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required fields",
	}

	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid email or password",
	}

	ErrUnknownDeviceType = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeUnknownDeviceType,
		Description: "unrecognized device type",
	}

	ErrTwoFactorRequired = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeTwoFactorRequired,
		Description: "a two-factor code is required for this login",
	}

	ErrInvalidTwoFactorCode = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidTwoFactorCode,
		Description: "the two-factor code is invalid",
	}

	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the token is missing, expired, or revoked",
	}

	ErrRefreshNotAllowed = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeRefreshNotAllowed,
		Description: "this device type does not permit token refresh",
	}

	ErrDeviceVerificationFailed = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeDeviceVerification,
		Description: "device verification failed",
	}

	ErrTokenNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeTokenNotFound,
		Description: "no such token",
	}

	ErrNotTokenOwner = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeNotTokenOwner,
		Description: "the token belongs to another principal",
	}

	ErrConfirmationRequired = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeConfirmationRequired,
		Description: "revoking the current token requires confirm_current=true",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// RateLimitedError builds the 429 response carrying a Retry-After hint.
func RateLimitedError(retryAfter time.Duration) *APIError {
	return &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimited,
		Description: "too many failed attempts, try again later",
		RetryAfter:  retryAfter,
	}
}

// AccountInactiveError names the account state. Returned only after the
// caller has proven the password.
func AccountInactiveError(status string) *APIError {
	return &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeAccountInactive,
		Description: fmt.Sprintf("account is %s", status),
	}
}

// SessionLimitError reports a full device-type session pool.
func SessionLimitError(deviceType string, limit int) *APIError {
	return &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeSessionLimitReached,
		Description: fmt.Sprintf("session limit of %d reached for device type %q", limit, deviceType),
	}
}

// InsufficientScopeError names the missing capability.
func InsufficientScopeError(scope string) *APIError {
	return &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeInsufficientScope,
		Description: fmt.Sprintf("token lacks required scope %q", scope),
	}
}
