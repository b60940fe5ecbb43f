package http

import (
	"errors"
	"net/http"

	"github.com/lumamart/auth/internal/auth/service"
	"github.com/lumamart/auth/pkg/authclient"
	"github.com/lumamart/auth/pkg/slogx"
)

// writeServiceError maps the service layer's closed error set onto wire
// errors. Anything outside the set is logged and becomes a plain 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		rateLimited     *service.RateLimitedError
		accountInactive *service.AccountInactiveError
		sessionLimit    *service.SessionLimitError
		insufficient    *service.InsufficientScopeError
	)

	switch {
	case errors.As(err, &rateLimited):
		authclient.RateLimitedError(rateLimited.RetryAfter).WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authclient.ErrInvalidCredentials.WriteError(w)
	case errors.As(err, &accountInactive):
		authclient.AccountInactiveError(string(accountInactive.Status)).WriteError(w)
	case errors.Is(err, service.ErrUnknownDeviceType):
		authclient.ErrUnknownDeviceType.WriteError(w)
	case errors.Is(err, service.ErrTwoFactorRequired):
		authclient.ErrTwoFactorRequired.WriteError(w)
	case errors.Is(err, service.ErrInvalidTwoFactorCode):
		authclient.ErrInvalidTwoFactorCode.WriteError(w)
	case errors.As(err, &sessionLimit):
		authclient.SessionLimitError(sessionLimit.DeviceType, sessionLimit.Limit).WriteError(w)
	case errors.Is(err, service.ErrUnauthenticated):
		authclient.ErrInvalidToken.WriteError(w)
	case errors.As(err, &insufficient):
		authclient.InsufficientScopeError(insufficient.Scope).WriteError(w)
	case errors.Is(err, service.ErrRefreshNotAllowed):
		authclient.ErrRefreshNotAllowed.WriteError(w)
	case errors.Is(err, service.ErrDeviceVerificationFailed):
		authclient.ErrDeviceVerificationFailed.WriteError(w)
	case errors.Is(err, service.ErrTokenNotFound):
		authclient.ErrTokenNotFound.WriteError(w)
	case errors.Is(err, service.ErrNotTokenOwner):
		authclient.ErrNotTokenOwner.WriteError(w)
	case errors.Is(err, service.ErrCurrentTokenConfirmation):
		authclient.ErrConfirmationRequired.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		authclient.ErrServerError.WriteError(w)
	}
}
