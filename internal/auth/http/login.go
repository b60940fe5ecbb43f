package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lumamart/auth/internal/auth/service"
	"github.com/lumamart/auth/pkg/authclient"
	"github.com/lumamart/auth/pkg/httpx"
)

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	AuthService *service.AuthenticationService
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Authenticates with email and password and mints a device-scoped opaque bearer token.
//	@Description	The token value is returned exactly once; only its hash is stored.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authclient.LoginRequest		true	"Login request"
//	@Success		200		{object}	authclient.TokenResponse	"token, token_id, scopes, expires_at"
//	@Failure		400		{object}	authclient.ErrorResponse	"invalid_request, unknown_device_type"
//	@Failure		401		{object}	authclient.ErrorResponse	"invalid_credentials, two_factor_required"
//	@Failure		403		{object}	authclient.ErrorResponse	"account_inactive"
//	@Failure		409		{object}	authclient.ErrorResponse	"session_limit_reached"
//	@Failure		429		{object}	authclient.ErrorResponse	"rate_limited"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authclient.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authclient.ErrInvalidRequest.WriteError(w)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || req.DeviceType == "" {
		authclient.ErrInvalidRequest.WriteError(w)
		return
	}

	result, err := h.AuthService.Authenticate(r.Context(), service.AuthenticateRequest{
		Email:         req.Email,
		Password:      req.Password,
		DeviceType:    req.DeviceType,
		DeviceName:    req.DeviceName,
		TokenName:     req.TokenName,
		Scopes:        req.Scopes,
		TwoFactorCode: req.TwoFactorCode,
		ClientIP:      httpx.IPKeyExtractor(r),
		Fingerprint:   requestFingerprint(r),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	remaining := result.SessionsRemaining
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authclient.TokenResponse{
		Token:             result.Secret,
		TokenID:           result.TokenID,
		TokenType:         "Bearer",
		Scopes:            result.Scopes,
		DeviceType:        result.DeviceType,
		ExpiresAt:         result.ExpiresAt,
		SessionsRemaining: &remaining,
	})
}
