package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/lumamart/auth/internal/auth/service"
	"github.com/lumamart/auth/pkg/authclient"
	"github.com/lumamart/auth/pkg/httpx"
)

// RefreshHandler serves POST /v1/auth/refresh. It reads the bearer directly
// rather than going through BearerAuth: the refresh service needs the raw
// secret and applies its own liveness and fingerprint checks.
type RefreshHandler struct {
	RefreshService *service.RefreshService
}

// ServeHTTP godoc
//
//	@Summary		Refresh token
//	@Description	Rotates the presented bearer token into a fresh one with the same scope set.
//	@Description	The old token keeps working for a short grace period so in-flight requests finish.
//	@Description	Set device_verification to have the fingerprint checked against the login one.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authclient.RefreshRequest	false	"Refresh options"
//	@Success		200		{object}	authclient.TokenResponse	"token, token_id, scopes, expires_at"
//	@Failure		400		{object}	authclient.ErrorResponse	"refresh_not_allowed"
//	@Failure		401		{object}	authclient.ErrorResponse	"invalid_token, device_verification_failed"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		authclient.ErrInvalidToken.WriteError(w)
		return
	}
	secret := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

	// The body is optional; absent means a plain rotation.
	var req authclient.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		authclient.ErrInvalidRequest.WriteError(w)
		return
	}

	result, err := h.RefreshService.Refresh(r.Context(), service.RefreshRequest{
		Secret:       secret,
		ClientIP:     httpx.IPKeyExtractor(r),
		Fingerprint:  requestFingerprint(r),
		VerifyDevice: req.DeviceVerification,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authclient.TokenResponse{
		Token:      result.Secret,
		TokenID:    result.TokenID,
		TokenType:  "Bearer",
		Scopes:     result.Scopes,
		DeviceType: result.DeviceType,
		ExpiresAt:  result.ExpiresAt,
	})
}
