package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/lumamart/auth/internal/auth/service"
	"github.com/lumamart/auth/pkg/authclient"
	"github.com/lumamart/auth/pkg/httpx"
)

// LogoutHandler serves POST /v1/auth/logout.
type LogoutHandler struct {
	RevocationService *service.RevocationService
}

// ServeHTTP godoc
//
//	@Summary		Logout
//	@Description	Revokes the current token, or every token the principal holds when all_devices is set.
//	@Description	Revocation is a tombstone; revoked tokens fail validation immediately.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authclient.LogoutRequest	false	"Logout options"
//	@Success		200		{object}	authclient.LogoutResponse	"revoked count"
//	@Failure		401		{object}	authclient.ErrorResponse	"invalid_token"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		authclient.ErrInvalidToken.WriteError(w)
		return
	}

	// An empty body means "just this device".
	var req authclient.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		authclient.ErrInvalidRequest.WriteError(w)
		return
	}

	revoked, err := h.RevocationService.Logout(r.Context(), caller, req.AllDevices)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authclient.LogoutResponse{Revoked: revoked})
}
