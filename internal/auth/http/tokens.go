package http

import (
	"net/http"

	"github.com/lumamart/auth/internal/auth/service"
	"github.com/lumamart/auth/pkg/authclient"
	"github.com/lumamart/auth/pkg/httpx"
)

// TokensHandler serves the session management surface: GET /v1/auth/tokens
// and DELETE /v1/auth/tokens/{id}.
type TokensHandler struct {
	SessionService    *service.SessionService
	RevocationService *service.RevocationService
}

// HandleList godoc
//
//	@Summary		List sessions
//	@Description	Lists the caller's live tokens across all devices, newest first.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authclient.TokenListResponse	"tokens"
//	@Failure		401	{object}	authclient.ErrorResponse		"invalid_token"
//	@Router			/v1/auth/tokens [get].
func (h *TokensHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		authclient.ErrInvalidToken.WriteError(w)
		return
	}

	sessions, err := h.SessionService.ListSessions(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	tokens := make([]authclient.TokenInfo, 0, len(sessions))
	for _, s := range sessions {
		tokens = append(tokens, authclient.TokenInfo{
			TokenID:    s.TokenID,
			Name:       s.Name,
			DeviceType: s.DeviceType,
			DeviceName: s.DeviceName,
			Scopes:     s.Scopes,
			CreatedAt:  s.CreatedAt,
			ExpiresAt:  s.ExpiresAt,
			LastUsedAt: s.LastUsedAt,
			LastUsedIP: s.LastUsedIP,
			Current:    s.Current,
		})
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authclient.TokenListResponse{Tokens: tokens})
}

// HandleRevoke godoc
//
//	@Summary		Revoke a token
//	@Description	Revokes one of the caller's tokens by id. Targeting the token that authenticates
//	@Description	this very request requires confirm_current=true.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Param			id				path	string	true	"Token id"
//	@Param			confirm_current	query	bool	false	"Confirm revoking the current token"
//	@Success		204
//	@Failure		401	{object}	authclient.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	authclient.ErrorResponse	"not_token_owner"
//	@Failure		404	{object}	authclient.ErrorResponse	"token_not_found"
//	@Failure		409	{object}	authclient.ErrorResponse	"confirmation_required"
//	@Router			/v1/auth/tokens/{id} [delete].
func (h *TokensHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		authclient.ErrInvalidToken.WriteError(w)
		return
	}

	tokenID := r.PathValue("id")
	if tokenID == "" {
		authclient.ErrInvalidRequest.WriteError(w)
		return
	}
	confirmCurrent := r.URL.Query().Get("confirm_current") == "true"

	if err := h.RevocationService.RevokeOne(r.Context(), caller, tokenID, confirmCurrent); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
