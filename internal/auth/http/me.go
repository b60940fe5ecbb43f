package http

import (
	"net/http"

	"github.com/lumamart/auth/pkg/authclient"
	"github.com/lumamart/auth/pkg/httpx"
)

// MeHandler godoc
//
//	@Summary		Current identity
//	@Description	Returns the caller's identity as resolved from the bearer token: principal,
//	@Description	role, device type, and effective scopes.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authclient.MeResponse		"principal_id, role, scopes"
//	@Failure		401	{object}	authclient.ErrorResponse	"invalid_token"
//	@Failure		403	{object}	authclient.ErrorResponse	"insufficient_scope"
//	@Router			/v1/me [get].
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := httpx.IdentityFromContext(r.Context())
		if !ok {
			authclient.ErrInvalidToken.WriteError(w)
			return
		}

		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusOK, authclient.MeResponse{
			PrincipalID: id.PrincipalID,
			Role:        id.Role,
			TokenID:     id.TokenID,
			DeviceType:  id.DeviceType,
			Scopes:      id.Scopes,
		})
	}
}
