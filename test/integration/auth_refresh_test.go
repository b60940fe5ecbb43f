package integration_test

import (
	"net/http"
	"testing"

	"github.com/lumamart/auth/internal/auth/domain"
	"github.com/lumamart/auth/internal/auth/policy"
	"github.com/lumamart/auth/pkg/authclient"
	"github.com/stretchr/testify/require"
)

func TestRefreshRotatesBearer(t *testing.T) {
	t.Parallel()
	ts := setupAuthServer(t)
	ts.seedCustomer(t)

	original, authed, err := newClient(ts).Login(t.Context(), sarahLogin())
	require.NoError(t, err)

	refreshed, err := authed.Refresh(t.Context(), false)
	require.NoError(t, err)
	require.NotEqual(t, original.Token, refreshed.Token)
	require.NotEqual(t, original.TokenID, refreshed.TokenID)
	require.ElementsMatch(t, original.Scopes, refreshed.Scopes)

	// The successor works right away.
	successor := authed.WithToken(refreshed.Token)
	me, err := successor.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, refreshed.TokenID, me.TokenID)

	// The old token keeps serving in-flight requests during the grace
	// window, but a second refresh on it is refused.
	_, err = authed.Me(t.Context())
	require.NoError(t, err)

	_, err = authed.Refresh(t.Context(), false)
	requireAPIError(t, err, http.StatusUnauthorized, authclient.ErrorCodeInvalidToken)
}

func TestRefreshDeviceVerification(t *testing.T) {
	t.Parallel()
	ts := setupAuthServer(t)
	ts.seedCustomer(t)

	// The fingerprint folds in the client IP, so a client on another network
	// presents a different one.
	home := clientFromIP(ts, "198.51.100.40")
	cafe := clientFromIP(ts, "198.51.100.41")

	token, _, err := home.Login(t.Context(), sarahLogin())
	require.NoError(t, err)

	// Without opting in, a refresh from the new network goes through.
	rotated, err := cafe.WithToken(token.Token).Refresh(t.Context(), false)
	require.NoError(t, err)

	// Opting in, the mismatched fingerprint is rejected but the original
	// device still rotates fine.
	_, err = cafe.WithToken(rotated.Token).Refresh(t.Context(), true)
	requireAPIError(t, err, http.StatusUnauthorized, authclient.ErrorCodeDeviceVerification)

	_, err = home.WithToken(rotated.Token).Refresh(t.Context(), true)
	require.NoError(t, err)
}

func TestRefreshNotAllowedForAPIClient(t *testing.T) {
	t.Parallel()
	ts := setupAuthServer(t)
	ts.createPrincipal(t, "integration@example.com", sarahPassword, domain.RoleStaff, domain.StatusActive)

	token, authed, err := newClient(ts).Login(t.Context(), authclient.LoginRequest{
		Email:      "integration@example.com",
		Password:   sarahPassword,
		DeviceType: policy.DeviceAPIClient,
		TokenName:  "warehouse-sync",
	})
	require.NoError(t, err)

	// API client tokens never expire, so there is nothing to refresh.
	require.Nil(t, token.ExpiresAt)

	_, err = authed.Refresh(t.Context(), false)
	requireAPIError(t, err, http.StatusBadRequest, authclient.ErrorCodeRefreshNotAllowed)
}

func TestRefreshWithoutBearer(t *testing.T) {
	t.Parallel()
	ts := setupAuthServer(t)

	_, err := newClient(ts).Refresh(t.Context(), false)
	requireAPIError(t, err, http.StatusUnauthorized, authclient.ErrorCodeInvalidToken)
}

func TestRefreshRevokedToken(t *testing.T) {
	t.Parallel()
	ts := setupAuthServer(t)
	ts.seedCustomer(t)

	_, authed, err := newClient(ts).Login(t.Context(), sarahLogin())
	require.NoError(t, err)

	_, err = authed.Logout(t.Context(), false)
	require.NoError(t, err)

	_, err = authed.Refresh(t.Context(), false)
	requireAPIError(t, err, http.StatusUnauthorized, authclient.ErrorCodeInvalidToken)
}
