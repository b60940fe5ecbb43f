package integration_test

import (
	"net/http"
	"testing"

	"github.com/lumamart/auth/pkg/authclient"
	"github.com/stretchr/testify/require"
)

// TestLoginMeLogoutFlow walks the basic session lifecycle end to end: mint a
// token, use it, list it, revoke it, and verify it is dead immediately.
func TestLoginMeLogoutFlow(t *testing.T) {
	t.Parallel()
	ts := setupAuthServer(t)
	p := ts.seedCustomer(t)

	token, authed, err := newClient(ts).Login(t.Context(), sarahLogin())
	require.NoError(t, err)

	me, err := authed.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, p.ID, me.PrincipalID)
	require.Equal(t, "customer", me.Role)
	require.Equal(t, token.TokenID, me.TokenID)
	require.Equal(t, "web", me.DeviceType)
	require.ElementsMatch(t, token.Scopes, me.Scopes)

	list, err := authed.ListTokens(t.Context())
	require.NoError(t, err)
	require.Len(t, list.Tokens, 1)
	require.Equal(t, token.TokenID, list.Tokens[0].TokenID)
	require.True(t, list.Tokens[0].Current)
	require.Equal(t, "Firefox on Linux", list.Tokens[0].DeviceName)

	out, err := authed.Logout(t.Context(), false)
	require.NoError(t, err)
	require.Equal(t, 1, out.Revoked)

	// Revocation is immediate, no cache or propagation delay.
	_, err = authed.Me(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, authclient.ErrorCodeInvalidToken)
}

func TestLogoutAllDevices(t *testing.T) {
	t.Parallel()
	ts := setupAuthServer(t)
	ts.seedCustomer(t)

	client := newClient(ts)
	var sessions []*authclient.Client
	for range 3 {
		_, authed, err := client.Login(t.Context(), sarahLogin())
		require.NoError(t, err)
		sessions = append(sessions, authed)
	}

	out, err := sessions[0].Logout(t.Context(), true)
	require.NoError(t, err)
	require.Equal(t, 3, out.Revoked)

	for _, s := range sessions {
		_, err := s.Me(t.Context())
		requireAPIError(t, err, http.StatusUnauthorized, authclient.ErrorCodeInvalidToken)
	}
}

func TestRequestsWithoutBearer(t *testing.T) {
	t.Parallel()
	ts := setupAuthServer(t)

	client := newClient(ts)

	_, err := client.Me(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, authclient.ErrorCodeInvalidToken)

	_, err = client.ListTokens(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, authclient.ErrorCodeInvalidToken)
}

func TestMeRequiresUserReadScope(t *testing.T) {
	t.Parallel()
	ts := setupAuthServer(t)
	ts.seedCustomer(t)

	req := sarahLogin()
	req.Scopes = []string{"products:read"}

	_, authed, err := newClient(ts).Login(t.Context(), req)
	require.NoError(t, err)

	// The token authenticates but lacks the profile capability.
	_, err = authed.Me(t.Context())
	requireAPIError(t, err, http.StatusForbidden, authclient.ErrorCodeInsufficientScope)

	// Token management works regardless of granted scopes.
	_, err = authed.ListTokens(t.Context())
	require.NoError(t, err)
}

func TestGarbageBearerRejected(t *testing.T) {
	t.Parallel()
	ts := setupAuthServer(t)
	ts.seedCustomer(t)

	client := newClient(ts).WithToken("not-a-real-token")
	_, err := client.Me(t.Context())
	requireAPIError(t, err, http.StatusUnauthorized, authclient.ErrorCodeInvalidToken)
}
