package service

import (
	"context"
	"testing"

	"github.com/lumamart/auth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) identityFor(t *testing.T, secret string) domain.Identity {
	t.Helper()
	id, err := env.validation.Authorize(context.Background(), secret, "", "")
	require.NoError(t, err)
	return id
}

func TestRevokeOneOtherSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.createPrincipal(t, "sarah@example.com", "correct-password",
		domain.RoleCustomer, domain.StatusActive)
	phone := env.login(t, customerLogin("sarah@example.com"))
	laptop := env.login(t, customerLogin("sarah@example.com"))

	caller := env.identityFor(t, laptop.Secret)
	require.NoError(t, env.revocation.RevokeOne(ctx, caller, phone.TokenID, false))

	// The revoked session is dead, the caller's survives.
	_, err := env.validation.Authorize(ctx, phone.Secret, "", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = env.validation.Authorize(ctx, laptop.Secret, "", "")
	require.NoError(t, err)
}

func TestRevokeOneCurrentRequiresConfirmation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.createPrincipal(t, "sarah@example.com", "correct-password",
		domain.RoleCustomer, domain.StatusActive)
	result := env.login(t, customerLogin("sarah@example.com"))
	caller := env.identityFor(t, result.Secret)

	err := env.revocation.RevokeOne(ctx, caller, caller.TokenID, false)
	require.ErrorIs(t, err, ErrCurrentTokenConfirmation)

	require.NoError(t, env.revocation.RevokeOne(ctx, caller, caller.TokenID, true))
	_, err = env.validation.Authorize(ctx, result.Secret, "", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRevokeOneNotOwner(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.createPrincipal(t, "sarah@example.com", "correct-password",
		domain.RoleCustomer, domain.StatusActive)
	env.createPrincipal(t, "mallory@example.com", "correct-password",
		domain.RoleCustomer, domain.StatusActive)

	victim := env.login(t, customerLogin("sarah@example.com"))
	attacker := env.login(t, customerLogin("mallory@example.com"))

	caller := env.identityFor(t, attacker.Secret)
	err := env.revocation.RevokeOne(ctx, caller, victim.TokenID, false)
	require.ErrorIs(t, err, ErrNotTokenOwner)

	_, err = env.validation.Authorize(ctx, victim.Secret, "", "")
	require.NoError(t, err)
}

func TestRevokeOneUnknownToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.createPrincipal(t, "sarah@example.com", "correct-password",
		domain.RoleCustomer, domain.StatusActive)
	result := env.login(t, customerLogin("sarah@example.com"))
	caller := env.identityFor(t, result.Secret)

	err := env.revocation.RevokeOne(ctx, caller, "01JXNOPE0000000000000000NO", false)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestLogoutSingleDevice(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.createPrincipal(t, "sarah@example.com", "correct-password",
		domain.RoleCustomer, domain.StatusActive)
	phone := env.login(t, customerLogin("sarah@example.com"))
	laptop := env.login(t, customerLogin("sarah@example.com"))

	caller := env.identityFor(t, phone.Secret)
	revoked, err := env.revocation.Logout(ctx, caller, false)
	require.NoError(t, err)
	require.Equal(t, 1, revoked)

	_, err = env.validation.Authorize(ctx, phone.Secret, "", "")
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = env.validation.Authorize(ctx, laptop.Secret, "", "")
	require.NoError(t, err)
}

func TestLogoutAllDevices(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.createPrincipal(t, "sarah@example.com", "correct-password",
		domain.RoleCustomer, domain.StatusActive)

	var secrets []string
	for i := 0; i < 3; i++ {
		secrets = append(secrets, env.login(t, customerLogin("sarah@example.com")).Secret)
	}

	caller := env.identityFor(t, secrets[0])
	revoked, err := env.revocation.Logout(ctx, caller, true)
	require.NoError(t, err)
	require.Equal(t, 3, revoked)

	for _, secret := range secrets {
		_, err := env.validation.Authorize(ctx, secret, "", "")
		require.ErrorIs(t, err, ErrUnauthenticated)
	}
}

func TestListSessions(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	env.createPrincipal(t, "sarah@example.com", "correct-password",
		domain.RoleCustomer, domain.StatusActive)

	phone := customerLogin("sarah@example.com")
	phone.DeviceType = "mobile_app"
	phone.DeviceName = "Sarah's iPhone"
	phoneResult := env.login(t, phone)
	laptopResult := env.login(t, customerLogin("sarah@example.com"))

	caller := env.identityFor(t, laptopResult.Secret)
	sessions, err := env.sessions.ListSessions(ctx, caller)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	byID := map[string]Session{}
	for _, s := range sessions {
		byID[s.TokenID] = s
	}
	require.True(t, byID[laptopResult.TokenID].Current)
	require.False(t, byID[phoneResult.TokenID].Current)
	require.Equal(t, "Sarah's iPhone", byID[phoneResult.TokenID].DeviceName)
}
