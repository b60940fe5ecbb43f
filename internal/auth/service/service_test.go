package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
	"github.com/lumamart/auth/internal/auth/limiter"
	"github.com/lumamart/auth/internal/auth/policy"
	"github.com/lumamart/auth/internal/auth/store/drivers/sqlite"
	"github.com/lumamart/auth/pkg/cryptox"
	"github.com/lumamart/auth/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test-")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// testEnv bundles a real sqlite store with the default policy tables, an
// in-process limiter, and a controllable clock.
type testEnv struct {
	store   *sqlite.Store
	catalog *policy.ScopeCatalog
	devices *policy.DeviceRegistry
	limiter *limiter.Memory
	clock   *testClock
	logger  *slog.Logger

	auth       *AuthenticationService
	validation *ValidationService
	refresh    *RefreshService
	revocation *RevocationService
	sessions   *SessionService
}

// staticVerifier accepts exactly one code, standing in for TOTP so tests
// don't have to compute time-based codes.
type staticVerifier struct {
	code string
}

func (v staticVerifier) Verify(code, _ string, _ time.Time) bool {
	return code == v.code
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	catalog, devices, err := policy.NewDefaults()
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	mem := limiter.NewMemory(limiter.DefaultConfig())
	mem.Now = clock.Now

	logger := slog.New(slog.DiscardHandler)

	env := &testEnv{
		store:   st,
		catalog: catalog,
		devices: devices,
		limiter: mem,
		clock:   clock,
		logger:  logger,
	}
	env.auth = &AuthenticationService{
		Store:     st,
		Catalog:   catalog,
		Devices:   devices,
		Limiter:   mem,
		TwoFactor: staticVerifier{code: "123456"},
		Logger:    logger,
		Now:       clock.Now,
	}
	env.validation = &ValidationService{Store: st, Logger: logger, Now: clock.Now}
	env.refresh = &RefreshService{Store: st, Devices: devices, Logger: logger, Now: clock.Now}
	env.revocation = &RevocationService{Store: st, Logger: logger, Now: clock.Now}
	env.sessions = &SessionService{Store: st, Now: clock.Now}
	return env
}

func (env *testEnv) createPrincipal(t *testing.T, email, password string, role domain.Role, status domain.PrincipalStatus) domain.Principal {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	p := domain.Principal{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
		CreatedAt:    env.clock.now,
		UpdatedAt:    env.clock.now,
	}
	require.NoError(t, env.store.Principals().CreatePrincipal(context.Background(), p))
	return p
}

func (env *testEnv) suspendPrincipal(ctx context.Context, principalID string) error {
	return env.store.Principals().UpdateStatus(ctx, principalID, domain.StatusSuspended, env.clock.now)
}

func (env *testEnv) enableTwoFactor(t *testing.T, principalID string) {
	t.Helper()
	err := env.store.Principals().SetTwoFactor(
		context.Background(), principalID, "JBSWY3DPEHPK3PXP", env.clock.now)
	require.NoError(t, err)
}

func (env *testEnv) login(t *testing.T, req AuthenticateRequest) domain.AuthResult {
	t.Helper()
	result, err := env.auth.Authenticate(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Secret)
	return result
}

func customerLogin(email string) AuthenticateRequest {
	return AuthenticateRequest{
		Email:      email,
		Password:   "correct-password",
		DeviceType: policy.DeviceWeb,
		DeviceName: "Firefox on Linux",
		ClientIP:   "203.0.113.7",
	}
}
