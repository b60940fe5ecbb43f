package integration_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
	httpapi "github.com/lumamart/auth/internal/auth/http"
	"github.com/lumamart/auth/internal/auth/limiter"
	"github.com/lumamart/auth/internal/auth/policy"
	"github.com/lumamart/auth/internal/auth/service"
	"github.com/lumamart/auth/internal/auth/store/drivers/sqlite"
	"github.com/lumamart/auth/pkg/authclient"
	"github.com/lumamart/auth/pkg/cryptox"
	"github.com/lumamart/auth/pkg/idx"
	"github.com/stretchr/testify/require"
)

/*
 * Common helpers for the in-process end-to-end tests. Each test wires a full
 * service stack (sqlite store, default policy tables, memory limiter, HTTP
 * router) behind an httptest server and drives it through the typed client.
 */

const (
	testVersion = "test"

	sarahEmail    = "sarah@example.com"
	sarahPassword = "correct-horse-battery"

	totpSecret = "JBSWY3DPEHPK3PXP"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "integration-test-")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// testServer is one fully-wired auth service instance. Store access is
// exposed for seeding and direct state assertions.
type testServer struct {
	URL   string
	store *sqlite.Store
	clock func() time.Time
}

func setupAuthServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	catalog, devices, err := policy.NewDefaults()
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	attempts := limiter.NewMemory(limiter.DefaultConfig())

	router := httpapi.NewRouter(testVersion, st, logger)
	router.AuthService = &service.AuthenticationService{
		Store:     st,
		Catalog:   catalog,
		Devices:   devices,
		Limiter:   attempts,
		TwoFactor: service.TOTPVerifier{},
		Logger:    logger,
	}
	router.ValidationService = &service.ValidationService{Store: st, Logger: logger}
	router.RefreshService = &service.RefreshService{Store: st, Devices: devices, Logger: logger}
	router.RevocationService = &service.RevocationService{Store: st, Logger: logger}
	router.SessionService = &service.SessionService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{URL: srv.URL, store: st, clock: time.Now}
}

func (ts *testServer) createPrincipal(t *testing.T, email, password string, role domain.Role, status domain.PrincipalStatus) domain.Principal {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := ts.clock()
	p := domain.Principal{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, ts.store.Principals().CreatePrincipal(context.Background(), p))
	return p
}

func (ts *testServer) seedCustomer(t *testing.T) domain.Principal {
	t.Helper()
	return ts.createPrincipal(t, sarahEmail, sarahPassword, domain.RoleCustomer, domain.StatusActive)
}

func (ts *testServer) enableTwoFactor(t *testing.T, principalID string) {
	t.Helper()
	err := ts.store.Principals().SetTwoFactor(
		context.Background(), principalID, totpSecret, ts.clock())
	require.NoError(t, err)
}

// forwardedFor stamps every request with an X-Forwarded-For header so tests
// can present distinct client IPs to the per-IP throttles.
type forwardedFor struct {
	ip   string
	next http.RoundTripper
}

func (f forwardedFor) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("X-Forwarded-For", f.ip)

	next := f.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(clone)
}

func newClient(ts *testServer) *authclient.Client {
	return authclient.New(ts.URL)
}

func clientFromIP(ts *testServer, ip string) *authclient.Client {
	c := authclient.New(ts.URL)
	c.HTTPClient = &http.Client{
		Transport: forwardedFor{ip: ip},
		Timeout:   10 * time.Second,
	}
	return c
}

func sarahLogin() authclient.LoginRequest {
	return authclient.LoginRequest{
		Email:      sarahEmail,
		Password:   sarahPassword,
		DeviceType: policy.DeviceWeb,
		DeviceName: "Firefox on Linux",
	}
}

// requireAPIError asserts err is an *authclient.APIError with the given
// status and code.
func requireAPIError(t *testing.T, err error, status int, code string) *authclient.APIError {
	t.Helper()

	var apiErr *authclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
	return apiErr
}
