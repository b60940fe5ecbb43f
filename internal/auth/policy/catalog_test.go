package policy

import (
	"testing"

	"github.com/lumamart/auth/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func newTestCatalog(t *testing.T) *ScopeCatalog {
	t.Helper()
	catalog, _, err := NewDefaults()
	require.NoError(t, err)
	return catalog
}

func TestNewScopeCatalogValidation(t *testing.T) {
	t.Parallel()

	scopes := map[string]string{"a:read": "read a"}
	roles := map[domain.Role][]string{
		domain.RoleAdmin:    {domain.ScopeWildcard},
		domain.RoleStaff:    {"a:read"},
		domain.RoleCustomer: {"a:read"},
	}
	devices := map[string][]string{"web": {domain.ScopeWildcard}}

	t.Run("valid tables construct", func(t *testing.T) {
		_, err := NewScopeCatalog(scopes, roles, devices)
		require.NoError(t, err)
	})

	t.Run("empty scope table rejected", func(t *testing.T) {
		_, err := NewScopeCatalog(nil, roles, devices)
		require.Error(t, err)
	})

	t.Run("role referencing undeclared scope rejected", func(t *testing.T) {
		bad := map[domain.Role][]string{
			domain.RoleAdmin:    {domain.ScopeWildcard},
			domain.RoleStaff:    {"b:write"},
			domain.RoleCustomer: {"a:read"},
		}
		_, err := NewScopeCatalog(scopes, bad, devices)
		require.Error(t, err)
	})

	t.Run("missing role mapping rejected", func(t *testing.T) {
		incomplete := map[domain.Role][]string{
			domain.RoleAdmin: {domain.ScopeWildcard},
		}
		_, err := NewScopeCatalog(scopes, incomplete, devices)
		require.Error(t, err)
	})

	t.Run("device referencing undeclared scope rejected", func(t *testing.T) {
		bad := map[string][]string{"web": {"nope:read"}}
		_, err := NewScopeCatalog(scopes, roles, bad)
		require.Error(t, err)
	})
}

func TestResolveCustomerOnWeb(t *testing.T) {
	t.Parallel()
	catalog := newTestCatalog(t)

	// Web is unrestricted, so the customer role alone bounds the grant.
	got := catalog.Resolve(domain.RoleCustomer, DeviceWeb, nil)
	require.ElementsMatch(t,
		[]string{"user:read", "user:write", "products:read", "orders:read", "orders:write"},
		got)
}

func TestResolveStaffOnAPIClient(t *testing.T) {
	t.Parallel()
	catalog := newTestCatalog(t)

	// The api_client cap cuts the staff set down to read-only views.
	got := catalog.Resolve(domain.RoleStaff, DeviceAPIClient, nil)
	require.ElementsMatch(t,
		[]string{"products:read", "orders:read", "inventory:read"},
		got)
}

func TestResolveAdminOnWebIsWildcard(t *testing.T) {
	t.Parallel()
	catalog := newTestCatalog(t)

	// Both sides unrestricted and nothing requested: the token itself
	// carries the wildcard.
	got := catalog.Resolve(domain.RoleAdmin, DeviceWeb, nil)
	require.Equal(t, []string{domain.ScopeWildcard}, got)
}

func TestResolveRequestedNarrows(t *testing.T) {
	t.Parallel()
	catalog := newTestCatalog(t)

	t.Run("requested subset is honored", func(t *testing.T) {
		got := catalog.Resolve(domain.RoleCustomer, DeviceWeb, []string{"orders:read"})
		require.Equal(t, []string{"orders:read"}, got)
	})

	t.Run("requested scope outside the role grant is dropped", func(t *testing.T) {
		got := catalog.Resolve(domain.RoleCustomer, DeviceWeb,
			[]string{"orders:read", "admin:write"})
		require.Equal(t, []string{"orders:read"}, got)
	})

	t.Run("requesting only unavailable scopes yields empty", func(t *testing.T) {
		got := catalog.Resolve(domain.RoleCustomer, DeviceAPIClient, []string{"admin:write"})
		require.Empty(t, got)
	})

	t.Run("admin on web with explicit request gets exactly it", func(t *testing.T) {
		got := catalog.Resolve(domain.RoleAdmin, DeviceWeb, []string{"reports:read"})
		require.Equal(t, []string{"reports:read"}, got)
	})

	t.Run("duplicates in the request collapse", func(t *testing.T) {
		got := catalog.Resolve(domain.RoleCustomer, DeviceWeb,
			[]string{"orders:read", "orders:read"})
		require.Equal(t, []string{"orders:read"}, got)
	})

	t.Run("requesting only undeclared scopes yields empty", func(t *testing.T) {
		// A mistyped request must never widen to the full grant.
		got := catalog.Resolve(domain.RoleCustomer, DeviceWeb, []string{"bogus:scope"})
		require.Empty(t, got)
	})

	t.Run("undeclared request under wildcard grant yields empty", func(t *testing.T) {
		got := catalog.Resolve(domain.RoleAdmin, DeviceWeb, []string{"bogus:scope"})
		require.Empty(t, got)
	})

	t.Run("wildcard request grants everything available", func(t *testing.T) {
		got := catalog.Resolve(domain.RoleCustomer, DeviceWeb,
			[]string{domain.ScopeWildcard})
		require.ElementsMatch(t,
			[]string{"user:read", "user:write", "products:read", "orders:read", "orders:write"},
			got)
	})
}

func TestResolveCustomerOnPOS(t *testing.T) {
	t.Parallel()
	catalog := newTestCatalog(t)

	// Intersection of customer role and pos_system device caps.
	got := catalog.Resolve(domain.RoleCustomer, DevicePOSSystem, nil)
	require.ElementsMatch(t,
		[]string{"products:read", "orders:read", "orders:write"},
		got)
}
