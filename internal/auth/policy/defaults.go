package policy

import (
	"fmt"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
)

// Device types known to the storefront.
const (
	DeviceWeb       = "web"
	DeviceMobileApp = "mobile_app"
	DeviceAPIClient = "api_client"
	DevicePOSSystem = "pos_system"
)

// DefaultScopes is the deploy-time scope catalog.
func DefaultScopes() map[string]string {
	return map[string]string{
		"user:read":       "Read own profile and account details",
		"user:write":      "Update own profile and account details",
		"products:read":   "Browse products and categories",
		"products:write":  "Create and update products",
		"orders:read":     "View orders",
		"orders:write":    "Place and update orders",
		"cart:read":       "View shopping cart contents",
		"cart:write":      "Modify shopping cart contents",
		"inventory:read":  "View stock levels",
		"inventory:write": "Adjust stock levels",
		"reports:read":    "View sales and analytics reports",
		"admin:read":      "Read administrative resources",
		"admin:write":     "Manage administrative resources",
	}
}

// DefaultRoleScopes maps each role to the scopes it may hold.
func DefaultRoleScopes() map[domain.Role][]string {
	return map[domain.Role][]string{
		domain.RoleAdmin: {domain.ScopeWildcard},
		domain.RoleStaff: {
			"products:read", "products:write",
			"orders:read", "orders:write",
			"inventory:read", "inventory:write",
			"reports:read",
			"user:read",
		},
		domain.RoleCustomer: {
			"user:read", "user:write",
			"products:read",
			"orders:read", "orders:write",
		},
	}
}

// DefaultDeviceScopes maps each device type to the scopes it may carry.
// A browser session is unrestricted (the role alone bounds it); narrower
// clients are capped regardless of how powerful the role is.
func DefaultDeviceScopes() map[string][]string {
	return map[string][]string{
		DeviceWeb: {domain.ScopeWildcard},
		DeviceMobileApp: {
			"user:read", "user:write",
			"products:read",
			"orders:read", "orders:write",
			"cart:read", "cart:write",
		},
		DeviceAPIClient: {
			"products:read", "orders:read", "inventory:read",
		},
		DevicePOSSystem: {
			"products:read", "orders:read", "orders:write", "inventory:read",
		},
	}
}

// DefaultDevicePolicies is the deploy-time token policy per device type.
func DefaultDevicePolicies() []domain.DevicePolicy {
	return []domain.DevicePolicy{
		{
			Type:                  DeviceWeb,
			TokenLifetime:         7 * 24 * time.Hour,
			RefreshAllowed:        true,
			MaxConcurrentSessions: 5,
		},
		{
			Type:                  DeviceMobileApp,
			TokenLifetime:         30 * 24 * time.Hour,
			RefreshAllowed:        true,
			MaxConcurrentSessions: 3,
		},
		{
			Type:                  DeviceAPIClient,
			TokenLifetime:         0, // never expires; revoke explicitly
			RefreshAllowed:        false,
			MaxConcurrentSessions: 10,
		},
		{
			Type:                  DevicePOSSystem,
			TokenLifetime:         12 * time.Hour,
			RefreshAllowed:        false,
			MaxConcurrentSessions: 2,
			RequiresTwoFactor:     true,
		},
	}
}

// NewDefaults builds the default catalog and registry and cross-checks them:
// every device type with a scope mapping must have a policy and vice versa.
func NewDefaults() (*ScopeCatalog, *DeviceRegistry, error) {
	catalog, err := NewScopeCatalog(DefaultScopes(), DefaultRoleScopes(), DefaultDeviceScopes())
	if err != nil {
		return nil, nil, err
	}

	registry, err := NewDeviceRegistry(DefaultDevicePolicies())
	if err != nil {
		return nil, nil, err
	}

	for _, t := range catalog.DeviceTypes() {
		if _, ok := registry.Lookup(t); !ok {
			return nil, nil, fmt.Errorf("policy: device type %q has scopes but no policy", t)
		}
	}
	for _, t := range registry.Types() {
		if len(DefaultDeviceScopes()[t]) == 0 {
			return nil, nil, fmt.Errorf("policy: device type %q has a policy but no scopes", t)
		}
	}

	return catalog, registry, nil
}
