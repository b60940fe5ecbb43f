package policy

import (
	"fmt"
	"sort"

	"github.com/lumamart/auth/internal/auth/domain"
)

// DeviceRegistry maps device types to their token policies. Loaded once at
// process start; no mutation after boot.
type DeviceRegistry struct {
	policies map[string]domain.DevicePolicy
}

// NewDeviceRegistry validates and freezes the device policy table.
func NewDeviceRegistry(policies []domain.DevicePolicy) (*DeviceRegistry, error) {
	if len(policies) == 0 {
		return nil, fmt.Errorf("policy: device policy table is empty")
	}

	byType := make(map[string]domain.DevicePolicy, len(policies))
	for _, p := range policies {
		if p.Type == "" {
			return nil, fmt.Errorf("policy: device policy with empty type")
		}
		if _, dup := byType[p.Type]; dup {
			return nil, fmt.Errorf("policy: duplicate device policy for %q", p.Type)
		}
		if p.MaxConcurrentSessions < 1 {
			return nil, fmt.Errorf(
				"policy: device type %q: max concurrent sessions must be >= 1, got %d",
				p.Type, p.MaxConcurrentSessions,
			)
		}
		byType[p.Type] = p
	}

	return &DeviceRegistry{policies: byType}, nil
}

// Lookup returns the policy for a device type. The second return is false
// for unknown types; callers must treat that as a hard rejection.
func (r *DeviceRegistry) Lookup(deviceType string) (domain.DevicePolicy, bool) {
	p, ok := r.policies[deviceType]
	return p, ok
}

// Types returns every registered device type, sorted.
func (r *DeviceRegistry) Types() []string {
	types := make([]string, 0, len(r.policies))
	for t := range r.policies {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
