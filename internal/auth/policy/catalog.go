// Package policy holds the deploy-time authorization tables: the scope
// catalog, the role and device scope maps, and the per-device-type token
// policies. Everything here is immutable after construction and validated
// up front so a malformed table kills the process at boot instead of
// silently widening access at request time.
package policy

import (
	"fmt"
	"slices"
	"sort"

	"github.com/lumamart/auth/internal/auth/domain"
)

// ScopeCatalog resolves the effective scope set for a (role, device type,
// requested) triple. Resolution is pure and total: no failure modes, the
// constructor already guaranteed the tables are well formed.
type ScopeCatalog struct {
	descriptions map[string]string
	roleScopes   map[domain.Role][]string
	deviceScopes map[string][]string
}

// NewScopeCatalog validates and freezes the scope tables. Every scope
// referenced by a role or device mapping must be declared (or be the
// wildcard), every known role must have a mapping, and no map may be empty.
func NewScopeCatalog(
	descriptions map[string]string,
	roleScopes map[domain.Role][]string,
	deviceScopes map[string][]string,
) (*ScopeCatalog, error) {
	if len(descriptions) == 0 {
		return nil, fmt.Errorf("policy: scope catalog is empty")
	}
	if len(roleScopes) == 0 {
		return nil, fmt.Errorf("policy: role scope map is empty")
	}
	if len(deviceScopes) == 0 {
		return nil, fmt.Errorf("policy: device scope map is empty")
	}

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleStaff, domain.RoleCustomer} {
		if _, ok := roleScopes[role]; !ok {
			return nil, fmt.Errorf("policy: role %q has no scope mapping", role)
		}
	}

	for role, scopes := range roleScopes {
		if err := validateScopeList(descriptions, scopes); err != nil {
			return nil, fmt.Errorf("policy: role %q: %w", role, err)
		}
	}
	for deviceType, scopes := range deviceScopes {
		if err := validateScopeList(descriptions, scopes); err != nil {
			return nil, fmt.Errorf("policy: device type %q: %w", deviceType, err)
		}
	}

	return &ScopeCatalog{
		descriptions: descriptions,
		roleScopes:   roleScopes,
		deviceScopes: deviceScopes,
	}, nil
}

func validateScopeList(declared map[string]string, scopes []string) error {
	if len(scopes) == 0 {
		return fmt.Errorf("scope list is empty")
	}
	for _, s := range scopes {
		if s == domain.ScopeWildcard {
			continue
		}
		if _, ok := declared[s]; !ok {
			return fmt.Errorf("references undeclared scope %q", s)
		}
	}
	return nil
}

// Known reports whether a scope identifier is declared in the catalog.
func (c *ScopeCatalog) Known(scope string) bool {
	_, ok := c.descriptions[scope]
	return ok
}

// Describe returns the human description for a scope, or "" if undeclared.
func (c *ScopeCatalog) Describe(scope string) string {
	return c.descriptions[scope]
}

// DeviceTypes returns every device type the scope map knows, sorted.
func (c *ScopeCatalog) DeviceTypes() []string {
	types := make([]string, 0, len(c.deviceScopes))
	for t := range c.deviceScopes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Resolve computes the scope set a token may carry:
//
//	available = roleScopes[role] ∩ deviceScopes[deviceType]
//
// where the wildcard on either side means "no restriction from that side".
// An empty or wildcard requested set grants everything available; any other
// request yields available ∩ requested, so a request naming only undeclared
// scopes grants nothing rather than everything. The output is sorted and
// deduplicated; a token granted no restriction at all carries the single
// wildcard scope.
func (c *ScopeCatalog) Resolve(role domain.Role, deviceType string, requested []string) []string {
	roleSet, roleAll := c.expand(c.roleScopes[role])
	deviceSet, deviceAll := c.expand(c.deviceScopes[deviceType])

	var available []string
	switch {
	case roleAll && deviceAll:
		available = []string{domain.ScopeWildcard}
	case roleAll:
		available = deviceSet
	case deviceAll:
		available = roleSet
	default:
		available = intersect(roleSet, deviceSet)
	}

	if len(requested) == 0 || slices.Contains(requested, domain.ScopeWildcard) {
		return available
	}

	// The caller asked for something specific: intersect, never widen. The
	// request may well filter down to the empty set.
	requested = c.normalizeRequested(requested)
	if slices.Contains(available, domain.ScopeWildcard) {
		// No role/device restriction: the request alone bounds the grant.
		return requested
	}
	return intersect(available, requested)
}

// expand returns the concrete scope list for a mapping, flagging wildcard
// entries. A missing mapping yields an empty set: nothing is granted for a
// role or device the tables don't know.
func (c *ScopeCatalog) expand(scopes []string) ([]string, bool) {
	if slices.Contains(scopes, domain.ScopeWildcard) {
		return nil, true
	}
	return normalize(scopes), false
}

// normalizeRequested drops undeclared scopes from a request and sorts and
// deduplicates the rest.
func (c *ScopeCatalog) normalizeRequested(requested []string) []string {
	out := make([]string, 0, len(requested))
	for _, s := range requested {
		if c.Known(s) {
			out = append(out, s)
		}
	}
	return normalize(out)
}

func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, s := range b {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, s := range a {
		if _, ok := set[s]; ok {
			out = append(out, s)
		}
	}
	return normalize(out)
}
