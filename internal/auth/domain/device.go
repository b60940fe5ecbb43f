package domain

import "time"

// DevicePolicy is the per-device-type token policy. Policies are immutable
// and loaded once at process start; an unknown device type is a hard
// rejection, never a permissive default.
type DevicePolicy struct {
	Type                  string
	TokenLifetime         time.Duration // 0 means tokens never expire
	RefreshAllowed        bool
	MaxConcurrentSessions int // must be >= 1
	RequiresTwoFactor     bool
}

// NeverExpires reports whether tokens for this device type carry no expiry.
func (p DevicePolicy) NeverExpires() bool { return p.TokenLifetime <= 0 }
