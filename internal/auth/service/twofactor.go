package service

import (
	"time"

	"github.com/pquerna/otp/totp"
)

// TwoFactorVerifier checks a one-time code against a principal's enrolled
// secret. Abstracted so tests can stub verification without real clocks.
type TwoFactorVerifier interface {
	Verify(code, secret string, at time.Time) bool
}

// TOTPVerifier validates RFC 6238 time-based codes with the default 30s
// period and six digits.
type TOTPVerifier struct{}

func (TOTPVerifier) Verify(code, secret string, _ time.Time) bool {
	return totp.Validate(code, secret)
}

// TwoFactorVerifierFunc adapts a function to the TwoFactorVerifier interface.
type TwoFactorVerifierFunc func(code, secret string, at time.Time) bool

func (f TwoFactorVerifierFunc) Verify(code, secret string, at time.Time) bool {
	return f(code, secret, at)
}
