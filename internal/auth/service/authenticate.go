package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
	"github.com/lumamart/auth/internal/auth/limiter"
	"github.com/lumamart/auth/internal/auth/policy"
	"github.com/lumamart/auth/internal/auth/store"
	"github.com/lumamart/auth/pkg/cryptox"
	"github.com/lumamart/auth/pkg/idx"
)

// AuthenticationService owns the login flow: rate limiting, credential
// verification, two-factor, scope resolution, session caps, and token
// minting.
type AuthenticationService struct {
	Store     store.Store
	Catalog   *policy.ScopeCatalog
	Devices   *policy.DeviceRegistry
	Limiter   limiter.AttemptLimiter
	TwoFactor TwoFactorVerifier
	Logger    *slog.Logger

	// Now is injectable for tests.
	Now func() time.Time
}

// AuthenticateRequest carries the validated login inputs. Fingerprint is
// derived by the transport layer from request attributes.
type AuthenticateRequest struct {
	Email         string
	Password      string
	DeviceType    string
	DeviceName    string
	TokenName     string
	Scopes        []string
	TwoFactorCode string
	ClientIP      string
	Fingerprint   string
}

func (s *AuthenticationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Authenticate runs the full login flow. Failure ordering is fixed: rate
// limit, credentials, account status, device type, two-factor, session
// limit. A request throttled by the limiter never touches the password hash.
func (s *AuthenticationService) Authenticate(ctx context.Context, req AuthenticateRequest) (domain.AuthResult, error) {
	now := s.now()
	limiterKey := req.ClientIP

	decision, err := s.Limiter.Check(ctx, limiterKey)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("check attempt limiter: %w", err)
	}
	if !decision.Allowed {
		return domain.AuthResult{}, &RateLimitedError{RetryAfter: decision.RetryAfter}
	}

	principal, err := s.Store.Principals().GetPrincipalByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AuthResult{}, s.fail(ctx, limiterKey, ErrInvalidCredentials)
		}
		return domain.AuthResult{}, fmt.Errorf("load principal: %w", err)
	}

	if err := cryptox.VerifyPassword(req.Password, principal.PasswordHash); err != nil {
		return domain.AuthResult{}, s.fail(ctx, limiterKey, ErrInvalidCredentials)
	}

	// Past this point the caller has proven the password, so failures no
	// longer count against the limiter and may name the real reason.
	if !principal.Active() {
		return domain.AuthResult{}, &AccountInactiveError{Status: principal.Status}
	}

	devicePolicy, ok := s.Devices.Lookup(req.DeviceType)
	if !ok {
		return domain.AuthResult{}, ErrUnknownDeviceType
	}

	if devicePolicy.RequiresTwoFactor || principal.TwoFactorActive() {
		if req.TwoFactorCode == "" {
			return domain.AuthResult{}, ErrTwoFactorRequired
		}
		if !principal.TwoFactorActive() {
			// Device policy demands 2FA but the account never enrolled.
			return domain.AuthResult{}, ErrTwoFactorRequired
		}
		if !s.TwoFactor.Verify(req.TwoFactorCode, *principal.TwoFactorSecret, now) {
			return domain.AuthResult{}, ErrInvalidTwoFactorCode
		}
	}

	scopes := s.Catalog.Resolve(principal.Role, req.DeviceType, req.Scopes)

	// Soft cap: counted before insert, so concurrent logins can briefly
	// exceed the limit. Acceptable for a per-principal nuisance bound.
	liveCount, err := s.Store.Tokens().CountLiveTokens(ctx, principal.ID, req.DeviceType, now)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("count live tokens: %w", err)
	}
	if liveCount >= devicePolicy.MaxConcurrentSessions {
		return domain.AuthResult{}, &SessionLimitError{
			DeviceType: req.DeviceType,
			Limit:      devicePolicy.MaxConcurrentSessions,
		}
	}

	token, secret, err := mintToken(ctx, s.Store.Tokens(), mintParams{
		Principal:   principal,
		Policy:      devicePolicy,
		Scopes:      scopes,
		Name:        req.TokenName,
		DeviceName:  req.DeviceName,
		Fingerprint: req.Fingerprint,
		ClientIP:    req.ClientIP,
		Now:         now,
	})
	if err != nil {
		return domain.AuthResult{}, err
	}

	if err := s.Store.Principals().UpdateLoginActivity(ctx, principal.ID, req.ClientIP, now); err != nil {
		s.Logger.WarnContext(ctx, "failed to record login activity",
			"principal_id", principal.ID, "error", err)
	}
	if err := s.Limiter.Reset(ctx, limiterKey); err != nil {
		s.Logger.WarnContext(ctx, "failed to reset attempt limiter",
			"key", limiterKey, "error", err)
	}

	s.Logger.InfoContext(ctx, "authentication succeeded",
		"principal_id", principal.ID,
		"device_type", req.DeviceType,
		"token_id", token.ID,
		"scopes", scopes,
	)

	return domain.AuthResult{
		Secret:            secret,
		TokenID:           token.ID,
		Scopes:            token.Scopes,
		DeviceType:        token.DeviceType,
		ExpiresAt:         token.ExpiresAt,
		SessionsRemaining: devicePolicy.MaxConcurrentSessions - liveCount - 1,
	}, nil
}

// fail records a limiter failure before returning the credential error.
func (s *AuthenticationService) fail(ctx context.Context, key string, cause error) error {
	if err := s.Limiter.RecordFailure(ctx, key); err != nil {
		s.Logger.WarnContext(ctx, "failed to record limiter failure",
			"key", key, "error", err)
	}
	return cause
}

type mintParams struct {
	Principal   domain.Principal
	Policy      domain.DevicePolicy
	Scopes      []string
	Name        string
	DeviceName  string
	Fingerprint string
	ClientIP    string
	Now         time.Time

	// RefreshCount carries over the predecessor's count on refresh.
	RefreshCount int
}

// mintToken generates a fresh opaque secret, stores its hash, and returns
// the record plus the plaintext secret. The secret is never persisted.
func mintToken(ctx context.Context, tokens store.Tokens, p mintParams) (domain.Token, string, error) {
	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Token{}, "", fmt.Errorf("generate token secret: %w", err)
	}

	name := p.Name
	if name == "" {
		name = p.DeviceName
	}
	if name == "" {
		name = p.Policy.Type
	}

	var expiresAt *time.Time
	if !p.Policy.NeverExpires() {
		exp := p.Now.Add(p.Policy.TokenLifetime)
		expiresAt = &exp
	}

	token := domain.Token{
		ID:            idx.NewAt(p.Now).String(),
		PrincipalID:   p.Principal.ID,
		Name:          name,
		Scopes:        p.Scopes,
		DeviceType:    p.Policy.Type,
		DeviceName:    p.DeviceName,
		Fingerprint:   p.Fingerprint,
		TokenHash:     cryptox.FingerprintToken(secret),
		CreatedFromIP: p.ClientIP,
		CreatedAt:     p.Now,
		ExpiresAt:     expiresAt,
		RefreshCount:  p.RefreshCount,
	}

	if err := tokens.CreateToken(ctx, token); err != nil {
		return domain.Token{}, "", fmt.Errorf("store token: %w", err)
	}
	return token, secret, nil
}
