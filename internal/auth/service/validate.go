package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
	"github.com/lumamart/auth/internal/auth/store"
	"github.com/lumamart/auth/pkg/cryptox"
)

// ValidationService resolves a presented bearer secret into an Identity.
// This is the hot path: every protected request goes through it.
type ValidationService struct {
	Store  store.Store
	Logger *slog.Logger

	Now func() time.Time
}

func (s *ValidationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Authorize validates the secret and, when requiredScope is non-empty,
// enforces it. Revocation is checked on every call; there is no cache, so a
// revoked token dies instantly.
func (s *ValidationService) Authorize(ctx context.Context, secret, requiredScope, clientIP string) (domain.Identity, error) {
	if secret == "" {
		return domain.Identity{}, ErrUnauthenticated
	}

	now := s.now()
	token, err := s.Store.Tokens().GetTokenByHash(ctx, cryptox.FingerprintToken(secret))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, ErrUnauthenticated
		}
		return domain.Identity{}, fmt.Errorf("lookup token: %w", err)
	}

	if !token.Live(now) {
		return domain.Identity{}, ErrUnauthenticated
	}

	principal, err := s.Store.Principals().GetPrincipalByID(ctx, token.PrincipalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, ErrUnauthenticated
		}
		return domain.Identity{}, fmt.Errorf("load principal: %w", err)
	}
	if !principal.Active() {
		return domain.Identity{}, ErrUnauthenticated
	}

	if requiredScope != "" && !token.HasScope(requiredScope) {
		return domain.Identity{}, &InsufficientScopeError{Scope: requiredScope}
	}

	// Usage tracking is best-effort; an update failure never fails the
	// request it is recording.
	if err := s.Store.Tokens().TouchTokenUsage(ctx, token.ID, clientIP, now); err != nil {
		s.Logger.WarnContext(ctx, "failed to record token usage",
			"token_id", token.ID, "error", err)
	}

	return domain.Identity{
		PrincipalID: principal.ID,
		Role:        principal.Role,
		TokenID:     token.ID,
		DeviceType:  token.DeviceType,
		Scopes:      token.Scopes,
	}, nil
}
