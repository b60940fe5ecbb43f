package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
	"github.com/lumamart/auth/internal/auth/store"
)

// RevocationService handles single-token and all-device revocation.
// Revocation is a tombstone: revoked_at is set once and never cleared, and
// revoking an already-revoked token succeeds without moving the timestamp.
type RevocationService struct {
	Store  store.Store
	Logger *slog.Logger

	Now func() time.Time
}

func (s *RevocationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RevokeOne revokes a single token owned by the caller. When the target is
// the token authenticating this very request, confirmCurrent must be true;
// this stops a client from accidentally cutting off its own session.
func (s *RevocationService) RevokeOne(ctx context.Context, caller domain.Identity, tokenID string, confirmCurrent bool) error {
	token, err := s.Store.Tokens().GetTokenByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("load token: %w", err)
	}

	if token.PrincipalID != caller.PrincipalID {
		return ErrNotTokenOwner
	}

	if token.ID == caller.TokenID && !confirmCurrent {
		return ErrCurrentTokenConfirmation
	}

	if err := s.Store.Tokens().RevokeToken(ctx, tokenID, s.now()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	s.Logger.InfoContext(ctx, "token revoked",
		"principal_id", caller.PrincipalID,
		"token_id", tokenID,
		"self", token.ID == caller.TokenID,
	)
	return nil
}

// Logout revokes the current token, or every token the principal holds when
// allDevices is set. Returns how many tokens were revoked. The all-devices
// path runs in one transaction so the wipe is atomic.
func (s *RevocationService) Logout(ctx context.Context, caller domain.Identity, allDevices bool) (int, error) {
	now := s.now()

	if !allDevices {
		if err := s.Store.Tokens().RevokeToken(ctx, caller.TokenID, now); err != nil {
			return 0, fmt.Errorf("revoke current token: %w", err)
		}
		s.Logger.InfoContext(ctx, "logged out",
			"principal_id", caller.PrincipalID, "token_id", caller.TokenID)
		return 1, nil
	}

	var revoked int
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var txErr error
		revoked, txErr = tx.Tokens().RevokeAllPrincipalTokens(ctx, caller.PrincipalID, now)
		return txErr
	})
	if err != nil {
		return 0, fmt.Errorf("revoke all tokens: %w", err)
	}

	s.Logger.InfoContext(ctx, "logged out of all devices",
		"principal_id", caller.PrincipalID, "revoked", revoked)
	return revoked, nil
}
