package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
	"github.com/lumamart/auth/internal/auth/policy"
	"github.com/lumamart/auth/internal/auth/store"
	"github.com/lumamart/auth/pkg/cryptox"
)

// RefreshGracePeriod is how long a superseded token keeps working after its
// successor is issued, so in-flight requests on the old token don't fail
// mid-rotation. The housekeeping sweep revokes superseded tokens past it.
const RefreshGracePeriod = 5 * time.Minute

// RefreshService rotates a live token into a fresh one with the same scope
// set and a new lifetime.
type RefreshService struct {
	Store   store.Store
	Devices *policy.DeviceRegistry
	Logger  *slog.Logger

	Now func() time.Time
}

// RefreshRequest carries the presented token and the caller's current
// request attributes. Fingerprint comparison only happens when the caller
// opts in with VerifyDevice; the fingerprint folds in the client IP, so an
// unconditional check would reject every refresh from a new network.
type RefreshRequest struct {
	Secret       string
	ClientIP     string
	Fingerprint  string
	VerifyDevice bool
}

func (s *RefreshService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Refresh issues a successor token. The old token is linked to the new one
// but keeps its original expiry; it stays usable through the grace period
// and is revoked by housekeeping afterwards. Scopes carry over unchanged;
// broadening requires a fresh login.
func (s *RefreshService) Refresh(ctx context.Context, req RefreshRequest) (domain.AuthResult, error) {
	if req.Secret == "" {
		return domain.AuthResult{}, ErrUnauthenticated
	}

	now := s.now()
	token, err := s.Store.Tokens().GetTokenByHash(ctx, cryptox.FingerprintToken(req.Secret))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AuthResult{}, ErrUnauthenticated
		}
		return domain.AuthResult{}, fmt.Errorf("lookup token: %w", err)
	}

	if !token.Live(now) {
		return domain.AuthResult{}, ErrUnauthenticated
	}

	// A superseded token still authenticates requests during the grace
	// period but cannot spawn another successor.
	if token.RefreshedInto != nil {
		return domain.AuthResult{}, ErrUnauthenticated
	}

	devicePolicy, ok := s.Devices.Lookup(token.DeviceType)
	if !ok {
		return domain.AuthResult{}, ErrUnknownDeviceType
	}
	if !devicePolicy.RefreshAllowed {
		return domain.AuthResult{}, ErrRefreshNotAllowed
	}

	if req.VerifyDevice && token.Fingerprint != "" {
		if subtle.ConstantTimeCompare([]byte(token.Fingerprint), []byte(req.Fingerprint)) != 1 {
			s.Logger.WarnContext(ctx, "refresh fingerprint mismatch",
				"token_id", token.ID, "principal_id", token.PrincipalID)
			return domain.AuthResult{}, ErrDeviceVerificationFailed
		}
	}

	principal, err := s.Store.Principals().GetPrincipalByID(ctx, token.PrincipalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AuthResult{}, ErrUnauthenticated
		}
		return domain.AuthResult{}, fmt.Errorf("load principal: %w", err)
	}
	if !principal.Active() {
		return domain.AuthResult{}, ErrUnauthenticated
	}

	var (
		newToken domain.Token
		secret   string
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var txErr error
		newToken, secret, txErr = mintToken(ctx, tx.Tokens(), mintParams{
			Principal:    principal,
			Policy:       devicePolicy,
			Scopes:       token.Scopes,
			Name:         token.Name,
			DeviceName:   token.DeviceName,
			Fingerprint:  token.Fingerprint,
			ClientIP:     req.ClientIP,
			Now:          now,
			RefreshCount: token.RefreshCount + 1,
		})
		if txErr != nil {
			return txErr
		}
		return tx.Tokens().MarkRefreshed(ctx, token.ID, newToken.ID, now)
	})
	if err != nil {
		// MarkRefreshed finding no live row means a concurrent revoke won.
		if errors.Is(err, store.ErrNotFound) {
			return domain.AuthResult{}, ErrUnauthenticated
		}
		return domain.AuthResult{}, fmt.Errorf("rotate token: %w", err)
	}

	s.Logger.InfoContext(ctx, "token refreshed",
		"principal_id", principal.ID,
		"old_token_id", token.ID,
		"new_token_id", newToken.ID,
		"refresh_count", newToken.RefreshCount,
	)

	return domain.AuthResult{
		Secret:     secret,
		TokenID:    newToken.ID,
		Scopes:     newToken.Scopes,
		DeviceType: newToken.DeviceType,
		ExpiresAt:  newToken.ExpiresAt,
	}, nil
}
