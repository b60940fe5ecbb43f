package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
	"github.com/lumamart/auth/internal/auth/store"
)

// SessionService lists a principal's live tokens for the "manage my devices"
// surface. Token hashes never leave the store layer's query results; the
// session view strips them.
type SessionService struct {
	Store store.Store

	Now func() time.Time
}

// Session is the client-facing view of a live token. Current marks the
// token authenticating the request that asked for the listing.
type Session struct {
	TokenID    string
	Name       string
	DeviceType string
	DeviceName string
	Scopes     []string
	CreatedAt  time.Time
	ExpiresAt  *time.Time
	LastUsedAt *time.Time
	LastUsedIP string
	Current    bool
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ListSessions returns the caller's live tokens, newest first.
func (s *SessionService) ListSessions(ctx context.Context, caller domain.Identity) ([]Session, error) {
	tokens, err := s.Store.Tokens().ListLiveTokensByPrincipal(ctx, caller.PrincipalID, s.now())
	if err != nil {
		return nil, fmt.Errorf("list live tokens: %w", err)
	}

	sessions := make([]Session, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, Session{
			TokenID:    t.ID,
			Name:       t.Name,
			DeviceType: t.DeviceType,
			DeviceName: t.DeviceName,
			Scopes:     t.Scopes,
			CreatedAt:  t.CreatedAt,
			ExpiresAt:  t.ExpiresAt,
			LastUsedAt: t.LastUsedAt,
			LastUsedIP: t.LastUsedIP,
			Current:    t.ID == caller.TokenID,
		})
	}
	return sessions, nil
}
