package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lumamart/auth/internal/auth/domain"
	"github.com/lumamart/auth/internal/auth/store"
	"github.com/lumamart/auth/pkg/cryptox"
	"github.com/lumamart/auth/pkg/idx"
)

// BootstrapService seeds the first admin principal on an empty database so a
// fresh deployment has someone who can log in. It never touches a database
// that already has principals.
type BootstrapService struct {
	Store  store.Store
	Logger *slog.Logger

	Now func() time.Time
}

func (s *BootstrapService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SeedAdmin creates an active admin principal with the given credentials if
// and only if no principals exist yet. Returns the new principal's id, or ""
// when seeding was skipped.
func (s *BootstrapService) SeedAdmin(ctx context.Context, email, password string) (string, error) {
	empty, err := s.Store.Principals().IsEmpty(ctx)
	if err != nil {
		return "", fmt.Errorf("check principals: %w", err)
	}
	if !empty {
		return "", nil
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash admin password: %w", err)
	}

	now := s.now()
	admin := domain.Principal{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Principals().CreatePrincipal(ctx, admin); err != nil {
		return "", fmt.Errorf("create admin principal: %w", err)
	}

	s.Logger.InfoContext(ctx, "seeded initial admin principal",
		"principal_id", admin.ID, "email", email)
	return admin.ID, nil
}
