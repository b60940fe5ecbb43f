package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/lumamart/auth/internal/auth/store"
)

// HousekeepingService periodically sweeps the token table: it revokes
// superseded tokens whose refresh grace period has elapsed and hard-deletes
// rows that have been dead long enough to be useless even for audit.
type HousekeepingService struct {
	Store  store.Store
	Logger *slog.Logger

	// Interval between sweeps. Defaults to 1 minute so grace-period
	// expiry lands close to RefreshGracePeriod.
	Interval time.Duration

	// Retention is how long revoked or expired tokens are kept before
	// deletion. Defaults to 30 days.
	Retention time.Duration

	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService returns a sweep worker with defaults applied.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &HousekeepingService{
		Store:     st,
		Logger:    logger,
		Interval:  interval,
		Retention: 30 * 24 * time.Hour,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (s *HousekeepingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Start launches the background worker. Non-blocking; call Stop to shut
// down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop shuts down the worker and blocks until any in-progress sweep ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep runs one housekeeping pass. Exported so tests and operators can
// trigger it directly. The two steps are independent; a failure in one does
// not stop the other.
func (s *HousekeepingService) Sweep(ctx context.Context) {
	now := s.now()

	revoked, err := s.Store.Tokens().RevokeSupersededTokens(ctx, now.Add(-RefreshGracePeriod), now)
	if err != nil {
		s.Logger.ErrorContext(ctx, "failed to revoke superseded tokens", "error", err)
	} else if revoked > 0 {
		s.Logger.InfoContext(ctx, "revoked superseded tokens", "count", revoked)
	}

	deleted, err := s.Store.Tokens().DeleteDeadTokens(ctx, now.Add(-s.Retention))
	if err != nil {
		s.Logger.ErrorContext(ctx, "failed to delete dead tokens", "error", err)
	} else if deleted > 0 {
		s.Logger.InfoContext(ctx, "deleted dead tokens", "count", deleted)
	}
}
