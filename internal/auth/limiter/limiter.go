// Package limiter tracks failed authentication attempts per client identity
// (usually an IP) inside a decay window, independently of token storage.
// It guards the credential check itself; per-route HTTP throttling is a
// separate concern handled in pkg/httpx.
package limiter

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration // how long to wait when not allowed
	Remaining  int           // attempts left before throttling
}

// AttemptLimiter counts failed attempts per client key. Implementations must
// be safe for concurrent use (atomic increment-with-TTL).
type AttemptLimiter interface {
	// Check reports whether another attempt is allowed for key.
	Check(ctx context.Context, key string) (Decision, error)

	// RecordFailure increments the failure counter for key, starting the
	// decay window on the first failure.
	RecordFailure(ctx context.Context, key string) error

	// Reset clears the counter for key. Called after a successful
	// authentication so a legitimate login doesn't inherit stale failures.
	Reset(ctx context.Context, key string) error
}

// Config bounds attempt counting.
type Config struct {
	MaxAttempts int           // failures allowed within the window
	Window      time.Duration // sliding decay window
}

// DefaultConfig matches the storefront's login policy.
func DefaultConfig() Config {
	return Config{MaxAttempts: 5, Window: 15 * time.Minute}
}

type memoryEntry struct {
	count       int
	windowStart time.Time
}

// Memory is an in-process AttemptLimiter. Suitable for a single instance;
// use the Redis backend when the service runs replicated.
type Memory struct {
	cfg Config

	mu      sync.Mutex
	entries map[string]*memoryEntry

	// Now is injectable for tests.
	Now func() time.Time
}

// NewMemory returns an in-process limiter with the given config.
func NewMemory(cfg Config) *Memory {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	return &Memory{
		cfg:     cfg,
		entries: make(map[string]*memoryEntry),
		Now:     time.Now,
	}
}

func (m *Memory) Check(_ context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	entry, ok := m.entries[key]
	if !ok || m.expired(entry, now) {
		if ok {
			delete(m.entries, key)
		}
		return Decision{Allowed: true, Remaining: m.cfg.MaxAttempts}, nil
	}

	if entry.count >= m.cfg.MaxAttempts {
		retryAfter := entry.windowStart.Add(m.cfg.Window).Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return Decision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	return Decision{Allowed: true, Remaining: m.cfg.MaxAttempts - entry.count}, nil
}

func (m *Memory) RecordFailure(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.Now()
	entry, ok := m.entries[key]
	if !ok || m.expired(entry, now) {
		m.entries[key] = &memoryEntry{count: 1, windowStart: now}
		return nil
	}

	entry.count++
	return nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *Memory) expired(entry *memoryEntry, now time.Time) bool {
	return !now.Before(entry.windowStart.Add(m.cfg.Window))
}
