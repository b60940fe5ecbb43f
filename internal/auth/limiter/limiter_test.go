package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestMemory(cfg Config) (*Memory, *time.Time) {
	m := NewMemory(cfg)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.Now = func() time.Time { return now }
	return m, &now
}

func TestMemoryAllowsUnderThreshold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, _ := newTestMemory(Config{MaxAttempts: 5, Window: 15 * time.Minute})

	for i := 0; i < 4; i++ {
		require.NoError(t, m.RecordFailure(ctx, "1.2.3.4"))
	}

	d, err := m.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Remaining)
}

func TestMemoryBlocksAtThreshold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, _ := newTestMemory(Config{MaxAttempts: 5, Window: 15 * time.Minute})

	for i := 0; i < 5; i++ {
		require.NoError(t, m.RecordFailure(ctx, "1.2.3.4"))
	}

	d, err := m.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 15*time.Minute, d.RetryAfter)
}

func TestMemoryWindowDecay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, now := newTestMemory(Config{MaxAttempts: 5, Window: 15 * time.Minute})

	for i := 0; i < 5; i++ {
		require.NoError(t, m.RecordFailure(ctx, "1.2.3.4"))
	}

	// One second before the window closes the key is still blocked.
	*now = now.Add(15*time.Minute - time.Second)
	d, err := m.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, time.Second, d.RetryAfter)

	// Once the window elapses the counter is gone entirely.
	*now = now.Add(time.Second)
	d, err = m.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 5, d.Remaining)
}

func TestMemoryKeysAreIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, _ := newTestMemory(Config{MaxAttempts: 2, Window: time.Minute})

	require.NoError(t, m.RecordFailure(ctx, "a"))
	require.NoError(t, m.RecordFailure(ctx, "a"))

	d, err := m.Check(ctx, "a")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = m.Check(ctx, "b")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 2, d.Remaining)
}

func TestMemoryReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, _ := newTestMemory(Config{MaxAttempts: 2, Window: time.Minute})

	require.NoError(t, m.RecordFailure(ctx, "a"))
	require.NoError(t, m.RecordFailure(ctx, "a"))
	require.NoError(t, m.Reset(ctx, "a"))

	d, err := m.Check(ctx, "a")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 2, d.Remaining)
}

func TestMemoryDefaultsApplied(t *testing.T) {
	t.Parallel()
	m := NewMemory(Config{})
	require.Equal(t, 5, m.cfg.MaxAttempts)
	require.Equal(t, 15*time.Minute, m.cfg.Window)
}
