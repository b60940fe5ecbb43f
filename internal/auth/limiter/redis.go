package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is an AttemptLimiter backed by a shared Redis instance, for
// deployments where the auth service runs replicated and every replica must
// see the same failure counts. Uses INCR with a TTL set on the first failure.
type Redis struct {
	cfg    Config
	client redis.UniversalClient
	prefix string
}

// NewRedis returns a Redis-backed limiter. The prefix namespaces keys so the
// limiter can share an instance with other consumers.
func NewRedis(client redis.UniversalClient, cfg Config) *Redis {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	return &Redis{
		cfg:    cfg,
		client: client,
		prefix: "auth:attempts:",
	}
}

func (r *Redis) Check(ctx context.Context, key string) (Decision, error) {
	redisKey := r.prefix + key

	count, err := r.client.Get(ctx, redisKey).Int()
	if errors.Is(err, redis.Nil) {
		return Decision{Allowed: true, Remaining: r.cfg.MaxAttempts}, nil
	}
	if err != nil {
		return Decision{}, fmt.Errorf("limiter: redis get: %w", err)
	}

	if count < r.cfg.MaxAttempts {
		return Decision{Allowed: true, Remaining: r.cfg.MaxAttempts - count}, nil
	}

	ttl, err := r.client.TTL(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("limiter: redis ttl: %w", err)
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return Decision{Allowed: false, RetryAfter: ttl}, nil
}

func (r *Redis) RecordFailure(ctx context.Context, key string) error {
	redisKey := r.prefix + key

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("limiter: redis incr: %w", err)
	}
	if count == 1 {
		// First failure in this window starts the decay timer.
		if err := r.client.Expire(ctx, redisKey, r.cfg.Window).Err(); err != nil {
			return fmt.Errorf("limiter: redis expire: %w", err)
		}
	}
	return nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("limiter: redis del: %w", err)
	}
	return nil
}
