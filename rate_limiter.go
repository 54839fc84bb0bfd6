package campusgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "rate_limit:"

var errRateLimiterUnavailable = errors.New("rate limiter unavailable")

// cooldownLimiter is a single binary cooldown gate per key. Not a token bucket
// and not a sliding window: the first acquire inside an empty window wins, and
// every later acquire loses until the marker expires.
type cooldownLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

func newCooldownLimiter(redisClient *redis.Client, cfg RateLimitConfig) *cooldownLimiter {
	return &cooldownLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

// TryAcquire describes the tryacquire operation and its observable behavior.
//
// TryAcquire may return an error when input validation, dependency calls, or security checks fail.
// TryAcquire does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (l *cooldownLimiter) TryAcquire(ctx context.Context, key string, cooldown time.Duration) (bool, error) {
	if !l.config.Enabled {
		return true, nil
	}
	if cooldown <= 0 {
		cooldown = l.config.Cooldown
	}

	set, err := l.redis.SetNX(ctx, rateLimitKeyPrefix+key, "1", cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", errRateLimiterUnavailable, err)
	}
	return set, nil
}

// RetryAfter is the retry-after hint callers should surface alongside a
// rate-limited rejection.
func (l *cooldownLimiter) RetryAfter() time.Duration {
	return l.config.Cooldown
}
