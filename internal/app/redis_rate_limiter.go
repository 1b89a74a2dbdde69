/**
 * @description
 * This file implements a Redis-backed fixed-window rate limiter for the scan
 * intake path. A single Lua script increments the window counter and sets the
 * expiry atomically, so bursts from one fingerprint or IP cannot slip past the
 * limit between an INCR and a PEXPIRE.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9: Redis client.
 */

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var scanRateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

// RedisScanRateLimiter enforces fixed-window limits on scan attempts. A nil
// limiter disables rate limiting entirely, which keeps the scan path working
// when Redis is not configured.
type RedisScanRateLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisScanRateLimiter creates a limiter on the given client.
func NewRedisScanRateLimiter(client *redis.Client) *RedisScanRateLimiter {
	return &RedisScanRateLimiter{client: client, prefix: "reward:scan:rl"}
}

// ConsumeRateLimit counts one attempt for the subject within the scope's
// window and reports the running count plus the seconds to wait when the limit
// is exceeded. Errors are returned so callers can decide to fail open.
func (l *RedisScanRateLimiter) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int64, window time.Duration) (int64, int64, error) {
	if l == nil || l.client == nil || limit <= 0 {
		return 0, 0, nil
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return 0, 0, nil
	}

	key := fmt.Sprintf("%s:%s:%s", l.prefix, scope, subject)
	res, err := scanRateLimitScript.Run(ctx, l.client, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit script failed: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit script result: %v", res)
	}
	count, _ := values[0].(int64)
	ttlMillis, _ := values[1].(int64)

	if count > limit {
		retryAfter := int64(1)
		if ttlMillis > 0 {
			retryAfter = (ttlMillis + 999) / 1000
		}
		return count, retryAfter, nil
	}
	return count, 0, nil
}
