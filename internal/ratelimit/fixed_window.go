package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisOpTimeout = 2 * time.Second

// countAndExpire increments the window counter and stamps its TTL on first use.
var countAndExpire = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// FixedWindowLimiter throttles a key to at most limit hits per window.
// State lives in Redis so every replica shares one quota.
type FixedWindowLimiter struct {
	limit  int64
	window time.Duration
	prefix string
	client *redis.Client
}

// NewRedisFixedWindowLimiter dials Redis and returns a shared limiter.
func NewRedisFixedWindowLimiter(addr, password, prefix string, limit int, window time.Duration) (*FixedWindowLimiter, error) {
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("rate limiter redis addr is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "paperdesk:ratelimit"
	}
	return &FixedWindowLimiter{
		limit:  int64(limit),
		window: window,
		prefix: prefix,
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
	}, nil
}

// Allow reports whether the key still has quota in the current window.
// Redis errors count as a denial so an outage cannot disable throttling.
func (l *FixedWindowLimiter) Allow(key string) bool {
	if l == nil {
		return false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	windowMs := l.window.Milliseconds()
	n, err := countAndExpire.Run(ctx, l.client, []string{l.quotaKey(key)}, windowMs).Int64()
	if err != nil {
		return false
	}
	return n <= l.limit
}

// quotaKey buckets the key by window so counters reset without cleanup jobs.
func (l *FixedWindowLimiter) quotaKey(key string) string {
	slot := time.Now().UTC().UnixMilli() / l.window.Milliseconds()
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)
}
