package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitPrefix is the Redis key prefix for rate limit buckets.
const rateLimitPrefix = "ratelimit:"

// Limit is a token bucket: Rate tokens per second refill a bucket holding
// at most Burst tokens.
type Limit struct {
	Rate  float64
	Burst int
}

// PerMinute converts a per-minute budget into a Limit.
func PerMinute(n, burst int) Limit {
	return Limit{Rate: float64(n) / 60.0, Burst: burst}
}

// Unlimited reports whether l disables limiting.
func (l Limit) Unlimited() bool {
	return l.Rate <= 0 || l.Burst <= 0
}

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string, limit Limit) (*RateLimitResult, error)
}

// IPKey builds a limiter key for a client IP within scope. The IP is
// hashed so raw addresses are never stored.
func IPKey(scope, ip string) string {
	return scope + ":ip:" + hashIP(ip)
}

// UserKey builds a limiter key for an authenticated user within scope.
func UserKey(scope, userID string) string {
	return scope + ":user:" + userID
}

// tokenBucketScript is a Lua script implementing the token bucket algorithm.
// It's atomic and handles token refill and consumption in a single operation.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in seconds, fractional
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = math.max(0, now - last_update)
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// Allow consumes one token from the bucket stored under key.
// Redis errors fail open: the request is allowed and the error returned
// so the caller can log it.
func (c *Cache) Allow(ctx context.Context, key string, limit Limit) (*RateLimitResult, error) {
	if limit.Unlimited() {
		return &RateLimitResult{Allowed: true, Remaining: math.MaxInt64}, nil
	}

	now := float64(time.Now().UnixMilli()) / 1000.0
	result, err := tokenBucketScript.Run(ctx, c.client,
		[]string{rateLimitPrefix + key},
		strconv.FormatFloat(limit.Rate, 'f', -1, 64),
		limit.Burst,
		strconv.FormatFloat(now, 'f', 3, 64),
		bucketTTL(limit),
	).Int64Slice()
	if err != nil {
		return &RateLimitResult{Allowed: true, Remaining: int64(limit.Burst)}, err
	}

	return &RateLimitResult{
		Allowed:    result[0] == 1,
		RetryAfter: time.Duration(result[1]) * time.Second,
		Remaining:  result[2],
	}, nil
}

// bucketTTL is how long an idle bucket must live before it would be full
// again anyway, so expiring it loses no state.
func bucketTTL(limit Limit) int {
	return int(math.Ceil(float64(limit.Burst)/limit.Rate)) + 1
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8]) // 16 hex chars
}
