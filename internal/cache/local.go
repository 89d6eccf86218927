package cache

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	localIdleTTL       = 10 * time.Minute
	localSweepInterval = time.Minute
)

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process Limiter used when Redis is not
// configured. Limits are per process, not shared across replicas.
type LocalLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*localEntry
	lastSweep time.Time
	now       func() time.Time
}

// NewLocalLimiter creates an empty LocalLimiter.
func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{
		limiters:  make(map[string]*localEntry),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow consumes one token from the bucket for key.
func (l *LocalLimiter) Allow(_ context.Context, key string, limit Limit) (*RateLimitResult, error) {
	if limit.Unlimited() {
		return &RateLimitResult{Allowed: true, Remaining: math.MaxInt64}, nil
	}

	now := l.now()
	limiter := l.getOrCreate(key, limit, now)

	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return &RateLimitResult{Allowed: false, RetryAfter: time.Second}, nil
	}

	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return &RateLimitResult{
			Allowed:    false,
			RetryAfter: ceilSecond(delay),
		}, nil
	}

	return &RateLimitResult{
		Allowed:   true,
		Remaining: int64(limiter.TokensAt(now)),
	}, nil
}

// Len returns the number of tracked buckets.
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *LocalLimiter) getOrCreate(key string, limit Limit, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= localSweepInterval {
		for k, e := range l.limiters {
			if now.Sub(e.lastSeen) > localIdleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &localEntry{limiter: rate.NewLimiter(rate.Limit(limit.Rate), limit.Burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter
}

// ceilSecond rounds d up to whole seconds so Retry-After never tells a
// client to come back too early.
func ceilSecond(d time.Duration) time.Duration {
	return time.Duration(math.Ceil(d.Seconds())) * time.Second
}
