package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/socialvote/socialvote/internal/auth"
	"github.com/socialvote/socialvote/internal/cache"
	"github.com/socialvote/socialvote/internal/metrics"
)

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger   *slog.Logger
	Limiter  cache.Limiter
	Recorder metrics.Recorder
	Enabled  bool
}

// RateLimitIP returns middleware that rate limits requests per client IP
// within scope. Used on unauthenticated credential endpoints.
func RateLimitIP(cfg RateLimitConfig, scope string, limit cache.Limit) func(http.Handler) http.Handler {
	return rateLimit(cfg, scope, limit, func(r *http.Request) string {
		return cache.IPKey(scope, getClientIP(r))
	})
}

// RateLimitUser returns middleware that rate limits per authenticated user.
// Must be applied after Auth; anonymous requests fall back to the client IP.
func RateLimitUser(cfg RateLimitConfig, scope string, limit cache.Limit) func(http.Handler) http.Handler {
	return rateLimit(cfg, scope, limit, func(r *http.Request) string {
		if userID := auth.UserIDFromContext(r.Context()); userID != "" {
			return cache.UserKey(scope, userID)
		}
		return cache.IPKey(scope, getClientIP(r))
	})
}

func rateLimit(cfg RateLimitConfig, scope string, limit cache.Limit, keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || cfg.Limiter == nil || limit.Unlimited() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := cfg.Limiter.Allow(r.Context(), keyFn(r), limit)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("scope", scope),
				)
				// Fail open - allow request
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Burst))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(max(result.Remaining, 0), 10))

			if !result.Allowed {
				retryAfter := int(result.RetryAfter.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}

				cfg.Recorder.IncRateLimited(scope)
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("scope", scope),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int("retry_after_seconds", retryAfter),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED",
					fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", retryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP returns the host part of RemoteAddr. Forwarding headers are
// only honored through RealIP, which the router mounts when proxy headers
// are trusted.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
