package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"

	if hashIP(ip) != hashIP(ip) {
		t.Error("Same IP should produce same hash")
	}
	if len(hashIP(ip)) != 16 {
		t.Errorf("hashIP length = %d, want 16", len(hashIP(ip)))
	}
}

func TestHashIP_Different(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip1  string
		ip2  string
	}{
		{"different IPv4", "192.168.1.1", "192.168.1.2"},
		{"IPv4 vs IPv6", "127.0.0.1", "::1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if hashIP(tt.ip1) == hashIP(tt.ip2) {
				t.Errorf("Different IPs should produce different hashes: %q and %q", tt.ip1, tt.ip2)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()

	ipKey := IPKey("login", "10.0.0.1")
	if !strings.HasPrefix(ipKey, "login:ip:") || strings.Contains(ipKey, "10.0.0.1") {
		t.Errorf("IPKey should be scoped and hashed, got %q", ipKey)
	}
	if got := UserKey("write", "01HUSER"); got != "write:user:01HUSER" {
		t.Errorf("UserKey = %q", got)
	}
}

func TestLimit(t *testing.T) {
	t.Parallel()

	l := PerMinute(120, 20)
	if l.Rate != 2 || l.Burst != 20 {
		t.Errorf("PerMinute(120, 20) = %+v", l)
	}
	if l.Unlimited() {
		t.Error("a positive limit is not unlimited")
	}
	if !(Limit{}).Unlimited() {
		t.Error("zero limit should be unlimited")
	}
	if got := bucketTTL(Limit{Rate: 1, Burst: 5}); got != 6 {
		t.Errorf("bucketTTL = %d, want 6", got)
	}
}

func TestLocalLimiter_Burst(t *testing.T) {
	t.Parallel()

	l := NewLocalLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	limit := Limit{Rate: 1, Burst: 3}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "k", limit)
		if err != nil || !res.Allowed {
			t.Fatalf("request %d should be allowed: %+v, %v", i, res, err)
		}
	}

	res, _ := l.Allow(ctx, "k", limit)
	if res.Allowed {
		t.Fatal("request beyond burst should be denied")
	}
	if res.RetryAfter != time.Second {
		t.Errorf("RetryAfter = %s, want 1s", res.RetryAfter)
	}

	other, _ := l.Allow(ctx, "other", limit)
	if !other.Allowed {
		t.Error("buckets must be independent per key")
	}

	now = now.Add(time.Second)
	res, _ = l.Allow(ctx, "k", limit)
	if !res.Allowed {
		t.Error("a token should refill after one second")
	}
}

func TestLocalLimiter_SweepsIdleBuckets(t *testing.T) {
	t.Parallel()

	l := NewLocalLimiter()
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = l.Allow(ctx, "idle", Limit{Rate: 1, Burst: 1})
	now = now.Add(localIdleTTL + localSweepInterval + time.Second)
	_, _ = l.Allow(ctx, "fresh", Limit{Rate: 1, Burst: 1})

	if l.Len() != 1 {
		t.Errorf("idle bucket should be swept, %d buckets tracked", l.Len())
	}
}

func TestLocalLimiter_Unlimited(t *testing.T) {
	t.Parallel()

	l := NewLocalLimiter()
	for i := 0; i < 100; i++ {
		res, _ := l.Allow(context.Background(), "k", Limit{})
		if !res.Allowed {
			t.Fatal("unlimited limit must always allow")
		}
	}
	if l.Len() != 0 {
		t.Error("unlimited checks should not allocate buckets")
	}
}
