//go:build integration

package cache

import (
	"context"
	"testing"

	"github.com/socialvote/socialvote/internal/testutil"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	c, err := New(ctx, testutil.RequireEnv(t, "REDIS_URL"))
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return c
}

func TestIntegrationCache_AllowBurstThenDeny(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	limit := Limit{Rate: 0.1, Burst: 2}
	key := IPKey("login", "203.0.113.7")

	for i := 0; i < 2; i++ {
		res, err := c.Allow(ctx, key, limit)
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d within burst should be allowed", i)
		}
	}

	res, err := c.Allow(ctx, key, limit)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if res.Allowed {
		t.Fatal("request beyond burst should be denied")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("denied request should carry a RetryAfter, got %s", res.RetryAfter)
	}

	ttl, err := c.Client().TTL(ctx, rateLimitPrefix+key).Result()
	if err != nil || ttl <= 0 {
		t.Errorf("bucket key should expire, ttl=%s err=%v", ttl, err)
	}
}

func TestIntegrationCache_Ping(t *testing.T) {
	c := newTestCache(t)
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
