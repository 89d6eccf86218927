// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/socialvote/socialvote/internal/model"
	"github.com/socialvote/socialvote/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every table by running all down migrations newest
// first, then re-applies the up migrations in order.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	downs, err := migrationFiles(".down.sql")
	if err != nil {
		return err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(downs)))

	ups, err := migrationFiles(".up.sql")
	if err != nil {
		return err
	}
	sort.Strings(ups)

	for _, name := range append(downs, ups...) {
		sql, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}

	return nil
}

func migrationFiles(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), suffix) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with a unique email and a placeholder hash.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	return &model.User{
		ID:           UniqueID(),
		Email:        UniqueEmail("user"),
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderplacehold",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestPost creates a published post owned by ownerID.
func NewTestPost(t testing.TB, ownerID, title string) *model.Post {
	t.Helper()
	return &model.Post{
		ID:        UniqueID(),
		Title:     title,
		Content:   "content of " + title,
		Published: true,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// UniqueID generates a ULID for tests.
func UniqueID() string {
	return ulid.Make().String()
}
