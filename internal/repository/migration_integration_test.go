//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/socialvote/socialvote/internal/testutil"
)

// ============================================================================
// Migration Integration Tests
// ============================================================================

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	for _, table := range []string{"users", "posts", "votes"} {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_TableSchemas(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	expected := map[string][]string{
		"users": {"id", "email", "password_hash", "created_at"},
		"posts": {"id", "title", "content", "published", "owner_id", "created_at"},
		"votes": {"user_id", "post_id", "vote_dir"},
	}

	for table, cols := range expected {
		for _, col := range cols {
			exists, err := columnExists(ctx, pool, table, col)
			if err != nil {
				t.Fatalf("columnExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Column %q should exist in %s table", col, table)
			}
		}
	}
}

func TestIntegrationMigration_VoteDirectionConstraint(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	user := testutil.NewTestUser(t)
	post := testutil.NewTestPost(t, user.ID, "constraint")

	if _, err := pool.Exec(ctx, `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		user.ID, user.Email, user.PasswordHash); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO posts (id, title, content, owner_id) VALUES ($1, $2, $3, $4)`,
		post.ID, post.Title, post.Content, user.ID); err != nil {
		t.Fatalf("insert post: %v", err)
	}

	_, err := pool.Exec(ctx, `INSERT INTO votes (user_id, post_id, vote_dir) VALUES ($1, $2, 2)`, user.ID, post.ID)
	if !isCheckViolation(err) {
		t.Errorf("Expected check constraint violation for vote_dir=2, got %v", err)
	}

	_, err = pool.Exec(ctx, `INSERT INTO votes (user_id, post_id, vote_dir) VALUES ($1, $2, -1)`, user.ID, post.ID)
	if err != nil {
		t.Errorf("vote_dir=-1 should be accepted: %v", err)
	}
}

// ============================================================================
// Helper Functions
// ============================================================================

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables 
			WHERE table_schema = 'public' 
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns 
			WHERE table_schema = 'public' 
			AND table_name = $1 
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newMigrationTestEnv(t *testing.T) (context.Context, *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, pool); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, pool
}
