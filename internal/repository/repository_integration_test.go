//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/socialvote/socialvote/internal/model"
	"github.com/socialvote/socialvote/internal/testutil"
)

func newRepoTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	ctx, pool := newMigrationTestEnv(t)
	return ctx, &Repository{pool: pool}
}

func seedUser(t *testing.T, ctx context.Context, repo *Repository) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func seedPost(t *testing.T, ctx context.Context, repo *Repository, ownerID, title string) *model.Post {
	t.Helper()
	post := testutil.NewTestPost(t, ownerID, title)
	if err := repo.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	return post
}

func TestIntegrationUser_CreateAndGet(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := seedUser(t, ctx, repo)

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != user.Email || byID.PasswordHash != user.PasswordHash {
		t.Errorf("unexpected user: %+v", byID)
	}

	byEmail, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("GetUserByEmail returned %s, want %s", byEmail.ID, user.ID)
	}

	dup := testutil.NewTestUser(t)
	dup.Email = user.Email
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	if _, err := repo.GetUserByID(ctx, testutil.UniqueID()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIntegrationPost_CRUD(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo)
	post := seedPost(t, ctx, repo, owner.ID, "Hello world")

	got, err := repo.GetPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPostByID failed: %v", err)
	}
	if got.Owner == nil || got.Owner.ID != owner.ID || got.Owner.Email != owner.Email {
		t.Errorf("owner not joined: %+v", got.Owner)
	}
	if got.VoteCount != 0 || got.Score != 0 {
		t.Errorf("fresh post should have no votes, got count=%d score=%d", got.VoteCount, got.Score)
	}

	got.Title = "Hello again"
	got.Published = false
	if err := repo.UpdatePost(ctx, got); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	updated, _ := repo.GetPostByID(ctx, post.ID)
	if updated.Title != "Hello again" || updated.Published {
		t.Errorf("update not persisted: %+v", updated)
	}

	if err := repo.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if err := repo.DeletePost(ctx, post.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("second delete should return ErrPostNotFound, got %v", err)
	}

	orphan := testutil.NewTestPost(t, testutil.UniqueID(), "orphan")
	if err := repo.CreatePost(ctx, orphan); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound for unknown owner, got %v", err)
	}
}

func TestIntegrationPost_ListSearchAndAggregates(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	owner := seedUser(t, ctx, repo)
	voter := seedUser(t, ctx, repo)

	a := seedPost(t, ctx, repo, owner.ID, "Go concurrency")
	_ = seedPost(t, ctx, repo, owner.ID, "Rust lifetimes")
	_ = seedPost(t, ctx, repo, owner.ID, "100% coverage")

	for _, v := range []*model.Vote{
		{UserID: owner.ID, PostID: a.ID, Direction: model.VoteUp},
		{UserID: voter.ID, PostID: a.ID, Direction: model.VoteDown},
	} {
		if err := repo.CreateVote(ctx, v); err != nil {
			t.Fatalf("CreateVote failed: %v", err)
		}
	}

	all, err := repo.ListPosts(ctx, PostFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(all))
	}

	found, err := repo.ListPosts(ctx, PostFilter{Search: "GO", Limit: 10})
	if err != nil {
		t.Fatalf("ListPosts search failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != a.ID {
		t.Fatalf("expected only %q, got %d posts", a.Title, len(found))
	}
	if found[0].VoteCount != 2 || found[0].Score != 0 {
		t.Errorf("aggregates = count %d score %d, want 2 and 0", found[0].VoteCount, found[0].Score)
	}

	percent, _ := repo.ListPosts(ctx, PostFilter{Search: "%", Limit: 10})
	if len(percent) != 1 {
		t.Errorf("%% should match literally, got %d posts", len(percent))
	}

	page, _ := repo.ListPosts(ctx, PostFilter{Limit: 2, Offset: 2})
	if len(page) != 1 {
		t.Errorf("expected 1 post on second page, got %d", len(page))
	}
}

func TestIntegrationVote_Lifecycle(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := seedUser(t, ctx, repo)
	post := seedPost(t, ctx, repo, user.ID, "votes")

	vote := &model.Vote{UserID: user.ID, PostID: post.ID, Direction: model.VoteUp}
	if err := repo.CreateVote(ctx, vote); err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}
	if err := repo.CreateVote(ctx, vote); !errors.Is(err, ErrVoteExists) {
		t.Errorf("duplicate insert should return ErrVoteExists, got %v", err)
	}

	vote.Direction = model.VoteDown
	if err := repo.UpdateVote(ctx, vote); err != nil {
		t.Fatalf("UpdateVote failed: %v", err)
	}

	got, err := repo.GetVote(ctx, user.ID, post.ID)
	if err != nil {
		t.Fatalf("GetVote failed: %v", err)
	}
	if got.Direction != model.VoteDown {
		t.Errorf("Direction = %v, want down", got.Direction)
	}

	if err := repo.DeleteVote(ctx, user.ID, post.ID); err != nil {
		t.Fatalf("DeleteVote failed: %v", err)
	}
	if err := repo.DeleteVote(ctx, user.ID, post.ID); !errors.Is(err, ErrVoteNotFound) {
		t.Errorf("second delete should return ErrVoteNotFound, got %v", err)
	}
	if err := repo.UpdateVote(ctx, vote); !errors.Is(err, ErrVoteNotFound) {
		t.Errorf("update of missing vote should return ErrVoteNotFound, got %v", err)
	}

	missing := &model.Vote{UserID: user.ID, PostID: testutil.UniqueID(), Direction: model.VoteUp}
	if err := repo.CreateVote(ctx, missing); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("vote on missing post should return ErrPostNotFound, got %v", err)
	}
}

func TestIntegrationVote_CascadeOnPostDelete(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := seedUser(t, ctx, repo)
	post := seedPost(t, ctx, repo, user.ID, "cascade")

	if err := repo.CreateVote(ctx, &model.Vote{UserID: user.ID, PostID: post.ID, Direction: model.VoteUp}); err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}
	if err := repo.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := repo.GetVote(ctx, user.ID, post.ID); !errors.Is(err, ErrVoteNotFound) {
		t.Errorf("vote should be removed with its post, got %v", err)
	}
}

func TestIntegrationRunMigrations_UpIsIdempotent(t *testing.T) {
	_, _ = newMigrationTestEnv(t)
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	if _, err := RunMigrations(dbURL, MigrateUp); err != nil {
		t.Fatalf("first RunMigrations failed: %v", err)
	}
	result, err := RunMigrations(dbURL, MigrateUp)
	if err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}
	if result.Changed {
		t.Error("second up run should report no change")
	}
	if result.Version != 3 {
		t.Errorf("Version = %d, want 3", result.Version)
	}
}

func TestIntegrationNew_AppliesPoolConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	ctx := context.Background()

	repo, err := New(ctx, dbURL, PoolConfig{MaxConns: 4, MinConns: 8})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(repo.Close)

	cfg := repo.pool.Config()
	if cfg.MaxConns != 4 {
		t.Errorf("MaxConns = %d, want 4", cfg.MaxConns)
	}
	if cfg.MinConns != 4 {
		t.Errorf("MinConns should be capped at MaxConns, got %d", cfg.MinConns)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestIntegrationNew_BadURL(t *testing.T) {
	if _, err := New(context.Background(), "://not-a-url", PoolConfig{}); err == nil {
		t.Error("expected error for malformed URL")
	}
}
