package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/socialvote/socialvote/internal/model"
	"github.com/socialvote/socialvote/internal/repository"
)

func seed(t *testing.T) (*Store, *model.User, *model.Post) {
	t.Helper()
	ctx := context.Background()
	s := New()

	user := &model.User{ID: "u1", Email: "u1@example.com", CreatedAt: time.Now()}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	post := &model.Post{ID: "p1", Title: "First", OwnerID: user.ID, CreatedAt: time.Now()}
	if err := s.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	return s, user, post
}

func TestStore_UserConstraints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, user, _ := seed(t)

	dup := &model.User{ID: "u2", Email: user.Email}
	if err := s.CreateUser(ctx, dup); !errors.Is(err, repository.ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}
	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if err := s.CreatePost(ctx, &model.Post{ID: "p2", OwnerID: "ghost"}); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound for missing owner, got %v", err)
	}
}

func TestStore_VoteConstraints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, user, post := seed(t)

	vote := &model.Vote{UserID: user.ID, PostID: post.ID, Direction: model.VoteUp}
	if err := s.CreateVote(ctx, vote); err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}
	if err := s.CreateVote(ctx, vote); !errors.Is(err, repository.ErrVoteExists) {
		t.Errorf("expected ErrVoteExists, got %v", err)
	}
	if err := s.CreateVote(ctx, &model.Vote{UserID: user.ID, PostID: "missing", Direction: model.VoteUp}); !errors.Is(err, repository.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
	if err := s.UpdateVote(ctx, &model.Vote{UserID: user.ID, PostID: post.ID, Direction: 5}); !errors.Is(err, repository.ErrInvalidVote) {
		t.Errorf("expected ErrInvalidVote, got %v", err)
	}

	got, err := s.GetPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPostByID failed: %v", err)
	}
	if got.VoteCount != 1 || got.Score != 1 || got.Owner == nil || got.Owner.ID != user.ID {
		t.Errorf("unexpected view: %+v", got)
	}
}

func TestStore_DeletePostCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, user, post := seed(t)

	_ = s.CreateVote(ctx, &model.Vote{UserID: user.ID, PostID: post.ID, Direction: model.VoteDown})
	if err := s.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if s.VoteCount() != 0 {
		t.Errorf("expected votes to cascade, %d left", s.VoteCount())
	}
	if err := s.DeletePost(ctx, post.ID); !errors.Is(err, repository.ErrPostNotFound) {
		t.Errorf("expected ErrPostNotFound, got %v", err)
	}
}

func TestStore_ListPosts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, user, _ := seed(t)

	base := time.Now()
	for i, title := range []string{"Go tips", "golang generics", "Rust"} {
		p := &model.Post{ID: title, Title: title, OwnerID: user.ID, CreatedAt: base.Add(time.Duration(i+1) * time.Minute)}
		if err := s.CreatePost(ctx, p); err != nil {
			t.Fatalf("CreatePost failed: %v", err)
		}
	}

	got, _ := s.ListPosts(ctx, repository.PostFilter{Search: "GO", Limit: 10})
	if len(got) != 2 || got[0].Title != "golang generics" {
		t.Fatalf("unexpected search result: %d posts", len(got))
	}

	page, _ := s.ListPosts(ctx, repository.PostFilter{Limit: 2, Offset: 1})
	if len(page) != 2 || page[0].Title != "golang generics" {
		t.Errorf("unexpected page: %d posts", len(page))
	}
}
