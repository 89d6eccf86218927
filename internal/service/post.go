package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/socialvote/socialvote/internal/metrics"
	"github.com/socialvote/socialvote/internal/model"
	"github.com/socialvote/socialvote/internal/repository"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
	maxTitleLength   = 255
)

// PostService handles post business logic. Reads are public; every
// mutation goes through the owner guard.
type PostService struct {
	posts   PostStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewPostService creates a new PostService.
func NewPostService(posts PostStore, recorder metrics.Recorder, logger *slog.Logger) *PostService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		posts:   posts,
		metrics: recorder,
		logger:  logger,
	}
}

// PostInput carries the writable fields of a post. A nil Published
// defaults to true, on create and on replace.
type PostInput struct {
	Title     string
	Content   string
	Published *bool
}

// ListPostsInput defines input for listing posts.
type ListPostsInput struct {
	Search string
	Limit  int
	Offset int
}

// Create stores a new post owned by ownerID.
func (s *PostService) Create(ctx context.Context, ownerID string, input PostInput) (*model.Post, error) {
	if err := validatePostInput(input); err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:        newID(),
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
		Published: published(input.Published),
		OwnerID:   ownerID,
		CreatedAt: nowUTC(),
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.metrics.IncPostCreated()
	s.logger.Info("post_created", "post_id", post.ID, "owner_id", ownerID)

	return s.Get(ctx, post.ID)
}

// Get retrieves a post with its owner and vote aggregates.
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// List returns posts newest first. Limit defaults to 10 and is capped at 100.
func (s *PostService) List(ctx context.Context, input ListPostsInput) ([]*model.Post, error) {
	limit := input.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	posts, err := s.posts.ListPosts(ctx, repository.PostFilter{
		Search: strings.TrimSpace(input.Search),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Update replaces the writable fields of a post owned by actorID.
func (s *PostService) Update(ctx context.Context, actorID, id string, input PostInput) (*model.Post, error) {
	if err := validatePostInput(input); err != nil {
		return nil, err
	}

	post, err := s.loadOwned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(input.Title)
	post.Content = input.Content
	post.Published = published(input.Published)

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.metrics.IncPostUpdated()
	s.logger.Info("post_updated", "post_id", id, "owner_id", actorID)

	return s.Get(ctx, id)
}

// Delete removes a post owned by actorID together with its votes.
func (s *PostService) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.loadOwned(ctx, actorID, id); err != nil {
		return err
	}

	if err := s.posts.DeletePost(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.metrics.IncPostDeleted()
	s.logger.Info("post_deleted", "post_id", id, "owner_id", actorID)

	return nil
}

// loadOwned is the owner guard: the post must exist and belong to actorID.
func (s *PostService) loadOwned(ctx context.Context, actorID, id string) (*model.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsOwnedBy(actorID) {
		s.logger.Warn("post_mutation_forbidden", "post_id", id, "actor_id", actorID)
		return nil, ErrForbidden
	}
	return post, nil
}

func validatePostInput(input PostInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return invalidf("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return invalidf("title must be at most %d characters", maxTitleLength)
	}
	return nil
}

func published(p *bool) bool {
	if p == nil {
		return true
	}
	return *p
}
