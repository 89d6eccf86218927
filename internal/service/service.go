// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/socialvote/socialvote/internal/model"
	"github.com/socialvote/socialvote/internal/repository"
)

// Service errors. Handlers map these to HTTP statuses.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidVoteDirection = errors.New("vote direction must be -1, 0 or 1")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthorized         = errors.New("could not validate credentials")
	ErrForbidden            = errors.New("not authorized to perform requested action")
	ErrEmailExists          = errors.New("email already registered")
	ErrUserNotFound         = errors.New("user not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrVoteNotFound         = errors.New("vote not found")
	ErrTargetNotFound       = errors.New("vote target post does not exist")
	ErrVoteConflict         = errors.New("vote changed concurrently, retry the request")
)

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// PostStore persists posts. Reads return the joined owner and vote aggregates.
type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListPosts(ctx context.Context, filter repository.PostFilter) ([]*model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id string) error
}

// VoteStore persists votes keyed by (user, post).
type VoteStore interface {
	GetVote(ctx context.Context, userID, postID string) (*model.Vote, error)
	CreateVote(ctx context.Context, vote *model.Vote) error
	UpdateVote(ctx context.Context, vote *model.Vote) error
	DeleteVote(ctx context.Context, userID, postID string) error
}

var (
	_ UserStore = (*repository.Repository)(nil)
	_ PostStore = (*repository.Repository)(nil)
	_ VoteStore = (*repository.Repository)(nil)
)

// invalidf wraps ErrInvalidInput with a field-level message.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// newID returns a lexicographically sortable unique id.
func newID() string {
	return ulid.Make().String()
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
