// Package memstore is an in-memory implementation of the repository
// methods, with the same primary key, unique and foreign key semantics as
// the PostgreSQL schema. It backs service and HTTP tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/socialvote/socialvote/internal/model"
	"github.com/socialvote/socialvote/internal/repository"
)

type voteKey struct {
	userID string
	postID string
}

// Store keeps users, posts and votes in maps guarded by one mutex.
type Store struct {
	mu      sync.RWMutex
	users   map[string]model.User
	byEmail map[string]string
	posts   map[string]model.Post
	votes   map[voteKey]model.VoteDirection
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:   make(map[string]model.User),
		byEmail: make(map[string]string),
		posts:   make(map[string]model.Post),
		votes:   make(map[voteKey]model.VoteDirection),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// CreateUser inserts user, enforcing unique ids and emails.
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return repository.ErrEmailExists
	}
	if _, ok := s.users[user.ID]; ok {
		return repository.ErrEmailExists
	}

	s.users[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}

// GetUserByID returns a copy of the user.
func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

// GetUserByEmail returns a copy of the user with the given email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	user := s.users[id]
	return &user, nil
}

// DeleteUser removes a user and cascades to their posts and votes.
// The service layer never deletes users; tests use it to model an
// account that disappears while its token is still valid.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	delete(s.users, id)
	delete(s.byEmail, user.Email)

	for postID, post := range s.posts {
		if post.OwnerID == id {
			s.deletePostLocked(postID)
		}
	}
	for key := range s.votes {
		if key.userID == id {
			delete(s.votes, key)
		}
	}
	return nil
}

// CreatePost inserts post. A missing owner yields ErrUserNotFound.
func (s *Store) CreatePost(_ context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[post.OwnerID]; !ok {
		return repository.ErrUserNotFound
	}

	stored := *post
	stored.Owner = nil
	stored.VoteCount = 0
	stored.Score = 0
	s.posts[post.ID] = stored
	return nil
}

// GetPostByID returns the post with its owner and vote aggregates.
func (s *Store) GetPostByID(_ context.Context, id string) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	return s.viewLocked(post), nil
}

// ListPosts mirrors the SQL query: case-insensitive title match, newest
// first, then limit and offset.
func (s *Store) ListPosts(_ context.Context, filter repository.PostFilter) ([]*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	matched := make([]model.Post, 0, len(s.posts))
	for _, post := range s.posts {
		if search == "" || strings.Contains(strings.ToLower(post.Title), search) {
			matched = append(matched, post)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	posts := make([]*model.Post, 0, filter.Limit)
	for i := filter.Offset; i < len(matched) && len(posts) < filter.Limit; i++ {
		posts = append(posts, s.viewLocked(matched[i]))
	}
	return posts, nil
}

// UpdatePost replaces the mutable fields of an existing post.
func (s *Store) UpdatePost(_ context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.posts[post.ID]
	if !ok {
		return repository.ErrPostNotFound
	}
	stored.Title = post.Title
	stored.Content = post.Content
	stored.Published = post.Published
	s.posts[post.ID] = stored
	return nil
}

// DeletePost removes a post and its votes.
func (s *Store) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	s.deletePostLocked(id)
	return nil
}

// GetVote returns the vote userID holds on postID.
func (s *Store) GetVote(_ context.Context, userID, postID string) (*model.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir, ok := s.votes[voteKey{userID, postID}]
	if !ok {
		return nil, repository.ErrVoteNotFound
	}
	return &model.Vote{UserID: userID, PostID: postID, Direction: dir}, nil
}

// CreateVote inserts a vote with primary key and foreign key checks.
func (s *Store) CreateVote(_ context.Context, vote *model.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !vote.Direction.Valid() {
		return repository.ErrInvalidVote
	}
	key := voteKey{vote.UserID, vote.PostID}
	if _, ok := s.votes[key]; ok {
		return repository.ErrVoteExists
	}
	if _, ok := s.users[vote.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	if _, ok := s.posts[vote.PostID]; !ok {
		return repository.ErrPostNotFound
	}

	s.votes[key] = vote.Direction
	return nil
}

// UpdateVote changes the direction of an existing vote.
func (s *Store) UpdateVote(_ context.Context, vote *model.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !vote.Direction.Valid() {
		return repository.ErrInvalidVote
	}
	key := voteKey{vote.UserID, vote.PostID}
	if _, ok := s.votes[key]; !ok {
		return repository.ErrVoteNotFound
	}
	s.votes[key] = vote.Direction
	return nil
}

// DeleteVote removes the vote userID holds on postID.
func (s *Store) DeleteVote(_ context.Context, userID, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey{userID, postID}
	if _, ok := s.votes[key]; !ok {
		return repository.ErrVoteNotFound
	}
	delete(s.votes, key)
	return nil
}

// VoteCount returns the number of stored vote rows.
func (s *Store) VoteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.votes)
}

func (s *Store) deletePostLocked(id string) {
	delete(s.posts, id)
	for key := range s.votes {
		if key.postID == id {
			delete(s.votes, key)
		}
	}
}

func (s *Store) viewLocked(post model.Post) *model.Post {
	if owner, ok := s.users[post.OwnerID]; ok {
		post.Owner = &owner
	}
	for key, dir := range s.votes {
		if key.postID == post.ID {
			post.VoteCount++
			post.Score += int64(dir)
		}
	}
	return &post
}
