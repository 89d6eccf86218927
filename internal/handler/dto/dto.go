// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/socialvote/socialvote/internal/model"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewError builds an ErrorResponse.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// CreateUserRequest represents the request body for registering a user.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents a user in API responses. It has no password field.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse is returned by POST /login.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// PostRequest represents the body of POST /posts and PUT /posts/{id}.
type PostRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published *bool  `json:"published,omitempty"`
}

// PostResponse represents a post with its owner and vote aggregates.
type PostResponse struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Published bool          `json:"published"`
	OwnerID   string        `json:"owner_id"`
	CreatedAt time.Time     `json:"created_at"`
	Owner     *UserResponse `json:"owner,omitempty"`
	Votes     int64         `json:"votes"`
	Score     int64         `json:"score"`
}

// PostListResponse wraps a page of posts.
type PostListResponse struct {
	Data []PostResponse `json:"data"`
}

// VoteRequest represents the body of POST /votes. Direction is a pointer
// so a missing field is distinguishable from an explicit 0.
type VoteRequest struct {
	PostID    string `json:"post_id"`
	Direction *int   `json:"vote_dir"`
}

// RetractVoteRequest represents the body of DELETE /votes.
type RetractVoteRequest struct {
	PostID string `json:"post_id"`
}

// VoteResponse represents a stored vote.
type VoteResponse struct {
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	Direction int    `json:"vote_dir"`
	Outcome   string `json:"outcome,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// ToPostResponse converts a Post model to PostResponse DTO.
func ToPostResponse(post *model.Post) PostResponse {
	return PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Published: post.Published,
		OwnerID:   post.OwnerID,
		CreatedAt: post.CreatedAt,
		Owner:     ToUserResponse(post.Owner),
		Votes:     post.VoteCount,
		Score:     post.Score,
	}
}

// ToPostListResponse converts a page of posts.
func ToPostListResponse(posts []*model.Post) *PostListResponse {
	data := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		data = append(data, ToPostResponse(post))
	}
	return &PostListResponse{Data: data}
}

// ToVoteResponse converts a Vote model, with an optional cast outcome.
func ToVoteResponse(vote *model.Vote, outcome model.VoteOutcome) *VoteResponse {
	resp := &VoteResponse{
		PostID:    vote.PostID,
		UserID:    vote.UserID,
		Direction: int(vote.Direction),
		Outcome:   string(outcome),
	}
	switch outcome {
	case model.VoteCreated:
		resp.Message = "vote recorded"
	case model.VoteUpdated:
		resp.Message = "vote changed"
	case model.VoteUnchanged:
		resp.Message = "vote already recorded"
	}
	return resp
}
