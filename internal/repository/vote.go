package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/socialvote/socialvote/internal/model"
)

// Common errors for vote repository operations.
var (
	ErrVoteNotFound = errors.New("vote not found")
	ErrVoteExists   = errors.New("vote already exists")
	ErrInvalidVote  = errors.New("vote direction out of range")
)

// GetVote returns the vote userID holds on postID.
func (r *Repository) GetVote(ctx context.Context, userID, postID string) (*model.Vote, error) {
	query := `
		SELECT user_id, post_id, vote_dir
		FROM votes
		WHERE user_id = $1 AND post_id = $2
	`

	var vote model.Vote
	var dir int16
	err := r.pool.QueryRow(ctx, query, userID, postID).Scan(
		&vote.UserID,
		&vote.PostID,
		&dir,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	vote.Direction = model.VoteDirection(dir)

	return &vote, nil
}

// CreateVote inserts a vote. The (user_id, post_id) primary key makes a
// concurrent duplicate fail with ErrVoteExists; a missing post or user
// fails with ErrPostNotFound or ErrUserNotFound.
func (r *Repository) CreateVote(ctx context.Context, vote *model.Vote) error {
	query := `
		INSERT INTO votes (user_id, post_id, vote_dir)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, vote.UserID, vote.PostID, int(vote.Direction))
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return ErrVoteExists
		case isForeignKeyViolation(err):
			if violatedColumn(err, "user_id") {
				return ErrUserNotFound
			}
			return ErrPostNotFound
		case isCheckViolation(err):
			return ErrInvalidVote
		}
		return fmt.Errorf("failed to create vote: %w", err)
	}

	return nil
}

// UpdateVote changes the direction of an existing vote.
func (r *Repository) UpdateVote(ctx context.Context, vote *model.Vote) error {
	query := `
		UPDATE votes
		SET vote_dir = $3
		WHERE user_id = $1 AND post_id = $2
	`

	result, err := r.pool.Exec(ctx, query, vote.UserID, vote.PostID, int(vote.Direction))
	if err != nil {
		if isCheckViolation(err) {
			return ErrInvalidVote
		}
		return fmt.Errorf("failed to update vote: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrVoteNotFound
	}

	return nil
}

// DeleteVote removes the vote userID holds on postID.
func (r *Repository) DeleteVote(ctx context.Context, userID, postID string) error {
	query := `DELETE FROM votes WHERE user_id = $1 AND post_id = $2`

	result, err := r.pool.Exec(ctx, query, userID, postID)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrVoteNotFound
	}

	return nil
}
