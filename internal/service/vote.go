package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/socialvote/socialvote/internal/metrics"
	"github.com/socialvote/socialvote/internal/model"
	"github.com/socialvote/socialvote/internal/repository"
)

// maxCastAttempts bounds how often Cast re-reads the row after losing a
// race with a concurrent insert or delete of the same vote.
const maxCastAttempts = 3

// CastResult is the stored vote after a cast and what the cast did to it.
type CastResult struct {
	Vote    *model.Vote
	Outcome model.VoteOutcome
}

// VoteService implements the per (user, post) vote state machine.
type VoteService struct {
	votes   VoteStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewVoteService creates a new VoteService.
func NewVoteService(votes VoteStore, recorder metrics.Recorder, logger *slog.Logger) *VoteService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VoteService{
		votes:   votes,
		metrics: recorder,
		logger:  logger,
	}
}

// Cast records userID's vote on postID.
//
//   - no row: insert, outcome created
//   - same direction: no write, outcome unchanged
//   - other direction: update in place, outcome updated
//
// An insert that loses to a concurrent insert re-enters as an update, and
// an update that loses to a concurrent delete re-enters as an insert.
// A missing post surfaces through the insert's foreign key; an existing
// vote implies an existing post because deleting a post cascades.
func (s *VoteService) Cast(ctx context.Context, userID, postID string, dir model.VoteDirection) (*CastResult, error) {
	if !dir.Valid() {
		return nil, ErrInvalidVoteDirection
	}

	want := &model.Vote{UserID: userID, PostID: postID, Direction: dir}

	for attempt := 1; attempt <= maxCastAttempts; attempt++ {
		if attempt > 1 {
			s.metrics.IncVoteRetry()
		}

		outcome, err := s.castOnce(ctx, want)
		if err == nil {
			s.metrics.IncVoteCast(string(outcome))
			s.logger.Info("vote_cast",
				"user_id", userID,
				"post_id", postID,
				"vote_dir", int(dir),
				"outcome", outcome,
			)
			return &CastResult{Vote: want, Outcome: outcome}, nil
		}
		if !errors.Is(err, errCastRace) {
			return nil, err
		}
	}

	s.metrics.IncVoteConflict()
	s.logger.Warn("vote_cast_conflict", "user_id", userID, "post_id", postID, "attempts", maxCastAttempts)
	return nil, ErrVoteConflict
}

// errCastRace signals that the row changed between read and write.
var errCastRace = errors.New("vote changed between read and write")

func (s *VoteService) castOnce(ctx context.Context, want *model.Vote) (model.VoteOutcome, error) {
	current, err := s.votes.GetVote(ctx, want.UserID, want.PostID)
	switch {
	case errors.Is(err, repository.ErrVoteNotFound):
		return s.insert(ctx, want)
	case err != nil:
		return "", fmt.Errorf("failed to get vote: %w", err)
	case current.Direction == want.Direction:
		return model.VoteUnchanged, nil
	}

	err = s.votes.UpdateVote(ctx, want)
	switch {
	case err == nil:
		return model.VoteUpdated, nil
	case errors.Is(err, repository.ErrVoteNotFound):
		return "", errCastRace
	case errors.Is(err, repository.ErrInvalidVote):
		return "", ErrInvalidVoteDirection
	default:
		return "", fmt.Errorf("failed to update vote: %w", err)
	}
}

func (s *VoteService) insert(ctx context.Context, want *model.Vote) (model.VoteOutcome, error) {
	err := s.votes.CreateVote(ctx, want)
	switch {
	case err == nil:
		return model.VoteCreated, nil
	case errors.Is(err, repository.ErrVoteExists):
		return "", errCastRace
	case errors.Is(err, repository.ErrPostNotFound):
		return "", ErrTargetNotFound
	case errors.Is(err, repository.ErrUserNotFound):
		return "", ErrUnauthorized
	case errors.Is(err, repository.ErrInvalidVote):
		return "", ErrInvalidVoteDirection
	default:
		return "", fmt.Errorf("failed to create vote: %w", err)
	}
}

// Retract deletes userID's vote on postID.
func (s *VoteService) Retract(ctx context.Context, userID, postID string) error {
	if err := s.votes.DeleteVote(ctx, userID, postID); err != nil {
		if errors.Is(err, repository.ErrVoteNotFound) {
			return ErrVoteNotFound
		}
		return fmt.Errorf("failed to delete vote: %w", err)
	}

	s.metrics.IncVoteRetracted()
	s.logger.Info("vote_retracted", "user_id", userID, "post_id", postID)

	return nil
}

// Get returns userID's current vote on postID.
func (s *VoteService) Get(ctx context.Context, userID, postID string) (*model.Vote, error) {
	vote, err := s.votes.GetVote(ctx, userID, postID)
	if err != nil {
		if errors.Is(err, repository.ErrVoteNotFound) {
			return nil, ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return vote, nil
}
