package model

import "fmt"

// VoteDirection is a signed tri-state vote: -1 down, 0 neutral, +1 up.
// The earlier binary {0,1} domain is superseded by this one.
type VoteDirection int

const (
	VoteDown    VoteDirection = -1
	VoteNeutral VoteDirection = 0
	VoteUp      VoteDirection = 1
)

// Valid reports whether d is within {-1, 0, 1}.
func (d VoteDirection) Valid() bool {
	return d >= VoteDown && d <= VoteUp
}

// String returns a human readable name for the direction.
func (d VoteDirection) String() string {
	switch d {
	case VoteDown:
		return "down"
	case VoteNeutral:
		return "neutral"
	case VoteUp:
		return "up"
	default:
		return fmt.Sprintf("invalid(%d)", int(d))
	}
}

// Vote is the single row a user may hold for a post.
// A row with VoteNeutral still counts as having voted.
type Vote struct {
	UserID    string        `json:"user_id"`
	PostID    string        `json:"post_id"`
	Direction VoteDirection `json:"vote_dir"`
}

// VoteOutcome describes what a cast did to the stored row.
type VoteOutcome string

const (
	VoteCreated   VoteOutcome = "created"
	VoteUnchanged VoteOutcome = "unchanged"
	VoteUpdated   VoteOutcome = "updated"
)
