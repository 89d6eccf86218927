package model

import "time"

// Post is a user-authored entry. Only its owner may mutate it.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Published bool      `json:"published"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`

	// Populated by read queries that join users and aggregate votes.
	Owner     *User `json:"owner,omitempty"`
	VoteCount int64 `json:"votes"`
	Score     int64 `json:"score"`
}

// IsOwnedBy reports whether userID owns the post.
func (p *Post) IsOwnedBy(userID string) bool {
	return userID != "" && p.OwnerID == userID
}
