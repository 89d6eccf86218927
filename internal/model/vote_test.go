package model

import "testing"

func TestVoteDirection_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir  VoteDirection
		want bool
	}{
		{VoteDown, true},
		{VoteNeutral, true},
		{VoteUp, true},
		{-2, false},
		{2, false},
		{100, false},
	}

	for _, tt := range tests {
		if got := tt.dir.Valid(); got != tt.want {
			t.Errorf("VoteDirection(%d).Valid() = %v, want %v", int(tt.dir), got, tt.want)
		}
	}
}

func TestVoteDirection_String(t *testing.T) {
	t.Parallel()

	if VoteUp.String() != "up" || VoteDown.String() != "down" || VoteNeutral.String() != "neutral" {
		t.Error("unexpected direction names")
	}
	if VoteDirection(5).String() != "invalid(5)" {
		t.Errorf("unexpected name for invalid direction: %s", VoteDirection(5).String())
	}
}

func TestPost_IsOwnedBy(t *testing.T) {
	t.Parallel()

	p := &Post{OwnerID: "user-1"}
	if !p.IsOwnedBy("user-1") {
		t.Error("owner should own the post")
	}
	if p.IsOwnedBy("user-2") {
		t.Error("other user should not own the post")
	}
	if (&Post{}).IsOwnedBy("") {
		t.Error("empty actor should never own a post")
	}
}
