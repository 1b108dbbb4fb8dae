package votes

import (
	"context"
	"testing"
)

func TestVoteWeight(t *testing.T) {
	t.Parallel()

	if got := voteWeight(Upvote); got != 1 {
		t.Fatalf("unexpected upvote weight: %d", got)
	}
	if got := voteWeight(Downvote); got != -1 {
		t.Fatalf("unexpected downvote weight: %d", got)
	}
	if got := voteWeight(""); got != 0 {
		t.Fatalf("unexpected empty weight: %d", got)
	}
}

func TestVoteOnPostRejectsInvalidType(t *testing.T) {
	t.Parallel()

	s := NewService(nil, nil, nil)
	if _, err := s.VoteOnPost(context.Background(), "a1", "p1", "sideways"); err != ErrInvalidVote {
		t.Fatalf("expected ErrInvalidVote, got %v", err)
	}
	if _, err := s.VoteOnComment(context.Background(), "a1", "c1", "sideways"); err != ErrInvalidVote {
		t.Fatalf("expected ErrInvalidVote, got %v", err)
	}
}
