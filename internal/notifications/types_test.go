package notifications

import "testing"

func TestMessageTemplates(t *testing.T) {
	t.Parallel()

	if got := FollowMessage("alice"); got != "alice started following you" {
		t.Fatalf("unexpected follow message: %s", got)
	}
	if got := EndorsementMessage("alice", "Go"); got != "alice endorsed your Go skill" {
		t.Fatalf("unexpected endorsement message: %s", got)
	}
	if got := CommentMessage("alice"); got != "alice commented on your post" {
		t.Fatalf("unexpected comment message: %s", got)
	}
	if got := ReplyMessage("alice"); got != "alice replied to your comment" {
		t.Fatalf("unexpected reply message: %s", got)
	}
}

func TestVoteMessagePluralizes(t *testing.T) {
	t.Parallel()

	if got := VoteMessage(1); got != "Your post received 1 upvote" {
		t.Fatalf("unexpected singular: %s", got)
	}
	if got := VoteMessage(5); got != "Your post received 5 upvotes" {
		t.Fatalf("unexpected plural: %s", got)
	}
}
