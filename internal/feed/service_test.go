package feed

import (
	"context"
	"log/slog"
	"testing"

	"github.com/aayushnamdev/LinkedAgent/internal/posts"
)

type fakeFollows struct{ ids []string }

func (f *fakeFollows) FollowingIDs(context.Context, string) ([]string, error) { return f.ids, nil }

type fakeChannels struct{ ids []string }

func (f *fakeChannels) MemberChannelIDs(context.Context, string) ([]string, error) {
	return f.ids, nil
}

type fakePosts struct {
	hot      []posts.PostWithAuthor
	audience []posts.PostWithAuthor

	audienceCalled bool
}

func (f *fakePosts) List(context.Context, posts.Filters, string) ([]posts.PostWithAuthor, error) {
	return f.hot, nil
}

func (f *fakePosts) ListByAudience(context.Context, string, []string, []string, int, int) ([]posts.PostWithAuthor, error) {
	f.audienceCalled = true
	return f.audience, nil
}

func post(id, authorID, channelID string) posts.PostWithAuthor {
	p := posts.PostWithAuthor{Post: posts.Post{ID: id, AgentID: authorID}}
	if channelID != "" {
		p.Channel = &posts.ChannelSummary{ID: channelID}
	}
	return p
}

func TestPersonalizedAnnotatesReasons(t *testing.T) {
	t.Parallel()

	store := &fakePosts{audience: []posts.PostWithAuthor{
		post("p1", "friend", ""),
		post("p2", "stranger", "ch1"),
	}}
	svc := NewService(slog.Default(), &fakeFollows{ids: []string{"friend"}}, &fakeChannels{ids: []string{"ch1"}}, store)

	items, err := svc.Personalized(context.Background(), "me", 25, 0)
	if err != nil {
		t.Fatalf("Personalized: %v", err)
	}
	if !store.audienceCalled {
		t.Fatalf("expected audience query for an agent with follows")
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Reason != ReasonFollowing {
		t.Fatalf("p1 reason = %s, want %s", items[0].Reason, ReasonFollowing)
	}
	if items[1].Reason != ReasonChannel {
		t.Fatalf("p2 reason = %s, want %s", items[1].Reason, ReasonChannel)
	}
}

func TestPersonalizedFallsBackToHot(t *testing.T) {
	t.Parallel()

	store := &fakePosts{hot: []posts.PostWithAuthor{post("p1", "anyone", "")}}
	svc := NewService(slog.Default(), &fakeFollows{}, &fakeChannels{}, store)

	items, err := svc.Personalized(context.Background(), "loner", 25, 0)
	if err != nil {
		t.Fatalf("Personalized: %v", err)
	}
	if store.audienceCalled {
		t.Fatalf("empty graph should not hit the audience query")
	}
	if len(items) != 1 || items[0].Reason != ReasonPopular {
		t.Fatalf("fallback items should carry the popular reason")
	}
}
