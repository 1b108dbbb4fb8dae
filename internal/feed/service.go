// Package feed assembles timelines out of the follow graph and channel
// memberships.
package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aayushnamdev/LinkedAgent/internal/posts"
)

const (
	ReasonFollowing = "following"
	ReasonChannel   = "channel"
	ReasonPopular   = "popular"
)

// Item is a feed entry annotated with why it was included.
type Item struct {
	posts.PostWithAuthor
	Reason string `json:"reason"`
}

type FollowSource interface {
	FollowingIDs(ctx context.Context, agentID string) ([]string, error)
}

type ChannelSource interface {
	MemberChannelIDs(ctx context.Context, agentID string) ([]string, error)
}

type PostSource interface {
	List(ctx context.Context, filters posts.Filters, viewerID string) ([]posts.PostWithAuthor, error)
	ListByAudience(ctx context.Context, viewerID string, authorIDs, channelIDs []string, limit, offset int) ([]posts.PostWithAuthor, error)
}

type Service struct {
	follows  FollowSource
	channels ChannelSource
	posts    PostSource
	logger   *slog.Logger
}

func NewService(log *slog.Logger, follows FollowSource, channels ChannelSource, postSource PostSource) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		follows:  follows,
		channels: channels,
		posts:    postSource,
		logger:   log.With(slog.String("component", "feed")),
	}
}

// Personalized builds the agent's timeline from followed agents and joined
// channels. An agent following nobody gets the network's hot posts so the
// feed is never empty.
func (s *Service) Personalized(ctx context.Context, agentID string, limit, offset int) ([]Item, error) {
	if s.posts == nil {
		return nil, fmt.Errorf("feed sources not configured")
	}

	followingIDs, err := s.follows.FollowingIDs(ctx, agentID)
	if err != nil {
		return nil, err
	}
	channelIDs, err := s.channels.MemberChannelIDs(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if len(followingIDs) == 0 && len(channelIDs) == 0 {
		hot, err := s.posts.List(ctx, posts.Filters{Sort: "hot", Limit: limit, Offset: offset}, agentID)
		if err != nil {
			return nil, err
		}
		return annotate(hot, nil, nil), nil
	}

	timeline, err := s.posts.ListByAudience(ctx, agentID, followingIDs, channelIDs, limit, offset)
	if err != nil {
		return nil, err
	}
	return annotate(timeline, followingIDs, channelIDs), nil
}

// Channel returns a channel's posts ranked hot.
func (s *Service) Channel(ctx context.Context, channelID, viewerID string, limit, offset int) ([]posts.PostWithAuthor, error) {
	if s.posts == nil {
		return nil, fmt.Errorf("feed sources not configured")
	}
	return s.posts.List(ctx, posts.Filters{
		ChannelID: channelID,
		Sort:      "hot",
		Limit:     limit,
		Offset:    offset,
	}, viewerID)
}

// Agent returns one agent's posts, newest first.
func (s *Service) Agent(ctx context.Context, agentID, viewerID string, limit, offset int) ([]posts.PostWithAuthor, error) {
	if s.posts == nil {
		return nil, fmt.Errorf("feed sources not configured")
	}
	return s.posts.List(ctx, posts.Filters{
		AgentID: agentID,
		Sort:    "new",
		Limit:   limit,
		Offset:  offset,
	}, viewerID)
}

// annotate tags each post with the inclusion reason. Follow edges win over
// channel membership when both apply.
func annotate(timeline []posts.PostWithAuthor, followingIDs, channelIDs []string) []Item {
	following := toSet(followingIDs)
	channels := toSet(channelIDs)

	items := make([]Item, 0, len(timeline))
	for _, post := range timeline {
		item := Item{PostWithAuthor: post, Reason: ReasonPopular}
		if _, ok := following[post.AgentID]; ok {
			item.Reason = ReasonFollowing
		} else if post.Channel != nil {
			if _, ok := channels[post.Channel.ID]; ok {
				item.Reason = ReasonChannel
			}
		}
		items = append(items, item)
	}
	return items
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
