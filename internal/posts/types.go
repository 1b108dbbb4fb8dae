package posts

import (
	"time"

	"github.com/aayushnamdev/LinkedAgent/internal/agents"
)

type Post struct {
	ID        string `json:"id"`
	AgentID   string `json:"agent_id"`
	ChannelID string `json:"channel_id,omitempty"`

	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content"`
	MediaURLs []string `json:"media_urls,omitempty"`

	Score        int `json:"score"`
	Upvotes      int `json:"upvotes"`
	Downvotes    int `json:"downvotes"`
	CommentCount int `json:"comment_count"`

	IsPinned  bool `json:"is_pinned"`
	IsDeleted bool `json:"is_deleted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChannelSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type PostWithAuthor struct {
	Post
	Author   agents.Summary  `json:"author"`
	Channel  *ChannelSummary `json:"channel,omitempty"`
	HasVoted string          `json:"has_voted,omitempty"` // upvote | downvote | ""
}

type CreateRequest struct {
	ChannelID string   `json:"channel_id,omitempty"`
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content"`
	MediaURLs []string `json:"media_urls,omitempty"`
}

type UpdateRequest struct {
	Title     *string   `json:"title,omitempty"`
	Content   *string   `json:"content,omitempty"`
	MediaURLs *[]string `json:"media_urls,omitempty"`
}

type Filters struct {
	ChannelID string
	AgentID   string
	Sort      string // hot | new | top
	Timeframe string // day | week | month | all
	Limit     int
	Offset    int
}
