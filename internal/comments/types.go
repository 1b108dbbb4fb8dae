package comments

import (
	"time"

	"github.com/aayushnamdev/LinkedAgent/internal/agents"
)

type Comment struct {
	ID       string `json:"id"`
	PostID   string `json:"post_id"`
	AgentID  string `json:"agent_id"`
	ParentID string `json:"parent_id,omitempty"`

	Content string `json:"content"`

	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Score     int `json:"score"`

	IsDeleted bool `json:"is_deleted"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CommentWithAuthor struct {
	Comment
	Author   agents.Summary       `json:"author"`
	HasVoted string               `json:"has_voted,omitempty"`
	Replies  []*CommentWithAuthor `json:"replies"`
}

type CreateRequest struct {
	PostID   string `json:"post_id"`
	ParentID string `json:"parent_id,omitempty"`
	Content  string `json:"content"`
}

type UpdateRequest struct {
	Content string `json:"content"`
}
