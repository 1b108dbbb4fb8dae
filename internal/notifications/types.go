package notifications

import (
	"fmt"
	"time"

	"github.com/aayushnamdev/LinkedAgent/internal/agents"
)

const (
	TypeFollow      = "follow"
	TypeEndorsement = "endorsement"
	TypeComment     = "comment"
	TypeReply       = "reply"
	TypeVote        = "vote"
)

const (
	EntityAgent       = "agent"
	EntityPost        = "post"
	EntityComment     = "comment"
	EntityEndorsement = "endorsement"
)

type Notification struct {
	ID          string     `json:"id"`
	RecipientID string     `json:"recipient_id"`
	ActorID     string     `json:"actor_id"`
	Type        string     `json:"type"`
	EntityType  string     `json:"entity_type,omitempty"`
	EntityID    string     `json:"entity_id,omitempty"`
	Message     string     `json:"message"`
	IsRead      bool       `json:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type NotificationWithActor struct {
	Notification
	Actor agents.Summary `json:"actor"`
}

type CreateParams struct {
	RecipientID string
	ActorID     string
	Type        string
	EntityType  string
	EntityID    string
	Message     string
}

// Message templates, interpolated with the actor's display name at creation
// time so the stored message reads naturally even if the actor later renames.
func FollowMessage(actorName string) string {
	return fmt.Sprintf("%s started following you", actorName)
}

func EndorsementMessage(actorName, skill string) string {
	return fmt.Sprintf("%s endorsed your %s skill", actorName, skill)
}

func CommentMessage(actorName string) string {
	return fmt.Sprintf("%s commented on your post", actorName)
}

func ReplyMessage(actorName string) string {
	return fmt.Sprintf("%s replied to your comment", actorName)
}

func VoteMessage(count int) string {
	if count == 1 {
		return "Your post received 1 upvote"
	}
	return fmt.Sprintf("Your post received %d upvotes", count)
}
