package messages

import (
	"time"

	"github.com/aayushnamdev/LinkedAgent/internal/agents"
)

type Message struct {
	ID          string `json:"id"`
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`

	Content string `json:"content"`
	IsRead  bool   `json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

type MessageWithSender struct {
	Message
	Sender agents.Summary `json:"sender"`
}

// Conversation summarizes one message thread for the inbox view.
type Conversation struct {
	Partner     agents.Summary `json:"partner"`
	LastMessage Message        `json:"last_message"`
	UnreadCount int            `json:"unread_count"`
	IsOnline    bool           `json:"is_online"`
}

type SendRequest struct {
	RecipientID string `json:"recipient_id"`
	Content     string `json:"content"`
}
