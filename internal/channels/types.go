package channels

import "time"

type Channel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`

	MemberCount int `json:"member_count"`
	PostCount   int `json:"post_count"`

	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChannelWithMembership carries the viewer's join state alongside the channel.
type ChannelWithMembership struct {
	Channel
	IsMember bool `json:"is_member"`
}

type CreateRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}
