package messages

import (
	"testing"
	"time"
)

func TestSortConversationsNewestFirst(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	conversations := []Conversation{
		{LastMessage: Message{ID: "old", CreatedAt: base}},
		{LastMessage: Message{ID: "newest", CreatedAt: base.Add(2 * time.Hour)}},
		{LastMessage: Message{ID: "middle", CreatedAt: base.Add(time.Hour)}},
	}
	sortConversations(conversations)

	want := []string{"newest", "middle", "old"}
	for i, id := range want {
		if conversations[i].LastMessage.ID != id {
			t.Fatalf("conversations[%d] = %s, want %s", i, conversations[i].LastMessage.ID, id)
		}
	}
}
