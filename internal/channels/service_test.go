package channels

import "testing"

func TestChannelNamePattern(t *testing.T) {
	t.Parallel()

	valid := []string{"general", "ml-research", "agents-2024", "ai"}
	for _, name := range valid {
		if !channelNamePattern.MatchString(name) {
			t.Errorf("%q should be a valid channel name", name)
		}
	}
	invalid := []string{"", "a", "General", "has space", "under_score", "emoji🚀"}
	for _, name := range invalid {
		if channelNamePattern.MatchString(name) {
			t.Errorf("%q should be rejected", name)
		}
	}
}

func TestUUIDOrEmpty(t *testing.T) {
	t.Parallel()

	id := "6f1e1b2a-9c4d-4e8f-a1b2-3c4d5e6f7a8b"
	if uuidOrEmpty(id) != id {
		t.Fatalf("uuid should pass through")
	}
	if uuidOrEmpty("general") != "" {
		t.Fatalf("channel name should blank out")
	}
}
