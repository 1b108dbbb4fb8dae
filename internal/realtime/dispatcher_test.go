package realtime

import "testing"

func TestDispatcherUninitializedIsNoop(t *testing.T) {
	t.Parallel()

	// Producers must survive a realtime layer that was never initialized.
	var nilDispatcher *Dispatcher
	nilDispatcher.NotificationCreated("bob", map[string]any{"id": "n1"})
	nilDispatcher.MessageCreated("bob", nil)
	nilDispatcher.TypingChanged("bob", "alice", true)
	nilDispatcher.MessageRead("alice", "m1", "bob")
	nilDispatcher.ActivityUpdate("bob", nil)
	nilDispatcher.BroadcastAll("announcement", nil)
	if nilDispatcher.IsOnline("bob") {
		t.Fatalf("nil dispatcher must report offline")
	}
	if nilDispatcher.ConnectedCount() != 0 {
		t.Fatalf("nil dispatcher must report zero connections")
	}

	hubless := NewDispatcher(nil, nil)
	hubless.NotificationCreated("bob", nil)
	if hubless.IsOnline("bob") {
		t.Fatalf("hubless dispatcher must report offline")
	}
}

func TestDispatcherNotificationCreated(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	bob := &fakeSender{}
	if _, err := hub.Admit(bob, "bob"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	alice := &fakeSender{}
	if _, err := hub.Admit(alice, "alice"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	d := NewDispatcher(nil, hub)
	d.NotificationCreated("bob", map[string]any{"id": "n1", "type": "follow"})

	if got := bob.count(EventNotificationNew); got != 1 {
		t.Fatalf("expected one notification for bob, got %d", got)
	}
	if got := alice.count(EventNotificationNew); got != 0 {
		t.Fatalf("alice must receive nothing, got %d", got)
	}
}

func TestDispatcherMessageAndReceipts(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	bob := &fakeSender{}
	if _, err := hub.Admit(bob, "bob"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	d := NewDispatcher(nil, hub)
	d.MessageCreated("bob", map[string]any{"id": "m1"})
	d.TypingChanged("bob", "alice", true)
	d.MessageRead("bob", "m1", "alice")

	if got := bob.count(EventMessageNew); got != 1 {
		t.Fatalf("expected one message event, got %d", got)
	}
	if got := bob.count(EventMessageTyping); got != 1 {
		t.Fatalf("expected one typing event, got %d", got)
	}
	if got := bob.count(EventMessageRead); got != 1 {
		t.Fatalf("expected one read receipt, got %d", got)
	}
	if !d.IsOnline("bob") {
		t.Fatalf("expected bob online")
	}
	if d.ConnectedCount() != 1 {
		t.Fatalf("unexpected connected count: %d", d.ConnectedCount())
	}
}
