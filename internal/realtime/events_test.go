package realtime

import (
	"encoding/json"
	"testing"
)

func TestHandleInboundSubscribeUnsubscribe(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	connID, _ := hub.Admit(&fakeSender{}, "alice")

	hub.HandleInbound(connID, Envelope{Event: EventSubscribe, Data: json.RawMessage(`"general"`)})
	if len(hub.MembersOf("general")) != 1 {
		t.Fatalf("expected subscribe to join room")
	}

	hub.HandleInbound(connID, Envelope{Event: EventUnsubscribe, Data: json.RawMessage(`"general"`)})
	if len(hub.MembersOf("general")) != 0 {
		t.Fatalf("expected unsubscribe to leave room")
	}
}

func TestHandleInboundTypingRoundTrip(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	aliceConn, _ := hub.Admit(&fakeSender{}, "alice")
	bob := &fakeSender{}
	if _, err := hub.Admit(bob, "bob"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	hub.HandleInbound(aliceConn, Envelope{
		Event: EventTyping,
		Data:  json.RawMessage(`{"recipientId":"bob","isTyping":true}`),
	})

	if got := bob.count(EventMessageTyping); got != 1 {
		t.Fatalf("expected one typing event for bob, got %d", got)
	}
	last, _ := bob.last()
	payload, ok := last.data.(TypingPayload)
	if !ok || payload.AgentID != "alice" || !payload.IsTyping {
		t.Fatalf("unexpected typing payload: %+v", last.data)
	}
}

func TestHandleInboundReadReceipt(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	bobConn, _ := hub.Admit(&fakeSender{}, "bob")
	alice := &fakeSender{}
	if _, err := hub.Admit(alice, "alice"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	hub.HandleInbound(bobConn, Envelope{
		Event: EventReadReceipt,
		Data:  json.RawMessage(`{"messageId":"m1","senderId":"alice"}`),
	})

	last, ok := alice.last()
	if !ok || last.event != EventMessageRead {
		t.Fatalf("expected read receipt for alice, got %+v", last)
	}
	payload, ok := last.data.(ReadReceiptPayload)
	if !ok || payload.MessageID != "m1" || payload.ReadBy != "bob" {
		t.Fatalf("unexpected receipt payload: %+v", last.data)
	}
}

func TestHandleInboundNotificationReadIsSink(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	aliceConn, _ := hub.Admit(&fakeSender{}, "alice")
	bob := &fakeSender{}
	if _, err := hub.Admit(bob, "bob"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	before := len(bob.events)

	hub.HandleInbound(aliceConn, Envelope{
		Event: EventNotificationRead,
		Data:  json.RawMessage(`{"notificationId":"n1"}`),
	})

	if len(bob.events) != before {
		t.Fatalf("notification:read must not fan out")
	}
}

func TestHandleInboundPing(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	sender := &fakeSender{}
	connID, _ := hub.Admit(sender, "alice")

	hub.HandleInbound(connID, Envelope{Event: EventPing})

	last, ok := sender.last()
	if !ok || last.event != EventPong {
		t.Fatalf("expected pong reply, got %+v", last)
	}
}

func TestHandleInboundUnknownEvent(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	connID, _ := hub.Admit(&fakeSender{}, "alice")
	// Must not panic or disconnect.
	hub.HandleInbound(connID, Envelope{Event: "no-such-event"})
	if hub.ConnectedCount() != 1 {
		t.Fatalf("unknown event must not drop the connection")
	}
}

func TestDecodeRoomKey(t *testing.T) {
	t.Parallel()

	if got := decodeRoomKey(json.RawMessage(`" general "`)); got != "general" {
		t.Fatalf("unexpected room key: %q", got)
	}
	if got := decodeRoomKey(json.RawMessage(`{"room":"channel:go"}`)); got != "channel:go" {
		t.Fatalf("unexpected room key: %q", got)
	}
	if got := decodeRoomKey(json.RawMessage(`42`)); got != "" {
		t.Fatalf("expected empty key for invalid payload, got %q", got)
	}
}
