package realtime

import (
	"fmt"
	"sync"
	"testing"
)

type sentEvent struct {
	event string
	data  any
}

type fakeSender struct {
	mu     sync.Mutex
	events []sentEvent
	fail   bool
}

func (f *fakeSender) Send(event string, data any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("transport error")
	}
	f.events = append(f.events, sentEvent{event: event, data: data})
	return nil
}

func (f *fakeSender) count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.event == event {
			n++
		}
	}
	return n
}

func (f *fakeSender) last() (sentEvent, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return sentEvent{}, false
	}
	return f.events[len(f.events)-1], true
}

func TestAdmitJoinsPersonalRoom(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	sender := &fakeSender{}
	connID, err := hub.Admit(sender, "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !hub.IsOnline("alice") {
		t.Fatalf("expected alice online after admission")
	}
	members := hub.MembersOf(PersonalRoom("alice"))
	if len(members) != 1 || members[0] != connID {
		t.Fatalf("unexpected personal room members: %v", members)
	}
	if hub.ConnectedCount() != 1 {
		t.Fatalf("unexpected connected count: %d", hub.ConnectedCount())
	}
}

func TestAdmitRequiresCredential(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	if _, err := hub.Admit(&fakeSender{}, "  "); err != ErrCredentialRequired {
		t.Fatalf("expected ErrCredentialRequired, got %v", err)
	}
	if hub.ConnectedCount() != 0 {
		t.Fatalf("rejected connection must not be registered")
	}
}

func TestRemoveCleansEveryRoom(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	connID, err := hub.Admit(&fakeSender{}, "carol")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	hub.Join(connID, "general")

	left := hub.Remove(connID)
	if len(left) != 2 {
		t.Fatalf("expected two rooms left, got %v", left)
	}
	if len(hub.MembersOf(PersonalRoom("carol"))) != 0 {
		t.Fatalf("personal room must be empty after disconnect")
	}
	if len(hub.MembersOf("general")) != 0 {
		t.Fatalf("ad-hoc room must be empty after disconnect")
	}
	if hub.IsOnline("carol") {
		t.Fatalf("carol must be offline after disconnect")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	connID, _ := hub.Admit(&fakeSender{}, "alice")
	hub.Remove(connID)
	if left := hub.Remove(connID); left != nil {
		t.Fatalf("second remove must be a no-op, got %v", left)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	connID, _ := hub.Admit(&fakeSender{}, "alice")
	hub.Join(connID, "general")
	hub.Join(connID, "general")
	members := hub.MembersOf("general")
	if len(members) != 1 || members[0] != connID {
		t.Fatalf("unexpected members after double join: %v", members)
	}
}

func TestLeaveCannotDropPersonalRoom(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	connID, _ := hub.Admit(&fakeSender{}, "alice")
	hub.Leave(connID, PersonalRoom("alice"))
	if len(hub.MembersOf(PersonalRoom("alice"))) != 1 {
		t.Fatalf("personal room membership must last until disconnect")
	}
}

func TestPresenceTransitions(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	observer := &fakeSender{}
	if _, err := hub.Admit(observer, "observer"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	c1, _ := hub.Admit(&fakeSender{}, "alice")
	if got := observer.count(EventAgentActive); got != 1 {
		t.Fatalf("expected one agent:active, got %d", got)
	}

	// Second connection for an already-online agent is silent.
	c2, _ := hub.Admit(&fakeSender{}, "alice")
	if got := observer.count(EventAgentActive); got != 1 {
		t.Fatalf("presence flap on second connection: %d events", got)
	}

	// Dropping one of two connections is silent.
	hub.Remove(c2)
	if got := observer.count(EventAgentInactive); got != 0 {
		t.Fatalf("presence flap on partial disconnect: %d events", got)
	}
	if !hub.IsOnline("alice") {
		t.Fatalf("alice must remain online with one connection left")
	}

	hub.Remove(c1)
	if got := observer.count(EventAgentInactive); got != 1 {
		t.Fatalf("expected one agent:inactive, got %d", got)
	}
	last, ok := observer.last()
	if !ok || last.event != EventAgentInactive {
		t.Fatalf("unexpected last event: %+v", last)
	}
	payload, ok := last.data.(PresencePayload)
	if !ok || payload.AgentID != "alice" || payload.IsActive {
		t.Fatalf("unexpected presence payload: %+v", last.data)
	}
}

func TestPresenceNotEchoedToSelf(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	sender := &fakeSender{}
	if _, err := hub.Admit(sender, "alice"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := sender.count(EventAgentActive); got != 0 {
		t.Fatalf("connection must not receive its own presence event: %d", got)
	}
}

func TestDeliverToRoomTargeted(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	alice := &fakeSender{}
	bob := &fakeSender{}
	if _, err := hub.Admit(alice, "alice"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := hub.Admit(bob, "bob"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	payload := map[string]any{"id": "n1", "type": "follow", "message": "alice started following you"}
	hub.DeliverToRoom(PersonalRoom("bob"), EventNotificationNew, payload)

	if got := bob.count(EventNotificationNew); got != 1 {
		t.Fatalf("expected exactly one notification for bob, got %d", got)
	}
	if got := alice.count(EventNotificationNew); got != 0 {
		t.Fatalf("alice must receive nothing, got %d", got)
	}
}

func TestDeliverToRoomSkipsFailedSends(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	broken := &fakeSender{fail: true}
	healthy := &fakeSender{}
	c1, _ := hub.Admit(broken, "alice")
	c2, _ := hub.Admit(healthy, "bob")
	hub.Join(c1, "general")
	hub.Join(c2, "general")

	hub.DeliverToRoom("general", EventActivityUpdate, "hello")

	if got := healthy.count(EventActivityUpdate); got != 1 {
		t.Fatalf("failed peer must not abort delivery, got %d", got)
	}
}

func TestDeliverToUnknownRoom(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	// Must not panic and must not invent members.
	hub.DeliverToRoom("never-created", EventActivityUpdate, nil)
	if len(hub.MembersOf("never-created")) != 0 {
		t.Fatalf("unknown room must stay empty")
	}
}

func TestDeliverToAll(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil)
	senders := []*fakeSender{{}, {}, {}}
	for i, s := range senders {
		if _, err := hub.Admit(s, fmt.Sprintf("agent-%d", i)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	hub.DeliverToAll("announcement", "hi")
	for i, s := range senders {
		if got := s.count("announcement"); got != 1 {
			t.Fatalf("sender %d: expected one delivery, got %d", i, got)
		}
	}
}
