package realtime

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrCredentialRequired is returned by Admit when the handshake carried no
// credential. The connection attempt is terminal; the client must reconnect
// with one.
var ErrCredentialRequired = fmt.Errorf("authentication token required")

type connection struct {
	id      string
	agentID string
	sender  Sender
	rooms   map[string]struct{}
}

// Hub tracks live connections and room membership, derives presence from
// personal-room occupancy, and fans typed payloads out to room members.
// All state is in-memory and scoped to the process lifetime; nothing here
// persists, retries, or queues.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[string]*connection
	rooms map[string]map[string]struct{}
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		logger: log.With(slog.String("component", "realtime")),
		conns:  map[string]*connection{},
		rooms:  map[string]map[string]struct{}{},
	}
}

// Admit registers a connection under the given agent id and auto-joins it to
// the agent's personal room. The agent id is whatever the handshake credential
// resolved to; the hub does not verify it. Returns the process-unique
// connection id. Multiple concurrent connections per agent are independent
// entries.
func (h *Hub) Admit(sender Sender, agentID string) (string, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return "", ErrCredentialRequired
	}
	if sender == nil {
		return "", fmt.Errorf("sender is required")
	}
	connID := uuid.NewString()
	personal := PersonalRoom(agentID)

	h.mu.Lock()
	conn := &connection{
		id:      connID,
		agentID: agentID,
		sender:  sender,
		rooms:   map[string]struct{}{},
	}
	h.conns[connID] = conn
	wasOnline := len(h.rooms[personal]) > 0
	h.joinLocked(conn, personal)
	var announce []Sender
	if !wasOnline {
		announce = h.sendersExceptLocked(connID)
	}
	h.mu.Unlock()

	h.logger.Info("connection admitted",
		slog.String("conn_id", connID),
		slog.String("agent_id", agentID))
	if announce != nil {
		h.emit(announce, EventAgentActive, PresencePayload{AgentID: agentID, IsActive: true})
	}
	return connID, nil
}

// Remove evicts the connection from every room it belonged to and returns
// those rooms. Idempotent; removing an unknown connection is a no-op. If the
// departure empties the agent's personal room, agent:inactive is announced to
// every remaining connection.
func (h *Hub) Remove(connID string) []string {
	h.mu.Lock()
	conn, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return nil
	}
	left := make([]string, 0, len(conn.rooms))
	for room := range conn.rooms {
		h.leaveLocked(conn, room)
		left = append(left, room)
	}
	delete(h.conns, connID)
	personal := PersonalRoom(conn.agentID)
	var announce []Sender
	if len(h.rooms[personal]) == 0 {
		announce = h.sendersExceptLocked(connID)
	}
	h.mu.Unlock()

	h.logger.Info("connection removed",
		slog.String("conn_id", connID),
		slog.String("agent_id", conn.agentID))
	if announce != nil {
		h.emit(announce, EventAgentInactive, PresencePayload{AgentID: conn.agentID, IsActive: false})
	}
	return left
}

// Join subscribes the connection to a room. Idempotent. Unknown connections
// are ignored; rooms are created implicitly on first join.
func (h *Hub) Join(connID, room string) {
	room = strings.TrimSpace(room)
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.conns[connID]
	if !ok {
		return
	}
	h.joinLocked(conn, room)
}

// Leave unsubscribes the connection from a room. No-op if not a member. A
// connection cannot leave its personal room; that membership lasts until
// disconnect.
func (h *Hub) Leave(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn, ok := h.conns[connID]
	if !ok {
		return
	}
	if room == PersonalRoom(conn.agentID) {
		return
	}
	h.leaveLocked(conn, room)
}

// MembersOf returns a snapshot of the room's member connection ids. Empty
// slice for a room with no members or that never existed.
func (h *Hub) MembersOf(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := h.rooms[room]
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// IsOnline reports whether the agent's personal room has at least one member.
func (h *Hub) IsOnline(agentID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[PersonalRoom(agentID)]) > 0
}

// ConnectedCount returns the number of currently admitted connections.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// DeliverToRoom pushes (event, data) to every current member of the room.
// Delivery is fire-and-forget: a failed send is logged and skipped, never
// retried, and never aborts delivery to the remaining members.
func (h *Hub) DeliverToRoom(room, event string, data any) {
	h.mu.RLock()
	members := h.rooms[room]
	targets := make([]Sender, 0, len(members))
	for id := range members {
		if conn, ok := h.conns[id]; ok {
			targets = append(targets, conn.sender)
		}
	}
	h.mu.RUnlock()
	h.emit(targets, event, data)
}

// DeliverToAll pushes (event, data) to every admitted connection regardless
// of room.
func (h *Hub) DeliverToAll(event string, data any) {
	h.mu.RLock()
	targets := make([]Sender, 0, len(h.conns))
	for _, conn := range h.conns {
		targets = append(targets, conn.sender)
	}
	h.mu.RUnlock()
	h.emit(targets, event, data)
}

// sendTo pushes directly to a single connection, bypassing rooms. Used for
// ping replies.
func (h *Hub) sendTo(connID, event string, data any) {
	h.mu.RLock()
	conn, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.emit([]Sender{conn.sender}, event, data)
}

func (h *Hub) agentOf(connID string) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.conns[connID]
	if !ok {
		return "", false
	}
	return conn.agentID, true
}

func (h *Hub) emit(targets []Sender, event string, data any) {
	for _, target := range targets {
		if err := target.Send(event, data); err != nil {
			h.logger.Warn("delivery skipped",
				slog.String("event", event),
				slog.Any("error", err))
		}
	}
}

func (h *Hub) joinLocked(conn *connection, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = map[string]struct{}{}
		h.rooms[room] = members
	}
	members[conn.id] = struct{}{}
	conn.rooms[room] = struct{}{}
}

func (h *Hub) leaveLocked(conn *connection, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, conn.id)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
	delete(conn.rooms, room)
}

// sendersExceptLocked snapshots every connected sender except the named
// connection. Presence changes are announced network-wide, mirroring the
// product's observed behavior.
func (h *Hub) sendersExceptLocked(exceptConnID string) []Sender {
	out := make([]Sender, 0, len(h.conns))
	for id, conn := range h.conns {
		if id == exceptConnID {
			continue
		}
		out = append(out, conn.sender)
	}
	return out
}
