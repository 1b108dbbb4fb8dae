package realtime

import (
	"encoding/json"
	"log/slog"
	"strings"
)

// inboundHandler processes one client frame. Handlers run synchronously on
// the connection's read loop; none of them block or touch external I/O.
type inboundHandler func(h *Hub, connID, agentID string, data json.RawMessage)

// inboundHandlers is the dispatch table for client-originated events: one
// handler per event name, evaluated per frame.
var inboundHandlers = map[string]inboundHandler{
	EventSubscribe:        handleSubscribe,
	EventUnsubscribe:      handleUnsubscribe,
	EventTyping:           handleTyping,
	EventReadReceipt:      handleReadReceipt,
	EventNotificationRead: handleNotificationRead,
	EventPing:             handlePing,
}

// HandleInbound routes one decoded client frame. Unknown events are logged
// and dropped; they never terminate the connection.
func (h *Hub) HandleInbound(connID string, frame Envelope) {
	agentID, ok := h.agentOf(connID)
	if !ok {
		return
	}
	handler, ok := inboundHandlers[frame.Event]
	if !ok {
		h.logger.Warn("unknown inbound event",
			slog.String("event", frame.Event),
			slog.String("agent_id", agentID))
		return
	}
	handler(h, connID, agentID, frame.Data)
}

func handleSubscribe(h *Hub, connID, agentID string, data json.RawMessage) {
	room := decodeRoomKey(data)
	if room == "" {
		return
	}
	h.Join(connID, room)
	h.logger.Info("subscribed",
		slog.String("agent_id", agentID),
		slog.String("room", room))
}

func handleUnsubscribe(h *Hub, connID, agentID string, data json.RawMessage) {
	room := decodeRoomKey(data)
	if room == "" {
		return
	}
	h.Leave(connID, room)
	h.logger.Info("unsubscribed",
		slog.String("agent_id", agentID),
		slog.String("room", room))
}

func handleTyping(h *Hub, connID, agentID string, data json.RawMessage) {
	var req struct {
		RecipientID string `json:"recipientId"`
		IsTyping    bool   `json:"isTyping"`
	}
	if err := json.Unmarshal(data, &req); err != nil || strings.TrimSpace(req.RecipientID) == "" {
		return
	}
	h.DeliverToRoom(PersonalRoom(req.RecipientID), EventMessageTyping, TypingPayload{
		AgentID:  agentID,
		IsTyping: req.IsTyping,
	})
}

func handleReadReceipt(h *Hub, connID, agentID string, data json.RawMessage) {
	var req struct {
		MessageID string `json:"messageId"`
		SenderID  string `json:"senderId"`
	}
	if err := json.Unmarshal(data, &req); err != nil || strings.TrimSpace(req.SenderID) == "" {
		return
	}
	h.DeliverToRoom(PersonalRoom(req.SenderID), EventMessageRead, ReadReceiptPayload{
		MessageID: req.MessageID,
		ReadBy:    agentID,
	})
}

// handleNotificationRead is an acknowledgement sink: the read state itself is
// persisted over HTTP, so the frame is only logged.
func handleNotificationRead(h *Hub, connID, agentID string, data json.RawMessage) {
	var req struct {
		NotificationID string `json:"notificationId"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	h.logger.Info("notification read",
		slog.String("agent_id", agentID),
		slog.String("notification_id", req.NotificationID))
}

func handlePing(h *Hub, connID, agentID string, data json.RawMessage) {
	h.sendTo(connID, EventPong, nil)
}

// decodeRoomKey accepts either a bare JSON string or {"room": "..."}.
func decodeRoomKey(data json.RawMessage) string {
	var room string
	if err := json.Unmarshal(data, &room); err == nil {
		return strings.TrimSpace(room)
	}
	var req struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return ""
	}
	return strings.TrimSpace(req.Room)
}
