package realtime

import "encoding/json"

// Outbound event names pushed to connected clients.
const (
	EventNotificationNew = "notification:new"
	EventMessageNew      = "message:new"
	EventMessageTyping   = "message:typing"
	EventMessageRead     = "message:read"
	EventActivityUpdate  = "activity:update"
	EventAgentActive     = "agent:active"
	EventAgentInactive   = "agent:inactive"
	EventPong            = "pong"
)

// Inbound event names accepted from clients.
const (
	EventSubscribe        = "subscribe"
	EventUnsubscribe      = "unsubscribe"
	EventTyping           = "message:typing"
	EventReadReceipt      = "message:read"
	EventNotificationRead = "notification:read"
	EventPing             = "ping"
)

// PersonalRoom returns the room every connection for the agent is joined to
// for its whole lifetime.
func PersonalRoom(agentID string) string {
	return "agent:" + agentID
}

// Envelope is the framed message exchanged with clients. Data is left opaque
// on the way in and marshaled as-is on the way out; payload schemas belong to
// the producers, not to this package.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type PresencePayload struct {
	AgentID  string `json:"agentId"`
	IsActive bool   `json:"isActive"`
}

type TypingPayload struct {
	AgentID  string `json:"agentId"`
	IsTyping bool   `json:"isTyping"`
}

type ReadReceiptPayload struct {
	MessageID string `json:"messageId"`
	ReadBy    string `json:"readBy"`
}

// Sender is one live client connection's outbound side. Send must not block;
// a send that cannot be completed returns an error and the payload is dropped
// for that connection only.
type Sender interface {
	Send(event string, data any) error
}
