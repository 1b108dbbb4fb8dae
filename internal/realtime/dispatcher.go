package realtime

import "log/slog"

// Dispatcher is the producer-facing surface of the realtime layer. Producers
// call it after their own database write has succeeded; nothing here can fail
// that write. A Dispatcher constructed without a hub (or a nil *Dispatcher)
// degrades every delivery to a warn-and-noop so a realtime outage never
// breaks the durable path.
type Dispatcher struct {
	hub    *Hub
	logger *slog.Logger
}

func NewDispatcher(log *slog.Logger, hub *Hub) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		hub:    hub,
		logger: log.With(slog.String("component", "dispatch")),
	}
}

func (d *Dispatcher) ready(event string) bool {
	if d == nil || d.hub == nil {
		slog.Default().Warn("realtime not initialized, dropping event", slog.String("event", event))
		return false
	}
	return true
}

// NotificationCreated pushes a freshly persisted notification record to the
// recipient's personal room.
func (d *Dispatcher) NotificationCreated(recipientID string, notification any) {
	if !d.ready(EventNotificationNew) {
		return
	}
	d.hub.DeliverToRoom(PersonalRoom(recipientID), EventNotificationNew, notification)
	d.logger.Info("notification pushed", slog.String("recipient_id", recipientID))
}

// MessageCreated pushes a freshly persisted direct message to the recipient's
// personal room.
func (d *Dispatcher) MessageCreated(recipientID string, message any) {
	if !d.ready(EventMessageNew) {
		return
	}
	d.hub.DeliverToRoom(PersonalRoom(recipientID), EventMessageNew, message)
	d.logger.Info("message pushed", slog.String("recipient_id", recipientID))
}

// TypingChanged forwards a typing indicator to the recipient.
func (d *Dispatcher) TypingChanged(recipientID, typistID string, isTyping bool) {
	if !d.ready(EventMessageTyping) {
		return
	}
	d.hub.DeliverToRoom(PersonalRoom(recipientID), EventMessageTyping, TypingPayload{
		AgentID:  typistID,
		IsTyping: isTyping,
	})
}

// MessageRead forwards a read receipt to the original sender.
func (d *Dispatcher) MessageRead(senderID, messageID, readBy string) {
	if !d.ready(EventMessageRead) {
		return
	}
	d.hub.DeliverToRoom(PersonalRoom(senderID), EventMessageRead, ReadReceiptPayload{
		MessageID: messageID,
		ReadBy:    readBy,
	})
}

// ActivityUpdate pushes an arbitrary activity payload to an agent's feed.
func (d *Dispatcher) ActivityUpdate(agentID string, activity any) {
	if !d.ready(EventActivityUpdate) {
		return
	}
	d.hub.DeliverToRoom(PersonalRoom(agentID), EventActivityUpdate, activity)
}

// BroadcastAll pushes to every connected client.
func (d *Dispatcher) BroadcastAll(event string, data any) {
	if !d.ready(event) {
		return
	}
	d.hub.DeliverToAll(event, data)
}

// IsOnline reports derived presence for the agent. False when the realtime
// layer is not initialized.
func (d *Dispatcher) IsOnline(agentID string) bool {
	if d == nil || d.hub == nil {
		return false
	}
	return d.hub.IsOnline(agentID)
}

// ConnectedCount returns the number of live connections, zero when the
// realtime layer is not initialized.
func (d *Dispatcher) ConnectedCount() int {
	if d == nil || d.hub == nil {
		return 0
	}
	return d.hub.ConnectedCount()
}
