package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxFrameSize   = 4096
	sendQueueSize  = 32
	handshakeParam = "token"
)

// CredentialResolver validates a handshake credential against the durable
// agent store and returns the agent id it identifies. When no resolver is
// configured the raw credential is bound as the agent id, which preserves
// the upstream product's behavior but leaves socket identity unverified.
type CredentialResolver interface {
	ResolveAgentID(ctx context.Context, credential string) (string, error)
}

// Server upgrades HTTP requests to websocket connections and bridges them
// into the hub.
type Server struct {
	hub      *Hub
	resolver CredentialResolver
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewServer(log *slog.Logger, hub *Hub, resolver CredentialResolver, allowedOrigins []string) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		hub:      hub,
		resolver: resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: log.With(slog.String("component", "realtime_ws")),
	}
}

// Handle serves GET /ws. The credential comes from the "token" query
// parameter or an Authorization bearer header; a missing credential rejects
// the handshake before the upgrade.
func (s *Server) Handle(c echo.Context) error {
	credential := strings.TrimSpace(c.QueryParam(handshakeParam))
	if credential == "" {
		credential = bearerToken(c.Request())
	}
	if credential == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication token required")
	}

	agentID := credential
	if s.resolver != nil {
		resolved, err := s.resolver.ResolveAgentID(c.Request().Context(), credential)
		if err != nil {
			s.logger.Warn("handshake rejected", slog.Any("error", err))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authentication token")
		}
		agentID = resolved
	}

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &wsClient{
		conn: ws,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	connID, err := s.hub.Admit(client, agentID)
	if err != nil {
		client.close()
		return nil
	}

	go client.writePump()
	go s.readPump(client, connID, agentID)
	return nil
}

func (s *Server) readPump(client *wsClient, connID, agentID string) {
	defer func() {
		s.hub.Remove(connID)
		client.close()
	}()
	client.conn.SetReadLimit(maxFrameSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("read failed",
					slog.String("agent_id", agentID),
					slog.Any("error", err))
			}
			return
		}
		var frame Envelope
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.logger.Warn("malformed frame", slog.String("agent_id", agentID))
			continue
		}
		s.hub.HandleInbound(connID, frame)
	}
}

// wsClient is one websocket connection. Outbound frames go through a buffered
// queue consumed by a single writer goroutine, which keeps producer call
// order per connection.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func (c *wsClient) Send(event string, data any) error {
	frame := Envelope{Event: event}
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return err
		}
		frame.Data = payload
	}
	raw, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return fmt.Errorf("connection closed")
	case c.send <- raw:
		return nil
	default:
		return fmt.Errorf("send queue full")
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			return
		case raw := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, candidate := range allowed {
			if strings.EqualFold(candidate, origin) {
				return true
			}
		}
		return false
	}
}
