// Package realtime streams session events to browsers over WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pantrypairing/server/internal/domain/shared"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Message is what clients receive.
type Message struct {
	Command   string      `json:"command"`
	Event     string      `json:"event,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// sessionScoped is implemented by events that belong to one session.
type sessionScoped interface {
	SessionID() string
}

type envelope struct {
	session string
	payload []byte
}

type client struct {
	session string
	conn    *websocket.Conn
	send    chan []byte
}

// Hub fans session events out to that session's connected clients. Events
// for sessions with no clients are dropped.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}

	broadcast  chan envelope
	register   chan *client
	unregister chan *client
	shutdown   chan struct{}
	stopOnce   sync.Once
	now        func() time.Time
}

// NewHub creates a hub. An empty allowedOrigins list accepts any origin.
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				if _, ok := origins["*"]; ok {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
		logger:     logger.Named("realtime"),
		clients:    make(map[string]map[*client]struct{}),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		shutdown:   make(chan struct{}),
		now:        time.Now,
	}
}

// Start runs the hub loop.
func (h *Hub) Start(context.Context) error {
	go h.run()
	h.logger.Info("Event hub started")
	return nil
}

// Stop closes every connection.
func (h *Hub) Stop(context.Context) error {
	h.stopOnce.Do(func() { close(h.shutdown) })
	return nil
}

// Publish implements shared.EventPublisher. Events without a session are
// ignored. It never blocks the caller.
func (h *Hub) Publish(event shared.DomainEvent) {
	scoped, ok := event.(sessionScoped)
	if !ok || scoped.SessionID() == "" {
		return
	}

	payload, err := json.Marshal(Message{
		Command:   "event",
		Event:     event.EventName(),
		Data:      event,
		Timestamp: event.OccurredAt().UnixMilli(),
	})
	if err != nil {
		h.logger.Error("Failed to encode event", zap.String("event", event.EventName()), zap.Error(err))
		return
	}

	select {
	case h.broadcast <- envelope{session: scoped.SessionID(), payload: payload}:
	default:
		h.logger.Warn("Event dropped, hub backlog full", zap.String("session_id", scoped.SessionID()))
	}
}

// Count returns the number of connected clients for sessionID.
func (h *Hub) Count(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// CloseSession disconnects every client of sessionID. The session manager
// calls it when a session ends or is evicted.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[sessionID]
	for c := range set {
		close(c.send)
	}
	delete(h.clients, sessionID)
	if len(set) > 0 {
		h.logger.Debug("Session clients closed", zap.String("session_id", sessionID), zap.Int("clients", len(set)))
	}
}

// Serve upgrades the request and subscribes the connection to sessionID.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{session: sessionID, conn: conn, send: make(chan []byte, sendBuffer)}

	hello, _ := json.Marshal(Message{
		Command:   "hello",
		Data:      map[string]string{"session_id": sessionID},
		Timestamp: h.now().UnixMilli(),
	})
	c.send <- hello

	select {
	case h.register <- c:
	case <-h.shutdown:
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) run() {
	for {
		select {
		case <-h.shutdown:
			h.mu.Lock()
			for session, set := range h.clients {
				for c := range set {
					close(c.send)
				}
				delete(h.clients, session)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[c.session]
			if !ok {
				set = make(map[*client]struct{})
				h.clients[c.session] = set
			}
			set[c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("Client connected", zap.String("session_id", c.session), zap.Int("clients", len(set)))

		case c := <-h.unregister:
			h.remove(c)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients[msg.session] {
				select {
				case c.send <- msg.payload:
				default:
					h.logger.Warn("Slow client disconnected", zap.String("session_id", c.session))
					h.removeLocked(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	set, ok := h.clients[c.session]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.session)
	}
	h.logger.Debug("Client disconnected", zap.String("session_id", c.session))
}

// readPump discards client messages and keeps the pong deadline fresh.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.shutdown:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
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
