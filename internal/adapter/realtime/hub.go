// Package realtime is the gorilla/websocket push channel: per-user addressed
// delivery plus broadcast.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/olyamironova/exchange-engine/internal/port"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type envelope struct {
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

type client struct {
	userID string
	conn   *websocket.Conn
	send   chan envelope
}

// Hub fans out per-user pushes and asset-wide broadcasts over websocket.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{} // userID -> clients
	all     map[*client]struct{}
	logger  *zap.Logger
}

var _ port.Realtime = (*Hub)(nil)

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		all:     make(map[*client]struct{}),
		logger:  logger,
	}
}

// ServeWS upgrades the connection and registers it under userID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{userID: userID, conn: conn, send: make(chan envelope, sendBuffer)}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
	h.all[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.all, c)
	if set, ok := h.clients[c.userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
	h.mu.Unlock()
	close(c.send)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
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
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			b, err := json.Marshal(env)
			if err != nil {
				h.logger.Warn("realtime: marshal failed", zap.Error(err))
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// NotifyUser pushes payload to every connection registered under userID.
// Fire-and-forget: a full client channel drops the message for that client.
func (h *Hub) NotifyUser(ctx context.Context, userID, topic string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- envelope{Topic: topic, Data: payload}:
		default:
			h.logger.Warn("realtime: dropping message for slow client", zap.String("user_id", userID), zap.String("topic", topic))
		}
	}
}

// Broadcast pushes payload to every connected client.
func (h *Hub) Broadcast(ctx context.Context, topic string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.all {
		select {
		case c.send <- envelope{Topic: topic, Data: payload}:
		default:
			h.logger.Warn("realtime: dropping broadcast for slow client", zap.String("user_id", c.userID), zap.String("topic", topic))
		}
	}
}
