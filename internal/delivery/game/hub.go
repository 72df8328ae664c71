package game

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// StreamMessage: сообщение подписчикам партии.
type StreamMessage struct {
	Type    string `json:"type"` // position, move, undo, finished, error
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
}

// client сериализует запись в одно соединение: gorilla/websocket не допускает параллельных писателей.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(msg StreamMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Hub раздаёт события партии всем подключённым к ней соединениям.
type Hub struct {
	log  *zap.SugaredLogger
	mu   sync.RWMutex
	subs map[string]map[*client]struct{}
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:  log,
		subs: make(map[string]map[*client]struct{}),
	}
}

func (h *Hub) subscribe(gameID string, conn *websocket.Conn) *client {
	c := &client{conn: conn}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[*client]struct{})
	}
	h.subs[gameID][c] = struct{}{}
	return c
}

func (h *Hub) unsubscribe(gameID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[gameID], c)
	if len(h.subs[gameID]) == 0 {
		delete(h.subs, gameID)
	}
}

// Subscribers: число соединений партии.
func (h *Hub) Subscribers(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[gameID])
}

func (h *Hub) Broadcast(gameID string, msg StreamMessage) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.subs[gameID]))
	for c := range h.subs[gameID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			h.log.Warnf("write to subscriber of game %s failed: %v", gameID, err)
			c.conn.Close()
			h.unsubscribe(gameID, c)
		}
	}
}
