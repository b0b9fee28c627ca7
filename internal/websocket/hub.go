// Package websocket pushes record change events to open shop screens.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message is the envelope of every event sent to clients
type Message struct {
	Type  string `json:"type"`
	MsgID string `json:"msgId"`
	At    int64  `json:"at"`
	Data  any    `json:"data,omitempty"`
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients map: ClientID -> Client
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	// guards clients for Count
	mu  sync.RWMutex
	log *zap.Logger
}

// NewHub creates a new Hub instance
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves registrations and broadcasts until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				c.stop()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return nil

		case c := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[c.ID]; ok {
				old.stop()
			}
			h.clients[c.ID] = c
			h.mu.Unlock()
			h.log.Debug("Screen connected", zap.String("client", c.ID))

		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.ID]; ok && cur == c {
				delete(h.clients, c.ID)
				c.stop()
				h.log.Debug("Screen disconnected", zap.String("client", c.ID))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer
					c.stop()
					delete(h.clients, id)
					h.log.Warn("Dropping slow screen", zap.String("client", id))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish broadcasts an event to every connected client. It never blocks;
// events are dropped when the hub is backed up.
func (h *Hub) Publish(event string, payload any) {
	msg, err := json.Marshal(Message{
		Type:  event,
		MsgID: uuid.NewString(),
		At:    time.Now().UnixMilli(),
		Data:  payload,
	})
	if err != nil {
		h.log.Error("Cannot encode event", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("Event dropped, hub busy", zap.String("event", event))
	}
}

func (h *Hub) enter(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
