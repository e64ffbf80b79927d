package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrHubBusy is returned when the broadcast queue is full
var ErrHubBusy = errors.New("websocket hub busy, message dropped")

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients: ClientID -> Client
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	mu  sync.RWMutex
	log *logrus.Logger
}

// NewHub creates a new Hub instance
func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		clients:    make(map[string]*Client),
		log:        log,
	}
}

// Run starts the hub's main loop. It returns when ctx is done and
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			// Same client id reconnecting replaces the old connection
			if old, ok := h.clients[client.ClientID]; ok {
				close(old.send)
			}
			h.clients[client.ClientID] = client
			h.mu.Unlock()
			h.log.WithField("client_id", client.ClientID).Debug("🔌 Client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.ClientID]; ok && current == client {
				delete(h.clients, client.ClientID)
				close(client.send)
				h.log.WithField("client_id", client.ClientID).Debug("📴 Client disconnected")
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer
					close(client.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends v as JSON to every connected client
func (h *Hub) Broadcast(v interface{}) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
		return nil
	default:
		return ErrHubBusy
	}
}

// SendTo sends a message to one client
func (h *Hub) SendTo(clientID string, message interface{}) bool {
	jsonMsg, err := json.Marshal(message)
	if err != nil {
		h.log.WithError(err).Warn("Error marshaling message")
		return false
	}

	// Hold the read lock so Run cannot close send underneath us
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[clientID]
	if !ok {
		return false
	}

	select {
	case client.send <- jsonMsg:
		return true
	default:
		return false
	}
}

func (h *Hub) enqueue(ch chan *Client, c *Client) {
	select {
	case ch <- c:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
