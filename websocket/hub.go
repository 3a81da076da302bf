package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Hub tracks live connections per user and fans events out to them.
type Hub struct {
	clients    map[string]*Client
	userConns  map[int64]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// Message is the frame pushed to clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// ClientMessage is a frame received from a client.
type ClientMessage struct {
	Action string `json:"action"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		userConns:  make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations until ctx is cancelled, then closes every
// remaining connection's send queue.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			if h.userConns[client.UserID] == nil {
				h.userConns[client.UserID] = make(map[*Client]bool)
			}
			h.userConns[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			h.mu.Lock()
			for _, client := range h.clients {
				close(client.Send)
			}
			h.clients = make(map[string]*Client)
			h.userConns = make(map[int64]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	if h.userConns[client.UserID] != nil {
		delete(h.userConns[client.UserID], client)
		if len(h.userConns[client.UserID]) == 0 {
			delete(h.userConns, client.UserID)
		}
	}
	close(client.Send)
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes its send queue.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser queues msg on every connection of userID. Connections whose
// queue is full are dropped.
func (h *Hub) SendToUser(userID int64, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("websocket: failed to encode %s event: %v", msg.Event, err)
		return
	}

	var slow []*Client
	h.mu.RLock()
	for client := range h.userConns[userID] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		go h.Unregister(client)
	}
}

// deliver queues data on a single client if it is still registered.
func (h *Hub) deliver(client *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.clients[client.ID] != client {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

// NotifyUser pushes an event to userID if they are connected.
func (h *Hub) NotifyUser(userID int64, event string, data any) {
	h.SendToUser(userID, &Message{Event: event, Data: data})
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}
