package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Message is the wire format pushed to connected hosts.
type Message struct {
	Type      string            `json:"type"`
	Title     string            `json:"title,omitempty"`
	Body      string            `json:"body,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// Hub tracks connected clients and routes messages to per-host rooms.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	log        *logrus.Logger
}

// NewHub creates a new Hub.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run processes register/unregister events until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case <-h.done:
			return
		}
	}
}

// Stop terminates the hub loop.
func (h *Hub) Stop() {
	close(h.done)
}

// SendToHost pushes a message to every connection in the host's personal
// room. Hosts with no open connection simply miss the push; delivery is
// best-effort.
func (h *Hub) SendToHost(hostID string, msg Message) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Warn("ws: marshal message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[hostRoom(hostID)]
	if !ok {
		return
	}

	for client := range room {
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop rather than block the hub.
			h.log.WithField("host_id", hostID).Warn("ws: send buffer full, dropping message")
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true

	room := hostRoom(client.HostID)
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true

	h.log.WithField("host_id", client.HostID).Debug("ws: client connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	close(client.send)

	room := hostRoom(client.HostID)
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}

	h.log.WithField("host_id", client.HostID).Debug("ws: client disconnected")
}

func hostRoom(hostID string) string {
	return "host_" + hostID
}
