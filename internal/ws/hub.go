// Package ws pushes live updates to the back-office dashboard: order events
// fanned out per branch, and table sessions that page through a resource on
// request.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Event is a message broadcast to every client in a branch room.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type branchEvent struct {
	BranchID uuid.UUID
	Event    Event
}

// Hub maintains the set of connected order clients, grouped by branch.
type Hub struct {
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *branchEvent

	log *slog.Logger
	mu  sync.RWMutex
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *branchEvent, 256),
		log:        log,
	}
}

// Run is the hub's main loop. It returns when ctx is done, after closing the
// send channel of every client still connected.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.branchID] == nil {
				h.rooms[client.branchID] = make(map[*Client]bool)
			}
			h.rooms[client.branchID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.dropLocked(client)
			h.mu.Unlock()

		case ev := <-h.broadcast:
			message, err := json.Marshal(ev.Event)
			if err != nil {
				h.log.Error("marshal ws event", "type", ev.Event.Type, "err", err)
				continue
			}
			h.mu.Lock()
			for client := range h.rooms[ev.BranchID] {
				select {
				case client.send <- message:
				default:
					// Slow consumer.
					h.log.Warn("dropping slow ws client", "branch_id", ev.BranchID)
					h.dropLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) dropLocked(client *Client) {
	clients, ok := h.rooms[client.branchID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.branchID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for branchID, clients := range h.rooms {
		for client := range clients {
			close(client.send)
		}
		delete(h.rooms, branchID)
	}
}

// BroadcastToBranch queues event for every client subscribed to branchID.
func (h *Hub) BroadcastToBranch(branchID uuid.UUID, event Event) {
	h.broadcast <- &branchEvent{BranchID: branchID, Event: event}
}

// ClientCount returns the number of connected clients across all branches.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.rooms {
		n += len(clients)
	}
	return n
}
