package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kiwari-pos/backoffice/internal/logger"
)

// mockClient creates a client without a real websocket connection.
func mockClient(hub *Hub, branchID uuid.UUID) *Client {
	return &Client{
		hub:      hub,
		branchID: branchID,
		send:     make(chan []byte, 256),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHubRegistration(t *testing.T) {
	hub := startHub(t)
	branchID := uuid.New()
	client := mockClient(hub, branchID)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if !hub.rooms[branchID][client] {
		t.Fatal("client not registered in branch room")
	}
}

func TestHubClientCount(t *testing.T) {
	hub := startHub(t)
	b1, b2 := uuid.New(), uuid.New()

	c1 := mockClient(hub, b1)
	hub.register <- c1
	hub.register <- mockClient(hub, b1)
	hub.register <- mockClient(hub, b2)
	time.Sleep(10 * time.Millisecond)

	if got := hub.ClientCount(); got != 3 {
		t.Fatalf("expected 3 clients, got %d", got)
	}

	hub.unregister <- c1
	time.Sleep(10 * time.Millisecond)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients after unregister, got %d", got)
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := startHub(t)
	branchID := uuid.New()
	client1 := mockClient(hub, branchID)
	client2 := mockClient(hub, branchID)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)

	hub.unregister <- client1
	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if hub.rooms[branchID] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
	if _, ok := <-client1.send; ok {
		t.Fatal("send channel should be closed on unregister")
	}
}

func TestBroadcastToBranchIsolation(t *testing.T) {
	hub := startHub(t)
	b1, b2, b3 := uuid.New(), uuid.New(), uuid.New()

	clients := map[uuid.UUID][]*Client{
		b1: {mockClient(hub, b1), mockClient(hub, b1)},
		b2: {mockClient(hub, b2), mockClient(hub, b2)},
		b3: {mockClient(hub, b3)},
	}
	for _, list := range clients {
		for _, c := range list {
			hub.register <- c
		}
	}
	time.Sleep(10 * time.Millisecond)

	payload := json.RawMessage(`{"order_number":"KWR-001","status":"READY"}`)
	hub.BroadcastToBranch(b2, Event{Type: "order.updated", Payload: payload})

	for branchID, list := range clients {
		for i, c := range list {
			select {
			case msg := <-c.send:
				if branchID != b2 {
					t.Fatalf("branch %s client %d should not receive message", branchID, i)
				}
				var received Event
				if err := json.Unmarshal(msg, &received); err != nil {
					t.Fatalf("unmarshal: %v", err)
				}
				if received.Type != "order.updated" || string(received.Payload) != string(payload) {
					t.Errorf("unexpected event %+v", received)
				}
			case <-time.After(50 * time.Millisecond):
				if branchID == b2 {
					t.Fatalf("branch b2 client %d should have received message", i)
				}
			}
		}
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	hub := startHub(t)
	branchID := uuid.New()
	slow := &Client{hub: hub, branchID: branchID, send: make(chan []byte)} // unbuffered, never read
	hub.register <- slow
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastToBranch(branchID, Event{Type: "order.created", Payload: json.RawMessage(`{}`)})
	time.Sleep(10 * time.Millisecond)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("slow client should be dropped, %d left", got)
	}
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	client := mockClient(hub, uuid.New())
	hub.register <- client
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if _, ok := <-client.send; ok {
		t.Fatal("client send channel should be closed on shutdown")
	}
	if hub.ClientCount() != 0 {
		t.Fatal("rooms should be empty after shutdown")
	}
}
