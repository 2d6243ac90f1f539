package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func (h *Hub) clientCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// A client that never drains its Send buffer must be dropped, and its
// channel closed exactly once. Repeated sends to the same stalled
// client used to close the channel twice and kill the hub goroutine.
func TestHubDropsStalledClientWithoutPanic(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	userID := uuid.New()
	client := &Client{
		Hub:    hub,
		UserID: userID,
		Send:   make(chan []byte),
	}

	hub.register <- client
	waitFor(t, func() bool { return hub.clientCount(userID) == 1 })

	update := StatusUpdate{DocumentId: uuid.New(), FileName: "bylaws.pdf", OcrStatus: "processing"}
	hub.Send(userID, update)
	hub.Send(userID, update)

	waitFor(t, func() bool { return hub.clientCount(userID) == 0 })

	// The hub must still be serving after dropping the client.
	replacement := &Client{
		Hub:    hub,
		UserID: userID,
		Send:   make(chan []byte, 1),
	}
	hub.register <- replacement
	waitFor(t, func() bool { return hub.clientCount(userID) == 1 })

	hub.Send(userID, update)
	select {
	case msg := <-replacement.Send:
		if len(msg) == 0 {
			t.Error("delivered message is empty")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message never delivered to healthy client")
	}

	// The stalled client's channel is closed by the unregister path.
	select {
	case _, open := <-client.Send:
		if open {
			t.Error("expected stalled client's Send channel to be closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stalled client's Send channel never closed")
	}
}
