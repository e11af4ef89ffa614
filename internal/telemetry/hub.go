// Package telemetry fans out inbound session traffic to admin observers
// without touching the Forward-WebSocket hot path itself.
package telemetry

import (
	"sync"

	"github.com/lagrange-go/lagrange/internal/core/domain"
)

// Hub holds one broadcast fan-out channel set per session, fed by
// forwardws.Service.OnMessageReceived and drained by the admin API's
// session-tail endpoint (GET /admin/sessions/{id}/stream).
type Hub struct {
	mu          sync.RWMutex
	subscribers map[domain.SessionID][]chan string
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[domain.SessionID][]chan string)}
}

// Subscribe registers a new observer for id's traffic. The returned
// channel is buffered; a slow observer drops messages rather than
// backpressuring the publisher.
func (h *Hub) Subscribe(id domain.SessionID) chan string {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan string, 100)
	h.subscribers[id] = append(h.subscribers[id], ch)
	return ch
}

// Unsubscribe removes and closes ch.
func (h *Hub) Unsubscribe(id domain.SessionID, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[id]
	for i, sub := range subs {
		if sub == ch {
			h.subscribers[id] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(h.subscribers[id]) == 0 {
		delete(h.subscribers, id)
	}
}

// Publish fans message out to every current observer of id. Intended to be
// bound as (part of) a forwardws.Service.OnMessageReceived handler.
func (h *Hub) Publish(id domain.SessionID, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers[id] {
		select {
		case ch <- message:
		default:
		}
	}
}
