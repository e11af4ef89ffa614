package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/lagrange-go/lagrange/internal/core/domain"
)

// BroadcastSender implements spec §4.6: a single service-wide send mutex
// serializes every outbound write across every session, because a
// WebSocket connection may never have two writes in flight at once and the
// source this connector mirrors serializes across sockets too. Spec §9
// explicitly allows replacing the global mutex with a per-session mutex
// without weakening the observable contract; this implementation keeps the
// conservative global-mutex behavior the source uses.
type BroadcastSender struct {
	registry domain.Registry
	mu       sync.Mutex
}

// NewBroadcastSender builds a Sender bound to the given registry.
func NewBroadcastSender(registry domain.Registry) *BroadcastSender {
	return &BroadcastSender{registry: registry}
}

// SendJSON serializes value to UTF-8 JSON once. With id set, it delivers to
// that single session. With id nil, it fans the payload out, concurrently,
// to every session whose path class is not api (spec §4.6, "Broadcast
// exclusion" — this corrects the source's tautological `path != "/api" ||
// path != "/api/"` filter per spec §9).
func (s *BroadcastSender) SendJSON(ctx context.Context, value any, id *domain.SessionID) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("forwardws: marshal outbound payload: %w", err)
	}

	if id != nil {
		return s.SendBytes(ctx, payload, *id)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	s.registry.Range(func(sess *domain.Session) {
		if sess.PathClass == domain.PathAPI {
			return
		}
		wg.Add(1)
		go func(target domain.SessionID) {
			defer wg.Done()
			if err := s.SendBytes(ctx, payload, target); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(sess.ID)
	})
	wg.Wait()

	if len(errs) > 0 {
		return fmt.Errorf("forwardws: broadcast failed for %d session(s): %w", len(errs), errs[0])
	}
	return nil
}

// SendBytes acquires the single send mutex, looks the session up, and
// issues one Text, end-of-message write. An absent session is a silent
// no-op (spec §4.6).
func (s *BroadcastSender) SendBytes(ctx context.Context, payload []byte, id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.registry.Lookup(id)
	if !ok {
		return nil
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = sess.Socket.SetWriteDeadline(deadline)
	}
	if err := sess.Socket.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("forwardws: write to session %s: %w", id, err)
	}
	return nil
}

var _ domain.Sender = (*BroadcastSender)(nil)
