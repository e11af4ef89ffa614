package forwardws

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/lagrange-go/lagrange/internal/core/domain"
)

// initialFrameBuffer is the starting capacity of the growable reassembly
// buffer; it doubles on full, per spec §4.3.
const initialFrameBuffer = 1024

// runReceiveLoop implements spec §4.3: reassembles fragmented text frames
// into complete messages and publishes each to onMessage. Runs for api and
// universal sessions.
func (s *Service) runReceiveLoop(sess *domain.Session) {
	defer sess.Cancel.Cancel()

	logger := s.logger.With(slog.String("session_id", sess.ID.String()))
	buf := make([]byte, 0, initialFrameBuffer)

	for {
		select {
		case <-sess.Cancel.Done():
			s.Disconnect(context.Background(), sess.ID, websocket.CloseNormalClosure)
			return
		default:
		}

		msgType, reader, err := sess.Socket.NextReader()
		if err != nil {
			if sess.Cancel.Err() != nil {
				s.Disconnect(context.Background(), sess.ID, websocket.CloseNormalClosure)
				return
			}
			if isCloseError(err) {
				s.Disconnect(context.Background(), sess.ID, websocket.CloseNormalClosure)
				return
			}
			logger.Error("receive loop failed", slog.Int("event_id", EventReceiveError), slog.String("error", err.Error()))
			s.Disconnect(context.Background(), sess.ID, websocket.CloseInternalServerErr)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		buf = buf[:0]
		buf, err = growAndRead(buf, reader)
		if err != nil {
			logger.Error("receive loop failed reading message body", slog.Int("event_id", EventReceiveError), slog.String("error", err.Error()))
			s.Disconnect(context.Background(), sess.ID, websocket.CloseInternalServerErr)
			return
		}

		message := string(buf)
		logger.Debug("message received", slog.String("payload", truncateForTrace(message)))
		if s.onMessage != nil {
			s.onMessage(message, sess.ID)
		}
	}
}

// runCloseWaitLoop implements spec §4.4: identical suspension/error/
// cancellation semantics to the receive loop, but discards everything
// except a Close frame. Runs for event-only sessions.
func (s *Service) runCloseWaitLoop(sess *domain.Session) {
	defer sess.Cancel.Cancel()

	logger := s.logger.With(slog.String("session_id", sess.ID.String()))

	for {
		select {
		case <-sess.Cancel.Done():
			s.Disconnect(context.Background(), sess.ID, websocket.CloseNormalClosure)
			return
		default:
		}

		_, _, err := sess.Socket.ReadMessage()
		if err != nil {
			if sess.Cancel.Err() != nil {
				s.Disconnect(context.Background(), sess.ID, websocket.CloseNormalClosure)
				return
			}
			if isCloseError(err) {
				s.Disconnect(context.Background(), sess.ID, websocket.CloseNormalClosure)
				return
			}
			logger.Error("close-wait loop failed", slog.Int("event_id", EventReceiveError), slog.String("error", err.Error()))
			s.Disconnect(context.Background(), sess.ID, websocket.CloseInternalServerErr)
			return
		}
		// Non-close frames on an event-only session are discarded.
	}
}

// growAndRead reads reader to completion into buf, doubling capacity on
// full rather than allocating a fixed cap, matching spec §4.3's "growable
// buffer starting at 1 KiB and doubling on full".
func growAndRead(buf []byte, reader io.Reader) ([]byte, error) {
	chunk := make([]byte, initialFrameBuffer)
	for {
		n, err := reader.Read(chunk)
		if n > 0 {
			if len(buf)+n > cap(buf) {
				grown := make([]byte, len(buf), grownCap(cap(buf), len(buf)+n))
				copy(grown, buf)
				buf = grown
			}
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return buf, err
		}
	}
}

func grownCap(current, needed int) int {
	if current == 0 {
		current = initialFrameBuffer
	}
	for current < needed {
		current *= 2
	}
	return current
}

func isCloseError(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}
