package forwardws

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lagrange-go/lagrange/internal/core/domain"
)

// runHeartbeatLoop implements spec §4.5: emits a lifecycle-connect frame
// immediately, then periodic heartbeat frames phase-aligned to real time
// (spec §9, "Heartbeat drift"). Runs for every session whose path class is
// not api.
func (s *Service) runHeartbeatLoop(sess *domain.Session) {
	defer sess.Cancel.Cancel()

	logger := s.logger.With(slog.String("session_id", sess.ID.String()))
	uin := s.bot.Identity().UIN
	intervalMS := s.cfg.HeartbeatInterval.Milliseconds()

	if err := s.sender.SendJSON(sess.Cancel.Context(), newLifecyclePayload(uin), &sess.ID); err != nil {
		logger.Error("failed to send lifecycle-connect", slog.Int("event_id", EventHeartbeatError), slog.String("error", err.Error()))
		s.Disconnect(context.Background(), sess.ID, websocket.CloseInternalServerErr)
		return
	}
	logger.Info("lifecycle-connect sent", slog.Int("event_id", EventLifecycleSent))

	for {
		start := time.Now()

		err := s.sender.SendJSON(sess.Cancel.Context(), newHeartbeatPayload(uin, intervalMS), &sess.ID)
		elapsed := time.Since(start)

		if err != nil {
			if sess.Cancel.Err() != nil {
				s.Disconnect(context.Background(), sess.ID, websocket.CloseNormalClosure)
				return
			}
			logger.Error("heartbeat send failed", slog.Int("event_id", EventHeartbeatError), slog.String("error", err.Error()))
			if s.audit != nil {
				_ = s.audit.RecordEvent(context.Background(), domain.AuditEvent{
					SessionID: sess.ID,
					Event:     "heartbeat_failed",
					PathClass: sess.PathClass.String(),
					Detail:    err.Error(),
					Occurred:  time.Now(),
				})
			}
			s.Disconnect(context.Background(), sess.ID, websocket.CloseInternalServerErr)
			return
		}
		logger.Debug("heartbeat sent", slog.Int("event_id", EventHeartbeatSent))

		sleep := s.cfg.HeartbeatInterval - elapsed
		if sleep < 0 {
			sleep = 0
		}

		select {
		case <-sess.Cancel.Done():
			s.Disconnect(context.Background(), sess.ID, websocket.CloseNormalClosure)
			return
		case <-time.After(sleep):
		}
	}
}
