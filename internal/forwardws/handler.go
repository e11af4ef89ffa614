package forwardws

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lagrange-go/lagrange/internal/core/domain"
)

// handleUpgrade implements the Handler contract of spec §4.1: allocate an
// id, validate the token, verify the upgrade, complete it, classify the
// path, register the session, and spawn its task set.
func (s *Service) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	id := domain.NewSessionID()
	logger := s.logger.With(slog.String("session_id", id.String()))

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("handler panicked", slog.Int("event_id", EventHandlerPanic), slog.Any("panic", rec))
		}
	}()

	if !s.validator.Validate(r) {
		logger.Warn("auth rejected", slog.Int("event_id", EventAuthRejected))
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	socket, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		var handshakeErr websocket.HandshakeError
		if errors.As(err, &handshakeErr) {
			// upgrader.Upgrade has already written the 400 response.
			logger.Warn("non-upgrade request rejected", slog.Int("event_id", EventUpgradeRejected), slog.String("error", err.Error()))
			return
		}
		logger.Error("upgrade failed", slog.Int("event_id", EventUpgradeFailed), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	class := domain.ClassifyPath(r.URL.Path)
	sess := domain.NewSession(id, socket, class, s.root)
	s.registry.Insert(sess)

	if s.audit != nil {
		_ = s.audit.RecordEvent(r.Context(), domain.AuditEvent{
			SessionID: sess.ID,
			Event:     "connected",
			PathClass: class.String(),
			Occurred:  time.Now(),
		})
	}
	logger.Info("session connected", slog.Int("event_id", EventSessionConnected), slog.String("path_class", class.String()))

	if sess.WantsHeartbeat() {
		go s.runHeartbeatLoop(sess)
	}
	if sess.ReceivesInbound() {
		go s.runReceiveLoop(sess)
	} else {
		go s.runCloseWaitLoop(sess)
	}
}
