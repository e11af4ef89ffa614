// Package forwardws implements the Forward-WebSocket service: the
// long-running server that multiplexes authenticated WebSocket sessions
// and brokers bidirectional JSON traffic between them and a single shared
// upstream bot context (spec §1-§9).
package forwardws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lagrange-go/lagrange/internal/api/middleware"
	"github.com/lagrange-go/lagrange/internal/core/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Service is the Listener/Acceptor plus Service Lifecycle of spec §4.1 and
// §4.8.
type Service struct {
	cfg       domain.ServiceConfig
	logger    *slog.Logger
	registry  domain.Registry
	sender    domain.Sender
	validator tokenValidator
	bot       domain.BotContext
	audit     domain.AuditRepository
	onMessage domain.InboundHandler

	root     *domain.CancelScope
	listener net.Listener
	server   *http.Server
	done     chan error
}

// tokenValidator is the minimal surface Service needs from
// internal/core/services.AccessTokenValidator, kept as an interface here so
// forwardws does not import the services package (avoids an import cycle
// with services code that itself depends on domain only).
type tokenValidator interface {
	Validate(r *http.Request) bool
}

// New builds a Service with a fresh service-wide root cancellation scope
// (spec §5, "the service has a root token").
func New(
	cfg domain.ServiceConfig,
	logger *slog.Logger,
	registry domain.Registry,
	sender domain.Sender,
	validator tokenValidator,
	bot domain.BotContext,
	audit domain.AuditRepository,
) *Service {
	return &Service{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		sender:    sender,
		validator: validator,
		bot:       bot,
		audit:     audit,
		root:      domain.NewRootScope(),
		done:      make(chan error, 1),
	}
}

// OnMessageReceived registers the hook a downstream operation dispatcher
// binds to (spec §4.8): "The service surface exposes OnMessageReceived so
// a downstream router (outside the core) can bind it to the operation
// dispatcher."
func (s *Service) OnMessageReceived(fn domain.InboundHandler) {
	s.onMessage = fn
}

// Start binds the listener and spawns the accept loop (spec §4.8). It
// returns once the bind succeeds or fails; the accept loop itself runs in
// the background and reports its terminal error on Done().
func (s *Service) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.NormalizedHost(), s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("forwardws: bind %s: %w", addr, err)
	}
	s.listener = ln

	router := chi.NewRouter()
	router.With(middleware.RateLimitMiddleware).HandleFunc("/*", s.handleUpgrade)

	s.server = &http.Server{Handler: router}

	scheme := "ws"
	if s.cfg.TLSConfig != nil {
		scheme = "wss"
		s.server.TLSConfig = s.cfg.TLSConfig
	}

	s.logger.Info("forward-websocket listener bound",
		slog.Int("event_id", EventListenerBound),
		slog.String("prefix", fmt.Sprintf("%s://%s/", scheme, addr)))

	go func() {
		var err error
		if s.cfg.TLSConfig != nil {
			err = s.server.ServeTLS(s.listener, "", "")
		} else {
			err = s.server.Serve(s.listener)
		}
		if errors.Is(err, http.ErrServerClosed) {
			s.done <- nil
			return
		}
		if s.root.Err() != nil {
			s.done <- nil
			return
		}
		s.logger.Error("accept loop terminated", slog.Int("event_id", EventAcceptLoopError), slog.String("error", err.Error()))
		s.done <- err
	}()

	return nil
}

// Addr returns the bound listener address. Valid only after Start returns
// nil; chiefly useful for tests and admin-surface reporting when Port is 0.
func (s *Service) Addr() net.Addr {
	return s.listener.Addr()
}

// Done reports the accept loop's terminal state: nil on an orderly
// cancellation-driven exit, non-nil on the "not a self-healing" fatal path
// spec §4.1 describes. A supervisor (internal/worker.Supervisor) watches
// this to restart the service.
func (s *Service) Done() <-chan error {
	return s.done
}

// Stop fires the service cancellation scope, then shuts the HTTP server
// down, which closes the listener and makes the accept loop return, and
// then waits for the accept loop's result on Done, bounded by ctx and a
// 10s cap. The listener is therefore closed before the accept loop exits,
// not after it. Stop consumes that result from Done itself.
func (s *Service) Stop(ctx context.Context) error {
	s.root.Cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forwardws: shutdown: %w", err)
	}

	select {
	case <-s.done:
	case <-shutdownCtx.Done():
	}

	return nil
}

// Disconnect implements spec §4.7: atomically remove id from the registry,
// then issue a close frame. Coalesces under concurrent callers because
// Registry.Remove is idempotent. Exported so the admin API can force-close
// a session (POST /admin/sessions/{id}/disconnect).
func (s *Service) Disconnect(ctx context.Context, id domain.SessionID, status int) {
	defer s.logger.Info("disconnect", slog.Int("event_id", EventSessionDisconnect), slog.String("session_id", id.String()), slog.Int("status", status))

	sess, ok := s.registry.Remove(id)
	if !ok {
		return
	}

	if s.audit != nil {
		_ = s.audit.RecordEvent(ctx, domain.AuditEvent{
			SessionID: id,
			Event:     "disconnected",
			PathClass: sess.PathClass.String(),
			Occurred:  time.Now(),
		})
	}

	msg := websocket.FormatCloseMessage(status, "")
	_ = sess.Socket.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second))
	_ = sess.Socket.Close()
}
