// Package router assembles the admin API's chi mux: the operator-facing
// HTTP surface that sits alongside the Forward-WebSocket listener
// (SPEC_FULL.md's admin API section).
package router

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lagrange-go/lagrange/internal/api/handlers"
	auth_middleware "github.com/lagrange-go/lagrange/internal/api/middleware"
	"github.com/lagrange-go/lagrange/internal/core/services"
)

// RouterConfig defines the dependencies required to build the admin
// routing tree.
type RouterConfig struct {
	AllowedOrigins []string
	AdminHandler   *handlers.AdminHandler
	Tokens         *services.AdminTokenService
	Logger         *slog.Logger
}

// NewRouter constructs the chi multiplexer, attaches global middleware,
// and wires the admin endpoints.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(auth_middleware.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(auth_middleware.MaxBytes(1_048_576))
	r.Use(auth_middleware.RateLimitMiddleware)
	r.Use(auth_middleware.EnforceTLS)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/admin", func(r chi.Router) {
		r.Get("/healthz", cfg.AdminHandler.Healthz)
		r.Post("/login", cfg.AdminHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth_middleware.RequireAdmin(cfg.Tokens))

			r.Get("/sessions", cfg.AdminHandler.ListSessions)
			r.Post("/sessions/{id}/disconnect", cfg.AdminHandler.DisconnectSession)
			r.Get("/sessions/{id}/stream", cfg.AdminHandler.StreamSession)
		})
	})

	return r
}
