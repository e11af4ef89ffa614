// Package handlers implements the admin HTTP API's request handlers.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lagrange-go/lagrange/internal/core/domain"
	"github.com/lagrange-go/lagrange/internal/core/services"
	"github.com/lagrange-go/lagrange/internal/telemetry"
)

// sessionDisconnector is the subset of forwardws.Service the admin API
// needs to force-close a session.
type sessionDisconnector interface {
	Disconnect(ctx context.Context, id domain.SessionID, status int)
}

// AdminHandler serves the operator-facing HTTP API described in
// SPEC_FULL.md's admin API section: login, live session listing, forced
// disconnect, and a health probe.
type AdminHandler struct {
	auth     *services.AdminAuthService
	registry domain.Registry
	service  sessionDisconnector
	hub      *telemetry.Hub
}

// NewAdminHandler builds an AdminHandler.
func NewAdminHandler(auth *services.AdminAuthService, registry domain.Registry, service sessionDisconnector, hub *telemetry.Hub) *AdminHandler {
	return &AdminHandler{auth: auth, registry: registry, service: service, hub: hub}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges an operator's username and password for an admin bearer
// token. POST /admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

type sessionView struct {
	ID          string    `json:"id"`
	PathClass   string    `json:"path_class"`
	ConnectedAt time.Time `json:"connected_at"`
}

// ListSessions returns every currently registered session.
// GET /admin/sessions.
func (h *AdminHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	views := make([]sessionView, 0)
	h.registry.Range(func(s *domain.Session) {
		views = append(views, sessionView{
			ID:          s.ID.String(),
			PathClass:   s.PathClass.String(),
			ConnectedAt: s.CreatedAt,
		})
	})
	writeJSON(w, http.StatusOK, views)
}

// DisconnectSession force-closes one session.
// POST /admin/sessions/{id}/disconnect.
func (h *AdminHandler) DisconnectSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	if _, ok := h.registry.Lookup(id); !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	h.service.Disconnect(r.Context(), id, 1000)
	w.WriteHeader(http.StatusNoContent)
}

// StreamSession relays one session's inbound traffic to the caller as
// newline-delimited JSON events, for as long as the request stays open.
// GET /admin/sessions/{id}/stream.
func (h *AdminHandler) StreamSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ch := h.hub.Subscribe(id)
	defer h.hub.Unsubscribe(id, ch)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintln(w, msg)
			flusher.Flush()
		}
	}
}

// Healthz reports liveness for container orchestration probes.
// GET /admin/healthz.
func (h *AdminHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
