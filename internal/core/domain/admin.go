package domain

import "time"

// AdminPrincipal is the operator identity recovered from a verified admin
// session token (SPEC_FULL.md "Admin HTTP API").
type AdminPrincipal struct {
	Username string
}

type adminContextKey struct{}

// AdminContextKey is the context key an authenticated admin request's
// AdminPrincipal is stored under by middleware.RequireAdmin.
var AdminContextKey = adminContextKey{}

// SessionSnapshot is the admin-facing projection of one currently open
// session, with the same fields GET /admin/sessions reports (that handler
// encodes its own view type), persisted by
// internal/db/postgres.SessionRepository for operator visibility across
// restarts of the admin surface. It is a read-model only: the in-memory
// Registry remains the single source of truth for Disconnect and Sender.
type SessionSnapshot struct {
	ID          SessionID
	PathClass   string
	ConnectedAt time.Time
}
