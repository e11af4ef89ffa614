// Package domain holds the core types and collaborator contracts of the
// Forward-WebSocket service: sessions, path classes, the connection
// registry, and the sender/bot-core interfaces that internal/forwardws
// is built against.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// SessionID is the opaque 128-bit identifier assigned to every accepted,
// authenticated WebSocket session. Its canonical textual form is the
// standard UUID string.
type SessionID = uuid.UUID

// NewSessionID allocates a fresh session identifier. Collisions are a bug.
func NewSessionID() SessionID {
	return uuid.New()
}

// PathClass is derived from the upgrade request path and determines which
// loops run for a session and whether it participates in broadcast.
type PathClass int

const (
	// PathUniversal receives messages, events, and heartbeats. Any upgrade
	// path other than /api or /event is classified as universal.
	PathUniversal PathClass = iota
	// PathAPI is a request/response channel only: no heartbeats, no events.
	PathAPI
	// PathEvent is a server-to-client event/heartbeat channel; the server
	// only reads from it to detect a close frame.
	PathEvent
)

func (c PathClass) String() string {
	switch c {
	case PathAPI:
		return "api"
	case PathEvent:
		return "event"
	default:
		return "universal"
	}
}

// ClassifyPath maps an upgrade request path to a PathClass per spec §4.1
// step 5: "/api" or "/api/" -> api; "/event" or "/event/" -> event;
// anything else -> universal.
func ClassifyPath(path string) PathClass {
	switch path {
	case "/api", "/api/":
		return PathAPI
	case "/event", "/event/":
		return PathEvent
	default:
		return PathUniversal
	}
}

// Session owns one upgraded WebSocket, a cancellation scope tying together
// every task bound to it, and immutable metadata. A Session is present in
// the Registry iff its socket has not yet entered the closed state from the
// server side (spec §3).
type Session struct {
	ID        SessionID
	Socket    *websocket.Conn
	PathClass PathClass
	CreatedAt time.Time
	Cancel    *CancelScope
}

// NewSession wires a freshly upgraded socket to a child cancellation scope
// of parent, under the identifier the caller already allocated (spec §4.1:
// "allocate a fresh id" happens once, before the upgrade completes, and
// that same id is what gets registered, logged, and audited).
func NewSession(id SessionID, socket *websocket.Conn, class PathClass, parent *CancelScope) *Session {
	return &Session{
		ID:        id,
		Socket:    socket,
		PathClass: class,
		CreatedAt: time.Now(),
		Cancel:    parent.Child(),
	}
}

// WantsHeartbeat reports whether this session's path class receives the
// lifecycle-connect frame and periodic heartbeats (spec §4.5: every class
// except api).
func (s *Session) WantsHeartbeat() bool {
	return s.PathClass != PathAPI
}

// ReceivesInbound reports whether a dedicated Receive Loop (rather than a
// Close-Wait Loop) should run for this session (spec §4.3/§4.4).
func (s *Session) ReceivesInbound() bool {
	return s.PathClass != PathEvent
}

// Registry is the process-wide mapping from session identifier to session
// state. Insertion and removal must be individually atomic; no
// implementation may hold a global lock across a send.
type Registry interface {
	// Insert adds a session. Insertion of a duplicate ID is a programmer
	// error (spec §3: "Collisions are a bug").
	Insert(s *Session)
	// Lookup returns the session for id, or (nil, false) if absent.
	Lookup(id SessionID) (*Session, bool)
	// Remove deletes id if present and returns the removed session and
	// whether it was present. Idempotent: removing an absent id is a no-op
	// that reports false.
	Remove(id SessionID) (*Session, bool)
	// Range calls fn for every currently registered session. fn must not
	// mutate the registry.
	Range(fn func(*Session))
}

// Sender is the per-service serialized send path described in spec §4.6.
type Sender interface {
	// SendJSON serializes value once and writes it to the session named by
	// id, or — when id is the zero value / absent — broadcasts it to every
	// session whose path class is not api (spec §4.6, "Broadcast exclusion").
	SendJSON(ctx context.Context, value any, id *SessionID) error
	// SendBytes writes payload as a single Text, end-of-message frame to
	// the named session. Absent sessions are a silent no-op.
	SendBytes(ctx context.Context, payload []byte, id SessionID) error
}

// InboundHandler is invoked once per fully reassembled inbound text
// message, with the decoded UTF-8 payload and the originating session id.
// Spec §4.3: "publish them via the OnMessageReceived(message, id) hook".
type InboundHandler func(message string, id SessionID)

// BotIdentity carries the fields the lifecycle-connect and heartbeat
// payloads need from the shared upstream bot context (spec §6). The wire
// schema itself is opaque to this package; see internal/forwardws/payload.go.
type BotIdentity struct {
	UIN int64
}

// BotContext is the single shared upstream bot context spec §1 and §3
// describe: the Forward-WebSocket service reads the bot's identity from it
// to stamp lifecycle and heartbeat frames. Everything else about the
// upstream protocol (login, keep-alive, the operation catalogue) is out of
// scope per spec §1 Non-goals and lives behind this one-method seam.
type BotContext interface {
	Identity() BotIdentity
}

// AuditRepository persists a record of connection lifecycle events for
// operational visibility. It is purely additive: the in-memory Registry
// remains the single source of truth for correctness (spec §3).
type AuditRepository interface {
	RecordEvent(ctx context.Context, event AuditEvent) error
}

// AuditEvent is one row of the connection audit trail.
type AuditEvent struct {
	SessionID SessionID
	Event     string // "connected", "disconnected", "heartbeat_failed", ...
	PathClass string
	Detail    string
	Occurred  time.Time
}
