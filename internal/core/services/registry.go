package services

import (
	"sync"

	"github.com/lagrange-go/lagrange/internal/core/domain"
)

// ConnectionRegistry is the process-wide session map described in spec §3
// and §5: lock-free lookup/insert/remove, with no global lock held across a
// send. A sync.Map gives us exactly that without hand-rolled sharding.
type ConnectionRegistry struct {
	sessions sync.Map // domain.SessionID -> *domain.Session
	size     int64
	mu       sync.Mutex // guards size only, never held across I/O
}

// NewConnectionRegistry constructs an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{}
}

// Insert adds s to the registry. Inserting a duplicate ID is a programmer
// error per spec §3 ("Collisions are a bug") and panics rather than
// silently overwriting a live session.
func (r *ConnectionRegistry) Insert(s *domain.Session) {
	if _, loaded := r.sessions.LoadOrStore(s.ID, s); loaded {
		panic("forwardws: duplicate session id inserted into registry: " + s.ID.String())
	}
	r.mu.Lock()
	r.size++
	r.mu.Unlock()
}

// Lookup returns the session for id, or (nil, false) if absent.
func (r *ConnectionRegistry) Lookup(id domain.SessionID) (*domain.Session, bool) {
	v, ok := r.sessions.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*domain.Session), true
}

// Remove deletes id if present. Idempotent: only the first caller for a
// given id observes (session, true); every later concurrent call observes
// (nil, false). This is what makes spec §4.7's Disconnect coalesce.
func (r *ConnectionRegistry) Remove(id domain.SessionID) (*domain.Session, bool) {
	v, loaded := r.sessions.LoadAndDelete(id)
	if !loaded {
		return nil, false
	}
	r.mu.Lock()
	r.size--
	r.mu.Unlock()
	return v.(*domain.Session), true
}

// Range calls fn for every currently registered session. fn must not
// mutate the registry.
func (r *ConnectionRegistry) Range(fn func(*domain.Session)) {
	r.sessions.Range(func(_, v any) bool {
		fn(v.(*domain.Session))
		return true
	})
}

// Len returns the current session count. Best-effort under concurrent
// mutation; intended for admin/metrics surfaces, never for correctness.
func (r *ConnectionRegistry) Len() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

var _ domain.Registry = (*ConnectionRegistry)(nil)
