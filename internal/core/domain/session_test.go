package domain

import "testing"

func TestClassifyPath(t *testing.T) {
	cases := map[string]PathClass{
		"/api":        PathAPI,
		"/api/":       PathAPI,
		"/event":      PathEvent,
		"/event/":     PathEvent,
		"/":           PathUniversal,
		"/ws":         PathUniversal,
		"/apiextra":   PathUniversal,
		"/event/sub":  PathUniversal,
	}

	for path, want := range cases {
		if got := ClassifyPath(path); got != want {
			t.Errorf("ClassifyPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestPathClass_String(t *testing.T) {
	if PathAPI.String() != "api" {
		t.Errorf("expected api, got %s", PathAPI.String())
	}
	if PathEvent.String() != "event" {
		t.Errorf("expected event, got %s", PathEvent.String())
	}
	if PathUniversal.String() != "universal" {
		t.Errorf("expected universal, got %s", PathUniversal.String())
	}
}

func TestSession_WantsHeartbeat(t *testing.T) {
	root := NewRootScope()
	if NewSession(NewSessionID(), nil, PathAPI, root).WantsHeartbeat() {
		t.Error("api-class sessions must not want heartbeats")
	}
	if !NewSession(NewSessionID(), nil, PathUniversal, root).WantsHeartbeat() {
		t.Error("universal-class sessions must want heartbeats")
	}
	if !NewSession(NewSessionID(), nil, PathEvent, root).WantsHeartbeat() {
		t.Error("event-class sessions must want heartbeats")
	}
}

func TestSession_ReceivesInbound(t *testing.T) {
	root := NewRootScope()
	if NewSession(NewSessionID(), nil, PathEvent, root).ReceivesInbound() {
		t.Error("event-class sessions must not receive inbound")
	}
	if !NewSession(NewSessionID(), nil, PathAPI, root).ReceivesInbound() {
		t.Error("api-class sessions must receive inbound")
	}
	if !NewSession(NewSessionID(), nil, PathUniversal, root).ReceivesInbound() {
		t.Error("universal-class sessions must receive inbound")
	}
}

func TestSession_IDIsThePreallocatedOne(t *testing.T) {
	id := NewSessionID()
	sess := NewSession(id, nil, PathUniversal, NewRootScope())
	if sess.ID != id {
		t.Error("Session.ID must equal the id passed to NewSession, not a freshly minted one")
	}
}

func TestNewSessionID_Unique(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	if a == b {
		t.Error("expected distinct session ids")
	}
}
