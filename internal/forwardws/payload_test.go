package forwardws

import (
	"encoding/json"
	"testing"
)

func TestNewLifecyclePayload_Fields(t *testing.T) {
	p := newLifecyclePayload(123456)

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded["self_id"] != float64(123456) {
		t.Errorf("expected self_id 123456, got %v", decoded["self_id"])
	}
	if decoded["post_type"] != "meta_event" {
		t.Errorf("expected post_type meta_event, got %v", decoded["post_type"])
	}
	if decoded["meta_event_type"] != "lifecycle" {
		t.Errorf("expected meta_event_type lifecycle, got %v", decoded["meta_event_type"])
	}
	if decoded["sub_type"] != "connect" {
		t.Errorf("expected sub_type connect, got %v", decoded["sub_type"])
	}
	if _, ok := decoded["time"]; !ok {
		t.Error("expected a time field")
	}
}

func TestNewHeartbeatPayload_Fields(t *testing.T) {
	p := newHeartbeatPayload(987654, 30000)

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded["self_id"] != float64(987654) {
		t.Errorf("expected self_id 987654, got %v", decoded["self_id"])
	}
	if decoded["meta_event_type"] != "heartbeat" {
		t.Errorf("expected meta_event_type heartbeat, got %v", decoded["meta_event_type"])
	}
	if decoded["interval"] != float64(30000) {
		t.Errorf("expected interval 30000, got %v", decoded["interval"])
	}
	status, ok := decoded["status"].(map[string]any)
	if !ok {
		t.Fatalf("expected status to be an object, got %T", decoded["status"])
	}
	if status["online"] != true || status["good"] != true {
		t.Errorf("expected status.online and status.good true, got %v", status)
	}
}
