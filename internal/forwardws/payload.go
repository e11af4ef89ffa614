package forwardws

import "time"

// lifecyclePayload is the one-shot "I am online" frame emitted before the
// first heartbeat on any session that will receive heartbeats (spec §6).
// Field names are dictated by the OneBot v11 wire schema; this connector's
// job is only to emit what the upstream serializer would produce — the
// schema itself lives outside this package's scope (spec §1 Non-goals).
type lifecyclePayload struct {
	Time          int64  `json:"time"`
	SelfID        int64  `json:"self_id"`
	PostType      string `json:"post_type"`
	MetaEventType string `json:"meta_event_type"`
	SubType       string `json:"sub_type"`
}

func newLifecyclePayload(uin int64) lifecyclePayload {
	return lifecyclePayload{
		Time:          time.Now().Unix(),
		SelfID:        uin,
		PostType:      "meta_event",
		MetaEventType: "lifecycle",
		SubType:       "connect",
	}
}

// heartbeatStatus carries the bot's online/good flags, per spec §6.
type heartbeatStatus struct {
	Online bool `json:"online"`
	Good   bool `json:"good"`
}

// heartbeatPayload is sent every heartbeat interval (spec §4.5, §6).
type heartbeatPayload struct {
	Time          int64           `json:"time"`
	SelfID        int64           `json:"self_id"`
	PostType      string          `json:"post_type"`
	MetaEventType string          `json:"meta_event_type"`
	Interval      int64           `json:"interval"`
	Status        heartbeatStatus `json:"status"`
}

func newHeartbeatPayload(uin int64, intervalMS int64) heartbeatPayload {
	return heartbeatPayload{
		Time:          time.Now().Unix(),
		SelfID:        uin,
		PostType:      "meta_event",
		MetaEventType: "heartbeat",
		Interval:      intervalMS,
		Status:        heartbeatStatus{Online: true, Good: true},
	}
}
