package forwardws

import "strconv"

// Logging event IDs per spec §6: 10-14 informational, 992-999
// error/critical. An implementation may renumber these; what must be
// preserved is the set of observable events (spec §6).
const (
	EventListenerBound     = 10
	EventSessionConnected  = 11
	EventLifecycleSent     = 12
	EventHeartbeatSent     = 13
	EventSessionDisconnect = 14

	EventAuthRejected      = 992
	EventUpgradeRejected   = 993
	EventUpgradeFailed     = 994
	EventReceiveError      = 995
	EventHeartbeatError    = 996
	EventDisconnectError   = 997
	EventAcceptLoopError   = 998
	EventHandlerPanic      = 999
)

// maxTraceBytes is the truncation threshold for trace-level receive/send
// logs (spec §6): payloads beyond this are cut with a "...N bytes" suffix.
const maxTraceBytes = 1024

func truncateForTrace(payload string) string {
	if len(payload) <= maxTraceBytes {
		return payload
	}
	return payload[:maxTraceBytes] + "..." + strconv.Itoa(len(payload)) + " bytes"
}
