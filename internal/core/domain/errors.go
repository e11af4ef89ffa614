package domain

import "errors"

var (
	// ErrTokenInvalid names a candidate access token that is missing or
	// does not match the configured secret (spec §4.2). The Access-Token
	// Validator reports this case as a false result and does not return
	// this error.
	ErrTokenInvalid = errors.New("access token invalid or missing")

	// ErrNotUpgrade names an accepted HTTP exchange that is not a
	// WebSocket upgrade request (spec §4.1 step 3). The upgrade handler
	// rejects such a request without returning this error.
	ErrNotUpgrade = errors.New("request is not a websocket upgrade")

	// ErrSessionNotFound names a session id no longer present in the
	// Registry. SendBytes and Disconnect treat that case as a silent no-op
	// and do not return this error.
	ErrSessionNotFound = errors.New("session not found")
)
