package domain

import (
	"crypto/tls"
	"time"
)

// ServiceConfig is the Forward-WebSocket service's own configuration,
// immutable once the service starts (spec §3).
type ServiceConfig struct {
	// Host is the bind address. The literal "0.0.0.0" is remapped to the
	// wildcard form accepted by the HTTP upgrade listener (spec §3, §6).
	Host string
	// Port is the TCP port to bind.
	Port int
	// AccessToken is the optional shared secret; empty means "allow all"
	// (spec §4.2).
	AccessToken string
	// HeartbeatInterval is the period of status emission; must be positive
	// (spec §3).
	HeartbeatInterval time.Duration
	// TLSConfig, when non-nil, makes Start serve wss:// via ServeTLS
	// instead of plaintext ws:// (SPEC_FULL.md item 4). Nil by default.
	TLSConfig *tls.Config
}

// NormalizedHost returns the bind host with the 0.0.0.0 -> wildcard remap
// applied (spec §3, §6).
func (c ServiceConfig) NormalizedHost() string {
	if c.Host == "0.0.0.0" {
		return ""
	}
	return c.Host
}
