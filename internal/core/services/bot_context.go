package services

import "github.com/lagrange-go/lagrange/internal/core/domain"

// StaticBotContext implements domain.BotContext with a fixed identity, set
// once at startup. The upstream session core itself is out of scope (spec
// §1 Non-goals); this is the narrow seam the lifecycle and heartbeat
// payloads read the bot's UIN through.
type StaticBotContext struct {
	identity domain.BotIdentity
}

// NewStaticBotContext builds a StaticBotContext for the given UIN.
func NewStaticBotContext(uin int64) *StaticBotContext {
	return &StaticBotContext{identity: domain.BotIdentity{UIN: uin}}
}

// Identity returns the fixed bot identity.
func (c *StaticBotContext) Identity() domain.BotIdentity {
	return c.identity
}
