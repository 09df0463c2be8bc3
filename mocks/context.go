package mocks

import (
	"dealbot/config"
	"dealbot/context"
	"dealbot/session"
)

// NewContext wires a handler context around test doubles
func NewContext(bot context.Bot, store *MemoryStore, publisher *RecordingPublisher) *context.Context {
	c := &context.Context{
		Repo:          store,
		RabbitPublish: publisher,
		Sessions:      session.NewStore(),
		Config:        &config.Config{},
	}
	c.SetBot(bot)
	return c
}
