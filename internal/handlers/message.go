package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/ideaboard/pkg/classify"
	"github.com/latoulicious/ideaboard/pkg/engine"
	"github.com/latoulicious/ideaboard/pkg/logging"
)

// MessageHandler returns the MessageCreate handler feeding messages to the engine.
// discordgo runs each handler call in its own goroutine, so messages are
// processed independently of each other.
func MessageHandler(e *engine.Engine, logger logging.Logger) func(*discordgo.Session, *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Malformed message event", logging.Any("panic", r))
			}
		}()

		if m == nil || m.Message == nil {
			return
		}

		// Ignore all messages created by the bot itself
		if s != nil && s.State != nil && s.State.User != nil && m.Author != nil && m.Author.ID == s.State.User.ID {
			return
		}

		e.HandleMessage(context.Background(), ToMessage(m.Message))
	}
}

// ToMessage extracts the fields the engine needs from a Discord message
func ToMessage(m *discordgo.Message) classify.Message {
	msg := classify.Message{
		ID:        m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorBot = m.Author.Bot
	}
	return msg
}
