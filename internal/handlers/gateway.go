package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// threadArchiveMinutes is how long a discussion thread stays open without activity
const threadArchiveMinutes = 24 * 60

// SessionGateway performs the bot's side effects through a Discord session
type SessionGateway struct {
	session *discordgo.Session
}

// NewSessionGateway wraps a session
func NewSessionGateway(s *discordgo.Session) *SessionGateway {
	return &SessionGateway{session: s}
}

// AddReaction adds an emoji reaction to a message
func (g *SessionGateway) AddReaction(_ context.Context, channelID, messageID, emojiName string) error {
	return g.session.MessageReactionAdd(channelID, messageID, emojiName)
}

// StartThread opens a public thread on a message
func (g *SessionGateway) StartThread(_ context.Context, channelID, messageID, name string) error {
	_, err := g.session.MessageThreadStart(channelID, messageID, name, threadArchiveMinutes)
	return err
}

// StateRegistry resolves custom emoji from the session's state cache, which
// discordgo keeps up to date from guild create and emoji update events.
type StateRegistry struct {
	state *discordgo.State
}

// NewStateRegistry wraps a state cache
func NewStateRegistry(state *discordgo.State) *StateRegistry {
	return &StateRegistry{state: state}
}

// Lookup finds a custom emoji by id in any guild the bot is in
func (r *StateRegistry) Lookup(id string) (*discordgo.Emoji, bool) {
	if r == nil || r.state == nil || id == "" {
		return nil, false
	}

	r.state.RLock()
	defer r.state.RUnlock()

	for _, guild := range r.state.Guilds {
		if guild == nil {
			continue
		}
		for _, e := range guild.Emojis {
			if e != nil && e.ID == id {
				return e, true
			}
		}
	}
	return nil, false
}
