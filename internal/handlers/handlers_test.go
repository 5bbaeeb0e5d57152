package handlers

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latoulicious/ideaboard/internal/presence"
	"github.com/latoulicious/ideaboard/pkg/classify"
	"github.com/latoulicious/ideaboard/pkg/engine"
	"github.com/latoulicious/ideaboard/pkg/logging"
	"github.com/latoulicious/ideaboard/pkg/metrics"
)

func newState(guilds ...*discordgo.Guild) *discordgo.State {
	state := discordgo.NewState()
	state.User = &discordgo.User{ID: "bot"}
	state.Guilds = append(state.Guilds, guilds...)
	return state
}

func TestStateRegistry_Lookup(t *testing.T) {
	wave := &discordgo.Emoji{ID: "123", Name: "wave"}
	state := newState(
		&discordgo.Guild{ID: "g1", Emojis: []*discordgo.Emoji{nil, {ID: "1", Name: "one"}}},
		&discordgo.Guild{ID: "g2", Emojis: []*discordgo.Emoji{wave}},
	)
	reg := NewStateRegistry(state)

	got, ok := reg.Lookup("123")
	require.True(t, ok)
	assert.Same(t, wave, got)

	_, ok = reg.Lookup("404")
	assert.False(t, ok)
	_, ok = reg.Lookup("")
	assert.False(t, ok)

	var nilReg *StateRegistry
	_, ok = nilReg.Lookup("123")
	assert.False(t, ok)
}

func TestToMessage(t *testing.T) {
	msg := ToMessage(&discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "---IDEA--- hi",
		Author:    &discordgo.User{ID: "u1", Bot: true},
	})

	assert.Equal(t, classify.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "---IDEA--- hi",
		AuthorID:  "u1",
		AuthorBot: true,
	}, msg)

	assert.Empty(t, ToMessage(&discordgo.Message{ID: "m2"}).AuthorID)
}

func TestMessageHandler(t *testing.T) {
	reg := metrics.NewRegistry()
	e := engine.New(engine.Options{
		Allowlist: classify.Allowlist{"g1": {"c1"}},
		Metrics:   reg,
	})
	handle := MessageHandler(e, logging.NullLogger())
	session := &discordgo.Session{State: newState()}

	require.NotPanics(t, func() {
		handle(session, nil)
		handle(session, &discordgo.MessageCreate{})
		// the bot's own message
		handle(session, &discordgo.MessageCreate{Message: &discordgo.Message{
			GuildID: "g1", ChannelID: "c1", Content: "---IDEA--- x", Author: &discordgo.User{ID: "bot"},
		}})
		handle(session, &discordgo.MessageCreate{Message: &discordgo.Message{
			GuildID: "g1", ChannelID: "c1", Content: "just talking", Author: &discordgo.User{ID: "u1"},
		}})
	})

	// only the last message reached the engine
	assert.Equal(t, int64(1), reg.Snapshot().Counter(metrics.MessagesHandled, nil))
}

type fakeStatus struct{ calls int }

func (f *fakeStatus) UpdateStatusComplex(discordgo.UpdateStatusData) error {
	f.calls++
	return nil
}

func TestReadyHandler(t *testing.T) {
	status := &fakeStatus{}
	allow := classify.Allowlist{"g1": {"c1"}}
	handle := ReadyHandler(allow, presence.NewManager(status, allow, nil), logging.NullLogger())

	handle(nil, nil)
	handle(nil, &discordgo.Ready{})
	assert.Equal(t, 0, status.calls)

	handle(nil, &discordgo.Ready{User: &discordgo.User{ID: "bot", Username: "ideaboard"}})
	assert.Equal(t, 1, status.calls)
}
