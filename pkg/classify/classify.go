// Package classify decides whether an inbound message is an idea, a question,
// or something the bot should leave alone.
package classify

import "strings"

const (
	IdeaMarker     = "---IDEA---"
	QuestionMarker = "---QUESTION---"
)

// Decision is the outcome of classifying a message
type Decision int

const (
	Ignore Decision = iota
	Idea
	Question
)

func (d Decision) String() string {
	switch d {
	case Idea:
		return "idea"
	case Question:
		return "question"
	default:
		return "ignore"
	}
}

// Message is the part of a chat message the bot looks at
type Message struct {
	ID        string
	GuildID   string
	ChannelID string
	Content   string
	AuthorID  string
	AuthorBot bool
}

// Allowlist maps a server id to the channel ids monitored in it.
// It is built once at startup and only read afterwards.
type Allowlist map[string][]string

// Contains reports whether channelID is monitored for serverID
func (a Allowlist) Contains(serverID, channelID string) bool {
	for _, id := range a[serverID] {
		if id == channelID {
			return true
		}
	}
	return false
}

// Servers returns the number of servers with at least one channel
func (a Allowlist) Servers() int {
	n := 0
	for _, channels := range a {
		if len(channels) > 0 {
			n++
		}
	}
	return n
}

// Channels returns the total number of monitored channels
func (a Allowlist) Channels() int {
	n := 0
	for _, channels := range a {
		n += len(channels)
	}
	return n
}

// Classify returns Idea or Question when the message was posted in an
// allowlisted channel of a server and starts with the matching marker.
// Everything else, including direct messages, is Ignore.
func Classify(msg Message, allow Allowlist) Decision {
	if msg.GuildID == "" || !allow.Contains(msg.GuildID, msg.ChannelID) {
		return Ignore
	}

	switch {
	case strings.HasPrefix(msg.Content, IdeaMarker):
		return Idea
	case strings.HasPrefix(msg.Content, QuestionMarker):
		return Question
	default:
		return Ignore
	}
}
