package emoji

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Registry looks up custom emoji by id. It is owned by the gateway side and
// may change at any time; Resolve only reads from it.
type Registry interface {
	Lookup(id string) (*discordgo.Emoji, bool)
}

// Reaction is something that can be added to a message: either a Unicode
// glyph or a custom emoji known to the registry.
type Reaction struct {
	Glyph string
	Emoji *discordgo.Emoji
}

// GlyphReaction wraps a Unicode glyph
func GlyphReaction(glyph string) Reaction {
	return Reaction{Glyph: glyph}
}

// APIName is the value the Discord API expects when adding the reaction
func (r Reaction) APIName() string {
	if r.Emoji != nil {
		return r.Emoji.APIName()
	}
	return r.Glyph
}

// GlyphReactions wraps each glyph in a Reaction
func GlyphReactions(glyphs ...string) []Reaction {
	out := make([]Reaction, 0, len(glyphs))
	for _, g := range glyphs {
		out = append(out, GlyphReaction(g))
	}
	return out
}

// Resolve turns references into reactions. Unicode references are used as
// they are; Custom references are looked up in reg and silently dropped when
// the id is unknown, which is expected whenever the emoji belongs to a server
// the bot is not in. Order is preserved.
func Resolve(refs []Reference, reg Registry) []Reaction {
	out := make([]Reaction, 0, len(refs))
	for _, ref := range refs {
		switch ref.Kind {
		case Unicode:
			out = append(out, GlyphReaction(ref.Glyph))
		case Custom:
			if reg == nil {
				continue
			}
			if e, ok := reg.Lookup(ref.ID); ok && e != nil {
				out = append(out, Reaction{Emoji: e})
			}
		}
	}
	return out
}

// MapRegistry is a Registry backed by a map, safe for concurrent use
type MapRegistry struct {
	mu     sync.RWMutex
	emojis map[string]*discordgo.Emoji
}

// NewMapRegistry creates a registry holding the given emoji
func NewMapRegistry(emojis ...*discordgo.Emoji) *MapRegistry {
	r := &MapRegistry{emojis: make(map[string]*discordgo.Emoji, len(emojis))}
	for _, e := range emojis {
		r.Put(e)
	}
	return r
}

// Put adds or replaces an emoji
func (r *MapRegistry) Put(e *discordgo.Emoji) {
	if e == nil || e.ID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emojis[e.ID] = e
}

// Lookup implements Registry
func (r *MapRegistry) Lookup(id string) (*discordgo.Emoji, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.emojis[id]
	return e, ok
}

// Len returns the number of registered emoji
func (r *MapRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.emojis)
}
