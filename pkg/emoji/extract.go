package emoji

import (
	"regexp"
	"strings"

	"github.com/rivo/uniseg"
)

// customToken matches a custom emoji token anchored at the start of the input:
// "<", optional "a" for animated, ":", name, ":", numeric id, ">".
var customToken = regexp.MustCompile(`^<(a?):(\w+):(\d+)>`)

// Extract returns every emoji reference in text in order of appearance.
// Custom tokens and Unicode emoji are interleaved exactly as they occur.
// Malformed tokens are treated as plain text. Extract has no state: the same
// text always yields the same references.
func Extract(text string) []Reference {
	var refs []Reference

	rest := text
	state := -1
	for len(rest) > 0 {
		if strings.HasPrefix(rest, "<") {
			if m := customToken.FindStringSubmatch(rest); m != nil {
				refs = append(refs, Reference{
					Kind:     Custom,
					ID:       m[3],
					Name:     m[2],
					Animated: m[1] == "a",
					Raw:      m[0],
				})
				rest = rest[len(m[0]):]
				state = -1
				continue
			}
		}

		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if isEmojiCluster(cluster) {
			refs = append(refs, UnicodeRef(cluster))
		}
	}

	return refs
}

// ExtractUnique is Extract followed by Dedupe
func ExtractUnique(text string) []Reference {
	return Dedupe(Extract(text))
}
