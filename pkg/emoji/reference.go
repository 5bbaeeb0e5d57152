package emoji

// Kind tells the two reference forms apart
type Kind int

const (
	Unicode Kind = iota
	Custom
)

func (k Kind) String() string {
	if k == Custom {
		return "custom"
	}
	return "unicode"
}

// Reference is one emoji occurrence found in text
type Reference struct {
	Kind Kind
	// Glyph is the literal grapheme cluster for Unicode references
	Glyph string
	// ID, Name and Animated are set for Custom references
	ID       string
	Name     string
	Animated bool
	// Raw is the matched text, e.g. "<:wave:123>"
	Raw string
}

// UnicodeRef builds a Unicode reference
func UnicodeRef(glyph string) Reference {
	return Reference{Kind: Unicode, Glyph: glyph, Raw: glyph}
}

// CustomRef builds a Custom reference from its id and raw token
func CustomRef(id, raw string) Reference {
	ref := Reference{Kind: Custom, ID: id, Raw: raw}
	if m := customToken.FindStringSubmatch(raw); m != nil {
		ref.Animated = m[1] == "a"
		ref.Name = m[2]
	}
	return ref
}

// Key identifies a reference for de-duplication
func (r Reference) Key() string {
	if r.Kind == Custom {
		return "custom:" + r.ID
	}
	return "unicode:" + r.Glyph
}

// Dedupe keeps the first occurrence of every reference, preserving order
func Dedupe(refs []Reference) []Reference {
	if len(refs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(refs))
	out := make([]Reference, 0, len(refs))
	for _, ref := range refs {
		k := ref.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, ref)
	}
	return out
}
