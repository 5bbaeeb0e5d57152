package emoji

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raws(refs []Reference) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Raw)
	}
	return out
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty",
			text: "",
			want: []string{},
		},
		{
			name: "plain text",
			text: "no emoji here, just 123 and # and *",
			want: []string{},
		},
		{
			name: "unicode then custom",
			text: "---QUESTION--- is this 🎉 or <:wave:123>?",
			want: []string{"🎉", "<:wave:123>"},
		},
		{
			name: "custom and unicode interleaved",
			text: "<:one:1> 😀 <a:two:2> 🚀",
			want: []string{"<:one:1>", "😀", "<a:two:2>", "🚀"},
		},
		{
			name: "adjacent tokens",
			text: "<:one:1><:two:2>✅",
			want: []string{"<:one:1>", "<:two:2>", "✅"},
		},
		{
			name: "flag is one cluster",
			text: "from 🇯🇵 with love",
			want: []string{"🇯🇵"},
		},
		{
			name: "skin tone stays attached",
			text: "👍🏽",
			want: []string{"👍🏽"},
		},
		{
			name: "zwj family is one cluster",
			text: "\U0001F468\u200d\U0001F469\u200d\U0001F467!",
			want: []string{"\U0001F468\u200d\U0001F469\u200d\U0001F467"},
		},
		{
			name: "keycap",
			text: "pick 1️⃣ or 2",
			want: []string{"1️⃣"},
		},
		{
			name: "text default needs variation selector",
			text: "© vs ©️ and ❤ vs ❤️",
			want: []string{"©️", "❤️"},
		},
		{
			name: "text default with skin tone",
			text: "☝\U0001F3FB",
			want: []string{"☝\U0001F3FB"},
		},
		{
			name: "duplicates are kept by Extract",
			text: "🎉🎉",
			want: []string{"🎉", "🎉"},
		},
		{
			name: "malformed custom tokens",
			text: "<:wave:abc> <wave:123> <:wave:123 <::123> <:wa ve:1> <b:x:1>",
			want: []string{},
		},
		{
			name: "custom token after stray bracket",
			text: "<<:wave:9>>",
			want: []string{"<:wave:9>"},
		},
		{
			name: "invalid utf-8",
			text: "\xff\xfe🔥\xff",
			want: []string{"🔥"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []Reference
			require.NotPanics(t, func() { got = Extract(tt.text) })
			assert.Equal(t, tt.want, raws(got))
		})
	}
}

func TestExtract_CustomFields(t *testing.T) {
	refs := Extract("<a:party_parrot:112233> <:wave:42>")
	require.Len(t, refs, 2)

	assert.Equal(t, Custom, refs[0].Kind)
	assert.Equal(t, "112233", refs[0].ID)
	assert.Equal(t, "party_parrot", refs[0].Name)
	assert.True(t, refs[0].Animated)

	assert.Equal(t, "42", refs[1].ID)
	assert.Equal(t, "wave", refs[1].Name)
	assert.False(t, refs[1].Animated)
}

func TestExtract_Idempotent(t *testing.T) {
	text := "🎉 <:wave:123> 🇫🇷 👍🏽 <a:spin:7> 🎉"
	first := Extract(text)
	second := Extract(text)
	assert.Equal(t, first, second)
}

func TestExtractUnique(t *testing.T) {
	refs := ExtractUnique("🎉 <:wave:1> 🎉 <:hi:1> 🚀 <:wave:2>")
	assert.Equal(t, []string{"🎉", "<:wave:1>", "🚀", "<:wave:2>"}, raws(refs))
}

func TestDedupe_Empty(t *testing.T) {
	assert.Nil(t, Dedupe(nil))
}

func TestCustomRef(t *testing.T) {
	ref := CustomRef("99", "<a:dance:99>")
	assert.Equal(t, Custom, ref.Kind)
	assert.Equal(t, "dance", ref.Name)
	assert.True(t, ref.Animated)
	assert.Equal(t, "custom:99", ref.Key())
	assert.Equal(t, "unicode:🎉", UnicodeRef("🎉").Key())
}

func TestTablesSorted(t *testing.T) {
	for name, table := range map[string][]runeRange{
		"presentation": presentationRanges,
		"text default": textDefaultRanges,
	} {
		for i, r := range table {
			assert.LessOrEqualf(t, r.lo, r.hi, "%s[%d]", name, i)
			if i > 0 {
				assert.Lessf(t, table[i-1].hi, r.lo, "%s[%d] overlaps previous range", name, i)
			}
		}
	}
}

func TestTablesDisjoint(t *testing.T) {
	for _, r := range textDefaultRanges {
		for c := r.lo; c <= r.hi; c++ {
			assert.Falsef(t, isPresentation(c), "%U is in both tables", c)
		}
	}
}

func TestIsEmojiCluster(t *testing.T) {
	assert.True(t, isEmojiCluster("✅"))
	assert.True(t, isEmojiCluster("❌"))
	assert.True(t, isEmojiCluster("🇦"))
	assert.False(t, isEmojiCluster(""))
	assert.False(t, isEmojiCluster("a"))
	assert.False(t, isEmojiCluster("7"))
	assert.False(t, isEmojiCluster("™"))
	assert.True(t, isEmojiCluster("™️"))
}
