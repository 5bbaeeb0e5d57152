// Package emoji finds emoji in message text and turns them into reactions.
//
// Two lexical forms are recognized in a single left-to-right pass:
//
//   - custom server emoji tokens such as <:wave:123> or <a:party:456>
//   - Unicode emoji grapheme clusters, including flags, keycaps, skin tone
//     variants and ZWJ sequences
//
// Extraction is purely textual. Custom references only become usable
// reactions once Resolve finds their id in a Registry; references the
// registry does not know are dropped.
//
// The Unicode emoji tables are pinned to the release named by
// UnicodeVersion so results do not drift with the Go toolchain.
package emoji
