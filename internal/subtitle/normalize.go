package subtitle

import (
	"regexp"
	"strings"

	"github.com/forPelevin/gomoji"
)

// digitEmoji maps keycap digit emoji to their ASCII digits. The mapping must
// run before generic emoji removal, otherwise the digit information is lost
// together with the glyph.
var digitEmoji = map[string]string{
	"0️⃣": "0", "1️⃣": "1", "2️⃣": "2", "3️⃣": "3", "4️⃣": "4",
	"5️⃣": "5", "6️⃣": "6", "7️⃣": "7", "8️⃣": "8", "9️⃣": "9",
}

var (
	nonASCII   = regexp.MustCompile(`[^\x00-\x7F]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Normalize prepares narration text for caption rendering: keycap digit emoji
// become plain digits, remaining emoji are removed outright, any other
// non-ASCII run is replaced with a single space so adjacent words don't fuse,
// and whitespace is collapsed. The result is an ASCII-only, single-spaced,
// trimmed string. Normalize never fails; empty input yields an empty string.
func Normalize(text string) string {
	for glyph, digit := range digitEmoji {
		text = strings.ReplaceAll(text, glyph, digit)
	}
	text = gomoji.RemoveEmojis(text)
	text = nonASCII.ReplaceAllString(text, " ")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SplitWords returns the whitespace-separated words of a normalized string,
// in narration order. Word order drives caption order downstream.
func SplitWords(text string) []string {
	return strings.Fields(text)
}
