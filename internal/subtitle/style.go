package subtitle

import (
	"strings"
	"unicode"
)

// Mode selects the caption strategy for one generation run.
type Mode string

const (
	// ModeLine produces one caption event per wrapped line.
	ModeLine Mode = "line"
	// ModeWord produces one caption event per word, rendered with the
	// highlight style.
	ModeWord Mode = "word"
)

// Style names referenced by event rows. Every name here must have a row in
// the document's style table.
const (
	StyleDefault   = "Default"
	StyleLoud      = "Loud"
	StyleHighlight = "Highlight"
)

// Style is one named row of the document's style table. Colors use the ASS
// &HAABBGGRR form.
type Style struct {
	Name      string
	Font      string
	Size      int
	Primary   string
	Outline   string
	Back      string
	Bold      bool
	Alignment int
	MarginL   int
	MarginR   int
	MarginV   int
}

// DefaultStyles returns the standard style table: white Default for line
// captions, larger yellow Loud for emphatic text, and yellow Highlight for
// the current word in word mode.
func DefaultStyles() []Style {
	return []Style{
		{Name: StyleDefault, Font: "Arial", Size: 32, Primary: "&H00FFFFFF", Outline: "&H00000000", Back: "&H80000000", Bold: true, Alignment: 2, MarginL: 10, MarginR: 10, MarginV: 150},
		{Name: StyleLoud, Font: "Arial", Size: 36, Primary: "&H0000FFFF", Outline: "&H00000000", Back: "&H80000000", Bold: true, Alignment: 2, MarginL: 10, MarginR: 10, MarginV: 150},
		{Name: StyleHighlight, Font: "Arial", Size: 34, Primary: "&H0000FFFF", Outline: "&H00000000", Back: "&H80000000", Bold: true, Alignment: 2, MarginL: 10, MarginR: 10, MarginV: 150},
	}
}

// normalPalette holds the non-emphasis styles that line mode rotates
// through by caption position.
var normalPalette = []string{StyleDefault}

// StyleFor picks the style name for one caption, purely from its text and
// position. Emphatic text always gets the Loud style; otherwise word mode
// uses the constant Highlight style and line mode rotates the normal
// palette.
func StyleFor(text string, index int, mode Mode) string {
	if IsEmphatic(text) {
		return StyleLoud
	}
	if mode == ModeWord {
		return StyleHighlight
	}
	return normalPalette[index%len(normalPalette)]
}

// IsEmphatic reports whether caption text should be rendered with the
// emphasis style: it contains an exclamation mark, or it has letters and
// all of them are uppercase.
func IsEmphatic(text string) bool {
	if strings.Contains(text, "!") {
		return true
	}
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}
