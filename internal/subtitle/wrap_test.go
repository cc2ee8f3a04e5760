package subtitle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxChars int
		want     []string
	}{
		{
			name:     "fits on one line",
			text:     "short text",
			maxChars: 56,
			want:     []string{"short text"},
		},
		{
			name:     "breaks at last space in window",
			text:     "one two three four",
			maxChars: 9,
			want:     []string{"one two", "three", "four"},
		},
		{
			name:     "hard break when no space in window",
			text:     "abcdefghij",
			maxChars: 4,
			want:     []string{"abcd", "efgh", "ij"},
		},
		{
			name:     "empty text",
			text:     "",
			maxChars: 10,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Wrap(tt.text, tt.maxChars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWrapRejectsNonPositiveBudget(t *testing.T) {
	_, err := Wrap("text", 0)
	assert.Error(t, err)

	_, err = Wrap("text", -5)
	assert.Error(t, err)
}

func TestWrapBoundsAndReconstruction(t *testing.T) {
	texts := []string{
		"The quick brown fox jumps over the lazy dog near the riverbank",
		"a b c d e f g h i j k l m n o p q r s t u v w x y z",
		"single",
		"This narration talks about slideshows and word timing at length",
	}

	for _, text := range texts {
		for _, maxChars := range []int{5, 12, 30, 56} {
			lines, err := Wrap(text, maxChars)
			require.NoError(t, err)

			for _, line := range lines {
				assert.LessOrEqual(t, len(line), maxChars,
					"line %q exceeds budget %d", line, maxChars)
			}

			// Breaks happen at spaces for these inputs, so rejoining with a
			// single space reconstructs the trimmed original.
			if maxChars >= longestWordLen(text) {
				assert.Equal(t, text, strings.Join(lines, " "))
			}
		}
	}
}

func longestWordLen(text string) int {
	longest := 0
	for _, w := range strings.Fields(text) {
		if len(w) > longest {
			longest = len(w)
		}
	}
	return longest
}
