package subtitle

import (
	"fmt"
	"strings"
)

// Wrap splits normalized text into caption lines of at most maxChars
// characters. It fills greedily, breaking at the last space inside the
// window, or hard-breaking at exactly maxChars when a single word exceeds
// the budget. A non-positive maxChars is a configuration error.
func Wrap(text string, maxChars int) ([]string, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("maxChars must be positive, got %d", maxChars)
	}

	var lines []string
	remaining := strings.TrimSpace(text)
	for remaining != "" {
		if len(remaining) <= maxChars {
			lines = append(lines, remaining)
			break
		}
		splitAt := strings.LastIndex(remaining[:maxChars], " ")
		if splitAt == -1 {
			splitAt = maxChars
		}
		lines = append(lines, remaining[:splitAt])
		remaining = strings.TrimSpace(remaining[splitAt:])
	}
	return lines, nil
}
