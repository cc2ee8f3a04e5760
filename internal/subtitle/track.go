package subtitle

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strings"
)

// stylesFormat and eventsFormat are the fixed column declarations of the
// ASS v4.00+ format. Downstream renderers parse rows positionally against
// these lines, so they must not change.
const (
	stylesFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"
	eventsFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"
)

// TrackWriter renders timed captions into an ASS subtitle document. The
// header and style table are always written before any event, so even a
// run that produces zero events leaves an openable document behind.
type TrackWriter struct {
	Title  string
	Width  int // canvas width the subtitle coordinates are defined against
	Height int
	Styles []Style
	Mode   Mode
}

// NewTrackWriter builds a writer for the given canvas. The canvas size must
// match the video frame the captions will be burned into.
func NewTrackWriter(title string, width, height int, mode Mode) *TrackWriter {
	return &TrackWriter{
		Title:  title,
		Width:  width,
		Height: height,
		Styles: DefaultStyles(),
		Mode:   mode,
	}
}

// Write creates the subtitle document at path with one event row per timed
// token, styled by StyleFor. The file is written header first; any error
// after creation leaves at least the structural blocks in place.
func (w *TrackWriter) Write(path string, events []TimedToken) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create subtitle file: %w", err)
	}

	buf := bufio.NewWriter(f)
	w.writeHeader(buf)
	for i, ev := range events {
		w.writeEvent(buf, ev, StyleFor(ev.Text, i, w.Mode))
	}

	if err := buf.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close subtitle file: %w", err)
	}
	return nil
}

// WriteFallback creates a minimal valid document whose events describe a
// generation failure. The downstream merge step always receives a playable
// subtitle file, never a missing or headerless one.
func (w *TrackWriter) WriteFallback(path string, reason error) error {
	msg := "unknown error"
	if reason != nil {
		msg = reason.Error()
		if len(msg) > 50 {
			msg = msg[:50] + "..."
		}
	}
	events := []TimedToken{
		{Text: "Error: " + msg, Start: 0, End: 5},
		{Text: "Subtitle generation failed for this narration.", Start: 5, End: 10},
		{Text: "This is a fallback subtitle.", Start: 10, End: 300},
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create fallback subtitle file: %w", err)
	}

	buf := bufio.NewWriter(f)
	w.writeHeader(buf)
	for _, ev := range events {
		w.writeEvent(buf, ev, StyleDefault)
	}

	if err := buf.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write fallback subtitle file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close fallback subtitle file: %w", err)
	}
	return nil
}

// writeHeader emits the [Script Info] block, the style table and the
// [Events] format row. Writes to the buffered writer cannot fail until
// Flush, so the header is complete before any event is attempted.
func (w *TrackWriter) writeHeader(buf *bufio.Writer) {
	title := w.Title
	if title == "" {
		title = "Generated Subtitle"
	}
	fmt.Fprintf(buf, "[Script Info]\nTitle: %s\nScriptType: v4.00+\nPlayResX: %d\nPlayResY: %d\n\n", title, w.Width, w.Height)

	buf.WriteString("[V4+ Styles]\n")
	buf.WriteString(stylesFormat + "\n")
	for _, s := range w.Styles {
		bold := 0
		if s.Bold {
			bold = 1
		}
		fmt.Fprintf(buf, "Style: %s,%s,%d,%s,&H000000FF,%s,%s,%d,0,0,0,100,100,0,0,1,2,0,%d,%d,%d,%d,1\n",
			s.Name, s.Font, s.Size, s.Primary, s.Outline, s.Back, bold,
			s.Alignment, s.MarginL, s.MarginR, s.MarginV)
	}
	buf.WriteString("\n[Events]\n")
	buf.WriteString(eventsFormat + "\n")
}

// writeEvent emits one Dialogue row.
func (w *TrackWriter) writeEvent(buf *bufio.Writer, ev TimedToken, style string) {
	fmt.Fprintf(buf, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s\n",
		FormatTime(ev.Start), FormatTime(ev.End), style, EscapeText(ev.Text))
}

// EscapeText escapes the characters the ASS markup reserves: backslash and
// the braces that open and close inline override blocks.
func EscapeText(text string) string {
	text = strings.ReplaceAll(text, "\\", "\\\\")
	text = strings.ReplaceAll(text, "{", "\\{")
	text = strings.ReplaceAll(text, "}", "\\}")
	return text
}

// FormatTime renders seconds as H:MM:SS.cs, hours unpadded and centisecond
// precision, the exact timestamp shape ASS players require.
func FormatTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	cs := int(math.Round(sec * 100))
	h := cs / 360000
	cs %= 360000
	m := cs / 6000
	cs %= 6000
	s := cs / 100
	cs %= 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// ParseTime is the inverse of FormatTime, returning seconds.
func ParseTime(ts string) (float64, error) {
	var h, m, s, cs int
	if _, err := fmt.Sscanf(ts, "%d:%d:%d.%d", &h, &m, &s, &cs); err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(cs)/100, nil
}
