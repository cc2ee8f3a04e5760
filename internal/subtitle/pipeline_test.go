package subtitle

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineLineMode(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "voice.txt")
	audioPath := filepath.Join(dir, "voice.wav")
	outPath := filepath.Join(dir, "subtitles.ass")

	require.NoError(t, os.WriteFile(textPath,
		[]byte("This narration has enough words to wrap across several caption lines of the slideshow."), 0644))
	writeTestWAV(t, audioPath,
		[2]float64{600, 0.5}, [2]float64{300, 0}, [2]float64{600, 0.5})

	p := NewPipeline(Config{Mode: ModeLine, MaxCharsPerLine: 30})
	path, err := p.Generate(context.Background(), textPath, audioPath, outPath)
	require.NoError(t, err)
	assert.Equal(t, outPath, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)

	assert.Contains(t, doc, "[Script Info]")
	assert.Contains(t, doc, "PlayResX: 720")
	assert.GreaterOrEqual(t, strings.Count(doc, "Dialogue:"), 2)
}

func TestPipelineWordMode(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "voice.txt")
	audioPath := filepath.Join(dir, "voice.wav")
	outPath := filepath.Join(dir, "words.ass")

	require.NoError(t, os.WriteFile(textPath, []byte("counting one two three"), 0644))
	writeTestWAV(t, audioPath, [2]float64{1500, 0.5})

	p := NewPipeline(Config{Mode: ModeWord, Width: 1080, Height: 1920})
	path, err := p.Generate(context.Background(), textPath, audioPath, outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)

	assert.Contains(t, doc, "PlayResX: 1080")
	assert.Equal(t, 4, strings.Count(doc, "Dialogue:"))
	assert.Equal(t, 4, strings.Count(doc, ",Highlight,"))
}

func TestPipelineMissingTextUsesDefault(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "voice.wav")
	outPath := filepath.Join(dir, "subtitles.ass")
	writeTestWAV(t, audioPath, [2]float64{1000, 0.5})

	p := NewPipeline(DefaultConfig())
	path, err := p.Generate(context.Background(), filepath.Join(dir, "absent.txt"), audioPath, outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "generated automatically")
}

func TestPipelineEmptyTextUsesDefault(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "voice.txt")
	audioPath := filepath.Join(dir, "voice.wav")
	outPath := filepath.Join(dir, "subtitles.ass")

	require.NoError(t, os.WriteFile(textPath, []byte("   \n\t"), 0644))
	writeTestWAV(t, audioPath, [2]float64{1000, 0.5})

	p := NewPipeline(DefaultConfig())
	path, err := p.Generate(context.Background(), textPath, audioPath, outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "generated automatically")
}

func TestPipelineMissingAudioWritesFallback(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "voice.txt")
	outPath := filepath.Join(dir, "subtitles.ass")
	require.NoError(t, os.WriteFile(textPath, []byte("some narration"), 0644))

	p := NewPipeline(DefaultConfig())
	path, err := p.Generate(context.Background(), textPath, filepath.Join(dir, "absent.wav"), outPath)
	require.NoError(t, err)
	assert.Equal(t, outPath, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)

	// Openable fallback document with header, styles and error events.
	assert.Contains(t, doc, "[Script Info]")
	assert.Contains(t, doc, "[V4+ Styles]")
	assert.GreaterOrEqual(t, strings.Count(doc, "Dialogue:"), 1)
	assert.Contains(t, doc, "This is a fallback subtitle.")
}

func TestPipelineMissingAudioWithDurationOverride(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "voice.txt")
	outPath := filepath.Join(dir, "subtitles.ass")
	require.NoError(t, os.WriteFile(textPath, []byte("HELLO WORLD!!!"), 0644))

	cfg := DefaultConfig()
	cfg.Mode = ModeWord
	cfg.DurationSec = 2.4
	p := NewPipeline(cfg)

	path, err := p.Generate(context.Background(), textPath, filepath.Join(dir, "absent.wav"), outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)

	// Proportional timing over the configured duration, emphasis styling for
	// both shouted words.
	assert.Contains(t, doc, "Dialogue: 0,0:00:00.00,0:00:01.10,Loud,,0,0,0,,HELLO")
	assert.Contains(t, doc, "Dialogue: 0,0:00:00.90,0:00:02.10,Loud,,0,0,0,,WORLD!!!")
}

func TestPipelineRejectsBadConfig(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	p.cfg.MaxCharsPerLine = -1

	outPath := filepath.Join(t.TempDir(), "subtitles.ass")
	_, err := p.Generate(context.Background(), "x.txt", "x.wav", outPath)
	assert.Error(t, err)
	assert.NoFileExists(t, outPath)
}

func TestPipelineCancelledContext(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "voice.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("words"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(DefaultConfig())
	_, err := p.Generate(ctx, textPath, filepath.Join(dir, "voice.wav"), filepath.Join(dir, "out.ass"))
	assert.Error(t, err)
}
