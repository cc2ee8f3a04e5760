// Package subtitle implements the caption timing and layout engine: text
// normalization, line wrapping, speech-burst detection, timing allocation
// and ASS document rendering. All state lives within one Generate call;
// nothing is shared across runs.
package subtitle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/slidecast/slidecast/internal/utils"
)

// DefaultText substitutes for a missing or empty narration text file. An
// empty placeholder caption is strictly better than no subtitle track.
const DefaultText = "This video was generated automatically. Please enjoy the content."

// Config collects everything one generation run needs beyond its file paths.
type Config struct {
	Mode            Mode
	MaxCharsPerLine int
	Width           int
	Height          int
	Title           string
	DefaultText     string
	DurationSec     float64 // overrides the decoded audio duration when > 0
	Segmenter       SegmenterConfig
	Allocator       AllocatorConfig
}

// DefaultConfig returns line-mode generation for a 720x1280 canvas with the
// standard tuning constants.
func DefaultConfig() Config {
	return Config{
		Mode:            ModeLine,
		MaxCharsPerLine: 56,
		Width:           720,
		Height:          1280,
		DefaultText:     DefaultText,
		Segmenter:       DefaultSegmenterConfig(),
		Allocator:       DefaultAllocatorConfig(),
	}
}

// Pipeline runs the full text-to-subtitle-document flow. One invocation is
// synchronous and run-to-completion; the context is only checked between
// the coarse stages, never inside the allocation loops.
type Pipeline struct {
	cfg Config
}

// NewPipeline builds a pipeline, filling zero-valued config fields with the
// defaults.
func NewPipeline(cfg Config) *Pipeline {
	def := DefaultConfig()
	if cfg.Mode == "" {
		cfg.Mode = def.Mode
	}
	if cfg.MaxCharsPerLine == 0 {
		cfg.MaxCharsPerLine = def.MaxCharsPerLine
	}
	if cfg.Width == 0 {
		cfg.Width = def.Width
	}
	if cfg.Height == 0 {
		cfg.Height = def.Height
	}
	if cfg.DefaultText == "" {
		cfg.DefaultText = def.DefaultText
	}
	if cfg.Segmenter == (SegmenterConfig{}) {
		cfg.Segmenter = def.Segmenter
	}
	if cfg.Allocator == (AllocatorConfig{}) {
		cfg.Allocator = def.Allocator
	}
	return &Pipeline{cfg: cfg}
}

// Generate produces the subtitle document for one narration: textPath holds
// the raw narration text, audioPath the rendered voice track, outPath the
// document destination. The caller always gets either a valid document path
// or an error; a missing or undecodable input degrades to the fallback
// document rather than failing the run.
func (p *Pipeline) Generate(ctx context.Context, textPath, audioPath, outPath string) (string, error) {
	if p.cfg.MaxCharsPerLine <= 0 {
		return "", fmt.Errorf("maxCharsPerLine must be positive, got %d", p.cfg.MaxCharsPerLine)
	}
	if p.cfg.Mode != ModeLine && p.cfg.Mode != ModeWord {
		return "", fmt.Errorf("unknown caption mode %q", p.cfg.Mode)
	}

	if dir := filepath.Dir(outPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	writer := NewTrackWriter(p.cfg.Title, p.cfg.Width, p.cfg.Height, p.cfg.Mode)

	tokens, err := p.tokens(textPath)
	if err != nil {
		return p.fallback(writer, outPath, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	bursts, duration, err := p.analyzeAudio(audioPath)
	if err != nil {
		return p.fallback(writer, outPath, err)
	}

	timed := Allocate(tokens, bursts, duration, p.cfg.Allocator)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := writer.Write(outPath, timed); err != nil {
		return p.fallback(writer, outPath, err)
	}

	utils.LogVerbose("Wrote %d caption events to %s", len(timed), outPath)
	return outPath, nil
}

// tokens loads and normalizes the narration text and splits it according to
// the caption mode. A missing or empty text file substitutes the default
// narration text; only a wrap configuration error propagates.
func (p *Pipeline) tokens(textPath string) ([]string, error) {
	text := p.cfg.DefaultText
	data, err := os.ReadFile(textPath)
	if err != nil {
		utils.LogWarning("Narration text %s not readable, using default text: %v", textPath, err)
	} else if strings.TrimSpace(string(data)) == "" {
		utils.LogWarning("Narration text %s is empty, using default text", textPath)
	} else {
		text = string(data)
	}

	normalized := Normalize(text)
	if normalized == "" {
		normalized = Normalize(p.cfg.DefaultText)
	}

	if p.cfg.Mode == ModeWord {
		return SplitWords(normalized), nil
	}
	return Wrap(normalized, p.cfg.MaxCharsPerLine)
}

// analyzeAudio detects speech bursts in the narration track. An unreadable
// track with a configured duration override degrades to fallback timing; an
// unreadable track with no known duration is an error the caller turns into
// the fallback document.
func (p *Pipeline) analyzeAudio(audioPath string) ([]Burst, float64, error) {
	bursts, duration, err := SegmentFile(audioPath, p.cfg.Segmenter)
	if err != nil {
		if p.cfg.DurationSec > 0 {
			utils.LogWarning("Audio analysis unavailable (%v), using proportional timing over %.2fs", err, p.cfg.DurationSec)
			return nil, p.cfg.DurationSec, nil
		}
		return nil, 0, fmt.Errorf("audio track unusable and no duration configured: %w", err)
	}
	if p.cfg.DurationSec > 0 {
		duration = p.cfg.DurationSec
	}
	if len(bursts) == 0 {
		utils.LogVerbose("No speech bursts detected in %s, falling back to proportional timing", audioPath)
	}
	return bursts, duration, nil
}

// fallback writes the error document and reports the original failure only
// when even that write fails. A valid fallback path is a success from the
// caller's point of view.
func (p *Pipeline) fallback(writer *TrackWriter, outPath string, cause error) (string, error) {
	utils.LogError("Subtitle generation failed: %v", cause)
	if werr := writer.WriteFallback(outPath, cause); werr != nil {
		return "", fmt.Errorf("generation failed (%v) and fallback write failed: %w", cause, werr)
	}
	utils.LogWarning("Created fallback subtitle document at %s", outPath)
	return outPath, nil
}
