package subtitles

import (
	"context"
	"fmt"
	"path/filepath"

	modules "github.com/slidecast/slidecast/internal/mod"
	"github.com/slidecast/slidecast/internal/subtitle"
	"github.com/slidecast/slidecast/internal/utils"
)

// Module implements subtitle track generation for narrated slideshows
type Module struct{}

// Params contains the parameters for subtitle generation
type Params struct {
	Input              string  `json:"input"`              // Path to narration text file
	Audio              string  `json:"audio"`              // Path to rendered narration WAV
	Output             string  `json:"output"`             // Path to output directory
	OutputFileName     string  `json:"outputFileName"`     // Output file name without extension (default: "subtitles")
	Mode               string  `json:"mode"`               // Caption mode: "line" or "word" (default: "line")
	MaxCharsPerLine    int     `json:"maxCharsPerLine"`    // Line budget for line mode (default: 56)
	Width              int     `json:"width"`              // Canvas width (default: 720)
	Height             int     `json:"height"`             // Canvas height (default: 1280)
	Title              string  `json:"title"`              // Document title
	OffsetMs           float64 `json:"offsetMs"`           // Early-highlight offset in burst mode (default: 100)
	SilenceThresholdDB float64 `json:"silenceThresholdDB"` // Silence threshold in dBFS (default: -35)
	MinSilenceMs       float64 `json:"minSilenceMs"`       // Minimum silence gap between bursts (default: 150)
	DurationSec        float64 `json:"durationSec"`        // Audio duration override for unreadable tracks
}

// New creates a new subtitles module
func New() modules.Module {
	return &Module{}
}

// Name returns the module name
func (m *Module) Name() string {
	return "subtitles"
}

// GetIO returns the module's input/output specification
func (m *Module) GetIO() modules.ModuleIO {
	return modules.ModuleIO{
		RequiredInputs: []modules.ModuleInput{
			{
				Name:        "input",
				Description: "Narration text file",
				Patterns:    []string{".txt"},
				Type:        string(modules.InputTypeFile),
			},
			{
				Name:        "audio",
				Description: "Rendered narration audio track (WAV)",
				Patterns:    []string{".wav"},
				Type:        string(modules.InputTypeFile),
			},
			{
				Name:        "output",
				Description: "Path to output directory",
				Type:        string(modules.InputTypeDirectory),
			},
		},
		OptionalInputs: []modules.ModuleInput{
			{
				Name:        "outputFileName",
				Description: "Output file name without extension (default: subtitles)",
				Type:        string(modules.InputTypeData),
			},
			{
				Name:        "mode",
				Description: "Caption mode: line or word (default: line)",
				Type:        string(modules.InputTypeData),
			},
			{
				Name:        "maxCharsPerLine",
				Description: "Maximum characters per caption line (default: 56)",
				Type:        string(modules.InputTypeData),
			},
			{
				Name:        "width",
				Description: "Canvas width in pixels (default: 720)",
				Type:        string(modules.InputTypeData),
			},
			{
				Name:        "height",
				Description: "Canvas height in pixels (default: 1280)",
				Type:        string(modules.InputTypeData),
			},
			{
				Name:        "offsetMs",
				Description: "Early-highlight start offset in milliseconds (default: 100)",
				Type:        string(modules.InputTypeData),
			},
			{
				Name:        "silenceThresholdDB",
				Description: "Silence threshold in dBFS (default: -35)",
				Type:        string(modules.InputTypeData),
			},
			{
				Name:        "minSilenceMs",
				Description: "Minimum silence gap between speech bursts (default: 150)",
				Type:        string(modules.InputTypeData),
			},
			{
				Name:        "durationSec",
				Description: "Audio duration override when the track can't be decoded",
				Type:        string(modules.InputTypeData),
			},
		},
		ProducedOutputs: []modules.ModuleOutput{
			{
				Name:        "subtitles",
				Description: "Time-coded ASS subtitle document",
				Patterns:    []string{".ass"},
				Type:        string(modules.OutputTypeFile),
			},
		},
	}
}

// Validate checks if the parameters are valid
func (m *Module) Validate(params map[string]interface{}) error {
	var p Params
	if err := modules.ParseParams(params, &p); err != nil {
		return err
	}

	if err := utils.ValidateInputPath(p.Input, p.Output, ""); err != nil {
		return err
	}
	if p.Audio == "" {
		return fmt.Errorf("audio path is required")
	}
	if err := utils.ValidateOutputPath(p.Output); err != nil {
		return err
	}

	if p.Mode != "" && p.Mode != string(subtitle.ModeLine) && p.Mode != string(subtitle.ModeWord) {
		return fmt.Errorf("mode must be %q or %q, got %q", subtitle.ModeLine, subtitle.ModeWord, p.Mode)
	}
	if p.MaxCharsPerLine < 0 {
		return fmt.Errorf("maxCharsPerLine must be positive, got %d", p.MaxCharsPerLine)
	}
	if p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("canvas dimensions must be positive, got %dx%d", p.Width, p.Height)
	}

	return nil
}

// Execute generates the subtitle document
func (m *Module) Execute(ctx context.Context, params map[string]interface{}) (modules.ModuleResult, error) {
	var p Params
	if err := modules.ParseParams(params, &p); err != nil {
		return modules.ModuleResult{}, err
	}

	if p.OutputFileName == "" {
		p.OutputFileName = "subtitles"
	}

	// Resolve paths that reference the run's output directory
	resolvedInput := utils.ResolveOutputPath(p.Input, p.Output)
	resolvedAudio := utils.ResolveOutputPath(p.Audio, p.Output)

	cfg := subtitle.DefaultConfig()
	if p.Mode != "" {
		cfg.Mode = subtitle.Mode(p.Mode)
	}
	if p.MaxCharsPerLine > 0 {
		cfg.MaxCharsPerLine = p.MaxCharsPerLine
	}
	if p.Width > 0 {
		cfg.Width = p.Width
	}
	if p.Height > 0 {
		cfg.Height = p.Height
	}
	if p.Title != "" {
		cfg.Title = p.Title
	}
	if p.OffsetMs > 0 {
		cfg.Allocator.OffsetMs = p.OffsetMs
	}
	if p.SilenceThresholdDB != 0 {
		cfg.Segmenter.SilenceThresholdDB = p.SilenceThresholdDB
	}
	if p.MinSilenceMs > 0 {
		cfg.Segmenter.MinSilenceMs = p.MinSilenceMs
	}
	if p.DurationSec > 0 {
		cfg.DurationSec = p.DurationSec
	}

	outPath := filepath.Join(p.Output, p.OutputFileName+".ass")

	utils.LogVerbose("Generating %s-mode subtitles for %s", cfg.Mode, resolvedInput)

	pipeline := subtitle.NewPipeline(cfg)
	path, err := pipeline.Generate(ctx, resolvedInput, resolvedAudio, outPath)
	if err != nil {
		return modules.ModuleResult{}, fmt.Errorf("subtitle generation failed: %w", err)
	}

	utils.LogSuccess("Generated subtitle document: %s", path)

	return modules.ModuleResult{
		Outputs: map[string]string{
			"subtitles": path,
		},
		Metadata: map[string]interface{}{
			"mode":   string(cfg.Mode),
			"canvas": fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		},
	}, nil
}
