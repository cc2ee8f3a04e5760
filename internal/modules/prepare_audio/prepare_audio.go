package prepareaudio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	modules "github.com/slidecast/slidecast/internal/mod"
	"github.com/slidecast/slidecast/internal/utils"
)

// execCommand allows us to mock exec.Command in tests
var execCommand = exec.Command

// Module converts a rendered narration track into an analyzable WAV
type Module struct{}

// Params contains the parameters for audio preparation
type Params struct {
	Input      string `json:"input"`      // Path to input audio or video file
	Output     string `json:"output"`     // Path to output directory
	OutputName string `json:"outputName"` // Custom output filename (default: voice.wav)
	SampleRate int    `json:"sampleRate"` // Sample rate in Hz (default: 16000)
	Channels   int    `json:"channels"`   // Number of audio channels (default: 1)
}

// New creates a new prepare audio module
func New() modules.Module {
	return &Module{}
}

// Name returns the module name
func (m *Module) Name() string {
	return "prepareaudio"
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

	if err := utils.ValidateOutputPath(p.Output); err != nil {
		return err
	}

	// Resolve the input path if it contains ${output}
	resolvedInput := utils.ResolveOutputPath(p.Input, p.Output)

	// Validate the input container if it already exists on disk
	fileInfo, err := os.Stat(resolvedInput)
	if err == nil && !fileInfo.IsDir() {
		if err := utils.ValidateFileExtension(resolvedInput, []string{".wav", ".mp3", ".m4a", ".aac", ".mp4", ".mov"}); err != nil {
			return err
		}
	}

	if p.OutputName != "" {
		if err := utils.ValidateFileExtension(p.OutputName, []string{".wav"}); err != nil {
			return err
		}
	}

	// Validate FFmpeg dependency
	if err := utils.ValidateRequiredDependency("ffmpeg"); err != nil {
		return err
	}

	return nil
}

// Execute resamples the narration track to a mono PCM WAV
func (m *Module) Execute(ctx context.Context, params map[string]interface{}) (modules.ModuleResult, error) {
	var p Params
	if err := modules.ParseParams(params, &p); err != nil {
		return modules.ModuleResult{}, err
	}

	// Set default values
	if p.SampleRate == 0 {
		p.SampleRate = 16000
	}
	if p.Channels == 0 {
		p.Channels = 1
	}
	if p.OutputName == "" {
		p.OutputName = "voice.wav"
	}

	if p.Output == "" {
		return modules.ModuleResult{}, fmt.Errorf("output directory path is required")
	}

	// Resolve the input path if it contains ${output}
	resolvedInput := utils.ResolveOutputPath(p.Input, p.Output)

	if _, err := os.Stat(resolvedInput); err != nil {
		return modules.ModuleResult{}, fmt.Errorf("failed to access input: %w", err)
	}

	if err := os.MkdirAll(p.Output, 0755); err != nil {
		return modules.ModuleResult{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	audioPath := filepath.Join(p.Output, p.OutputName)

	utils.LogVerbose("Preparing narration audio from %s to %s", resolvedInput, audioPath)

	// Resample with ffmpeg
	cmd := execCommand(
		"ffmpeg",
		"-i", resolvedInput,
		"-vn",
		"-ar", fmt.Sprintf("%d", p.SampleRate),
		"-ac", fmt.Sprintf("%d", p.Channels),
		"-c:a", "pcm_s16le",
		audioPath,
		"-y",
		"-loglevel", "error",
	)

	// Redirect stdout and stderr to suppress output
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return modules.ModuleResult{}, fmt.Errorf("ffmpeg command failed: %w", err)
	}

	utils.LogSuccess("Prepared narration audio at %s", audioPath)
	return modules.ModuleResult{
		Outputs: map[string]string{
			"audio": audioPath,
		},
	}, nil
}

// GetIO returns the module's input/output specification
func (m *Module) GetIO() modules.ModuleIO {
	return modules.ModuleIO{
		RequiredInputs: []modules.ModuleInput{
			{
				Name:        "input",
				Description: "Path to rendered narration audio or video file",
				Patterns:    []string{".wav", ".mp3", ".m4a", ".aac", ".mp4", ".mov"},
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
				Name:        "outputName",
				Description: "Custom output filename (default: voice.wav)",
				Type:        string(modules.InputTypeData),
			},
			{
				Name:        "sampleRate",
				Description: "Sample rate in Hz (default: 16000)",
				Type:        string(modules.InputTypeData),
			},
			{
				Name:        "channels",
				Description: "Number of audio channels (default: 1)",
				Type:        string(modules.InputTypeData),
			},
		},
		ProducedOutputs: []modules.ModuleOutput{
			{
				Name:        "audio",
				Description: "Mono PCM WAV ready for burst analysis",
				Patterns:    []string{".wav"},
				Type:        string(modules.OutputTypeFile),
			},
		},
	}
}
