package normalizetext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	modules "github.com/slidecast/slidecast/internal/mod"
	"github.com/slidecast/slidecast/internal/subtitle"
	"github.com/slidecast/slidecast/internal/utils"
)

// Module implements narration text normalization
type Module struct{}

// Params contains the parameters for text normalization
type Params struct {
	Input           string `json:"input"`           // Path to input text file
	Output          string `json:"output"`          // Path to output directory
	CleanFileSuffix string `json:"cleanFileSuffix"` // Suffix for normalized files (default: "_clean")
	OutputFileName  string `json:"outputFileName"`  // Custom output file name (without extension)
}

// New creates a new normalize text module
func New() modules.Module {
	return &Module{}
}

// Name returns the module name
func (m *Module) Name() string {
	return "normalizetext"
}

// GetIO returns the module's input/output specification
func (m *Module) GetIO() modules.ModuleIO {
	return modules.ModuleIO{
		RequiredInputs: []modules.ModuleInput{
			{
				Name:        "input",
				Description: "Path to input narration text file",
				Patterns:    []string{".txt"},
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
				Name:        "cleanFileSuffix",
				Description: "Suffix for normalized files (default: _clean)",
				Type:        string(modules.InputTypeData),
			},
			{
				Name:        "outputFileName",
				Description: "Custom output file name (without extension)",
				Type:        string(modules.InputTypeData),
			},
		},
		ProducedOutputs: []modules.ModuleOutput{
			{
				Name:        "normalized",
				Description: "ASCII-only narration text",
				Patterns:    []string{".txt"},
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

	if err := utils.ValidateOutputPath(p.Output); err != nil {
		return err
	}

	return nil
}

// Execute normalizes a narration text file
func (m *Module) Execute(ctx context.Context, params map[string]interface{}) (modules.ModuleResult, error) {
	var p Params
	if err := modules.ParseParams(params, &p); err != nil {
		return modules.ModuleResult{}, err
	}

	// Set default values
	if p.CleanFileSuffix == "" {
		p.CleanFileSuffix = "_clean"
	}

	if err := os.MkdirAll(p.Output, 0755); err != nil {
		return modules.ModuleResult{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Resolve the input path if it contains ${output}
	resolvedInput := utils.ResolveOutputPath(p.Input, p.Output)

	fileInfo, err := os.Stat(resolvedInput)
	if err != nil {
		return modules.ModuleResult{}, fmt.Errorf("input file not found: %w", err)
	}
	if fileInfo.IsDir() {
		return modules.ModuleResult{}, fmt.Errorf("input must be a file, not a directory: %s", resolvedInput)
	}

	content, err := utils.ReadTextFile(resolvedInput)
	if err != nil {
		return modules.ModuleResult{}, fmt.Errorf("failed to read input file: %w", err)
	}

	normalized := subtitle.Normalize(content)
	if normalized == "" {
		utils.LogWarning("Normalization removed all content from %s", resolvedInput)
	}

	// Determine output filename
	var outputBaseName string
	if p.OutputFileName != "" {
		outputBaseName = p.OutputFileName
	} else {
		filename := filepath.Base(resolvedInput)
		outputBaseName = filename[:len(filename)-len(filepath.Ext(filename))]
	}

	outputPath := filepath.Join(p.Output, outputBaseName+p.CleanFileSuffix+".txt")

	if err := os.WriteFile(outputPath, []byte(normalized+"\n"), 0644); err != nil {
		return modules.ModuleResult{}, fmt.Errorf("failed to write output file: %w", err)
	}

	utils.LogSuccess("Normalized %s -> %s", resolvedInput, outputPath)

	return modules.ModuleResult{
		Outputs: map[string]string{
			"normalized": outputPath,
		},
		Metadata: map[string]interface{}{
			"inputFile":       resolvedInput,
			"cleanFileSuffix": p.CleanFileSuffix,
		},
	}, nil
}
