package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	modules "github.com/slidecast/slidecast/internal/mod"
	normalizetext "github.com/slidecast/slidecast/internal/modules/normalize_text"
	prepareaudio "github.com/slidecast/slidecast/internal/modules/prepare_audio"
	"github.com/slidecast/slidecast/internal/modules/subtitles"
	"github.com/slidecast/slidecast/internal/utils"

	"gopkg.in/yaml.v3"
)

// Step represents a single processing step in a workflow
type Step struct {
	Name       string                 `yaml:"name"`
	Module     string                 `yaml:"module"`
	Parameters map[string]interface{} `yaml:"parameters"`
}

// Workflow represents a complete subtitle generation workflow
type Workflow struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Input       string `yaml:"input,omitempty"`
	Output      string `yaml:"output"`
	Steps       []Step `yaml:"steps"`

	// Registry holds all available modules
	registry *modules.ModuleRegistry
}

// NewWorkflow creates a new workflow with the given module registry
func NewWorkflow(registry *modules.ModuleRegistry) *Workflow {
	return &Workflow{
		registry: registry,
	}
}

// LoadFromFile loads a workflow definition from a YAML file
func LoadFromFile(path string) (*Workflow, error) {
	// Create a registry with all available modules
	registry := modules.NewModuleRegistry()

	if err := registerModules(registry); err != nil {
		return nil, fmt.Errorf("failed to register modules: %w", err)
	}

	workflow := NewWorkflow(registry)

	// Read the YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	// Parse the YAML
	if err := yaml.Unmarshal(data, workflow); err != nil {
		return nil, fmt.Errorf("failed to parse workflow YAML: %w", err)
	}

	// Validate basic workflow structure but don't validate modules yet
	if err := workflow.ValidateStructure(); err != nil {
		return nil, fmt.Errorf("invalid workflow configuration: %w", err)
	}

	return workflow, nil
}

// ValidateStructure checks if the basic workflow structure is valid (without validating modules)
func (w *Workflow) ValidateStructure() error {
	if w.Name == "" {
		return fmt.Errorf("workflow name is required")
	}

	if len(w.Steps) == 0 {
		return fmt.Errorf("at least one processing step is required")
	}

	return nil
}

// ValidateBeforeRun performs a complete validation including modules
func (w *Workflow) ValidateBeforeRun() error {
	// First check basic structure
	if err := w.ValidateStructure(); err != nil {
		return err
	}

	// Then check output path
	if w.Output == "" {
		return fmt.Errorf("output path is required")
	}

	// Validate the input for the first step if global input is specified
	if w.Input != "" {
		fileInfo, err := os.Stat(w.Input)
		if err != nil {
			return fmt.Errorf("input file does not exist: %w", err)
		}
		if fileInfo.IsDir() {
			return fmt.Errorf("input must be a file, not a directory")
		}
	}

	// Validate each step
	for i, step := range w.Steps {
		if step.Module == "" {
			return fmt.Errorf("module name is required for step %d", i+1)
		}

		// Verify the module exists
		module, err := w.registry.Get(step.Module)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}

		params := make(map[string]interface{})
		for k, v := range step.Parameters {
			params[k] = v
		}

		// Add input parameter if needed, only for the first step when a global input is specified
		if _, ok := params["input"]; !ok && (i == 0 && w.Input != "") {
			params["input"] = w.Input
		}

		if _, ok := params["output"]; !ok {
			params["output"] = w.Output
		}

		// For first step, ensure it has input
		if i == 0 {
			if _, ok := params["input"]; !ok {
				return fmt.Errorf("first step must specify input parameter when global input is not provided")
			}
		}

		// Validate module parameters
		if err := module.Validate(params); err != nil {
			return fmt.Errorf("invalid parameters for step %d (%s): %w", i+1, step.Module, err)
		}
	}

	return nil
}

// ValidateForRetry performs validation for retry operations, skipping input file checks
func (w *Workflow) ValidateForRetry() error {
	if err := w.ValidateStructure(); err != nil {
		return err
	}

	// Retry runs reuse intermediate files from the previous run, so input
	// existence is not checked here
	if w.Output == "" {
		return fmt.Errorf("output path is required")
	}

	for i, step := range w.Steps {
		if step.Module == "" {
			return fmt.Errorf("module name is required for step %d", i+1)
		}

		if _, err := w.registry.Get(step.Module); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return nil
}

// Execute runs the workflow
func (w *Workflow) Execute() error {
	// First validate the workflow completely
	if err := w.ValidateBeforeRun(); err != nil {
		return fmt.Errorf("workflow validation failed: %w", err)
	}

	utils.LogInfo("Starting workflow: %s", w.Name)

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 24*time.Hour)
	defer cancel()

	// Create a timestamp-based subfolder for this run
	timestamp := time.Now().Format("20060102-150405")
	runName := fmt.Sprintf("%s-%s", strings.ReplaceAll(w.Name, " ", "_"), timestamp)
	outputDir := filepath.Join(w.Output, runName)

	// Ensure output directory exists
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	utils.LogDebug("Results will be stored in: %s", outputDir)

	// Execute each step in sequence
	if err := w.executeSteps(ctx, 0, outputDir); err != nil {
		return err
	}

	utils.LogSuccess("Workflow completed: %s", w.Name)
	utils.LogDebug("Results stored in: %s", outputDir)
	return nil
}

// executeSteps runs the workflow steps starting at startStep
func (w *Workflow) executeSteps(ctx context.Context, startStep int, outputDir string) error {
	for i := startStep; i < len(w.Steps); i++ {
		step := w.Steps[i]
		stepName := step.Name
		if stepName == "" {
			stepName = fmt.Sprintf("Step %d", i+1)
		}

		utils.LogInfo("Executing %s (module: %s)", stepName, step.Module)

		module, err := w.registry.Get(step.Module)
		if err != nil {
			errorMessage := fmt.Sprintf("Failed to get module for step %s: %v", stepName, err)
			utils.LogError(errorMessage)
			return fmt.Errorf("%s", errorMessage)
		}

		params := w.resolveParams(step, i, startStep, outputDir)

		result, err := module.Execute(ctx, params)
		if err != nil {
			errorMessage := fmt.Sprintf("Failed to execute step %s: %v", stepName, err)
			utils.LogError(errorMessage)
			return fmt.Errorf("%s", errorMessage)
		}

		for name, path := range result.Outputs {
			utils.LogDebug("Step %s produced %s: %s", stepName, name, path)
		}

		utils.LogSuccess("Completed %s", stepName)
	}

	return nil
}

// resolveParams builds the parameter map for a step, substituting the
// ${output} variable and filling in default input/output paths
func (w *Workflow) resolveParams(step Step, stepIndex, startStep int, outputDir string) map[string]interface{} {
	params := make(map[string]interface{})
	for k, v := range step.Parameters {
		if str, ok := v.(string); ok {
			// Replace ${output} with the actual output directory
			if strings.Contains(str, "${output}") {
				v = strings.ReplaceAll(str, "${output}", outputDir)
				utils.LogDebug("Resolved path %s to %s", str, v)
			}
			// Handle legacy path formats too
			if str == "./output" {
				v = outputDir
			} else if strings.HasPrefix(str, "./output/") {
				v = filepath.Join(outputDir, strings.TrimPrefix(str, "./output/"))
				utils.LogDebug("Resolved path %s to %s", str, v)
			}
		}
		params[k] = v
	}

	// Add input parameter if needed, only for the first step when a global input is specified
	if _, ok := params["input"]; !ok {
		if stepIndex == startStep && stepIndex == 0 && w.Input != "" {
			params["input"] = w.Input
		} else {
			// For subsequent steps, default to the output directory
			params["input"] = outputDir
		}
	}

	if _, ok := params["output"]; !ok {
		params["output"] = outputDir
	}

	return params
}

// registerModules registers all available modules with the registry
func registerModules(registry *modules.ModuleRegistry) error {
	for _, m := range []modules.Module{
		normalizetext.New(),
		prepareaudio.New(),
		subtitles.New(),
	} {
		if err := registry.Register(m); err != nil {
			return err
		}
	}
	return nil
}

// SetInputPath overrides the input path defined in the workflow
func (w *Workflow) SetInputPath(path string) {
	// Verify that the input is a file, not a directory
	fileInfo, err := os.Stat(path)
	if err == nil && fileInfo.IsDir() {
		fmt.Printf("%s\n", utils.Error("Input must be a file, not a directory. Please specify a file path."))
		return
	}
	w.Input = path
}

// ExecuteRetry runs the workflow continuing from a previous failed execution
func (w *Workflow) ExecuteRetry(outputFolderPath string) error {
	// Validate the workflow with retry-specific validation
	if err := w.ValidateForRetry(); err != nil {
		return fmt.Errorf("workflow validation failed: %w", err)
	}

	utils.LogInfo("Retrying workflow: %s", w.Name)

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 24*time.Hour)
	defer cancel()

	// Use the provided output folder instead of creating a new one
	outputDir := outputFolderPath
	utils.LogDebug("Using existing results directory: %s", outputDir)

	// Determine the last successful step by checking each step's expected
	// output files in the run folder
	lastSuccessfulStep := -1
	for i, step := range w.Steps {
		if output := expectedStepOutput(step); output != "" {
			if _, err := os.Stat(filepath.Join(outputDir, output)); err == nil {
				lastSuccessfulStep = i
			}
		}
	}

	// If we couldn't determine the last successful step, start from the beginning
	startStep := lastSuccessfulStep + 1
	if startStep >= len(w.Steps) {
		utils.LogWarning("All steps appear to be complete, starting from the beginning")
		startStep = 0
	} else {
		utils.LogInfo("Resuming from step %d: %s", startStep+1, w.Steps[startStep].Name)
	}

	if err := w.executeSteps(ctx, startStep, outputDir); err != nil {
		return err
	}

	utils.LogSuccess("Workflow completed after retry: %s", w.Name)
	utils.LogDebug("Results stored in: %s", outputDir)
	return nil
}

// expectedStepOutput maps a step to the file its module writes by default.
// Steps with custom output names report an empty string and are re-run.
func expectedStepOutput(step Step) string {
	if _, ok := step.Parameters["outputFileName"]; ok {
		return ""
	}
	if _, ok := step.Parameters["outputName"]; ok {
		return ""
	}

	switch step.Module {
	case "prepareaudio":
		return "voice.wav"
	case "subtitles":
		return "subtitles.ass"
	case "normalizetext":
		if input, ok := step.Parameters["input"].(string); ok {
			base := filepath.Base(input)
			return strings.TrimSuffix(base, filepath.Ext(base)) + "_clean.txt"
		}
	}
	return ""
}
