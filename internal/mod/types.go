// Package mod provides the core module functionality for the workflow system
package mod

// ModuleIO defines the expected inputs and outputs for a module
type ModuleIO struct {
	// Required input files/data from previous modules
	RequiredInputs []ModuleInput
	// Generated outputs that can be used by subsequent modules
	ProducedOutputs []ModuleOutput
	// Optional inputs that can enhance module functionality
	OptionalInputs []ModuleInput
}

// ModuleInput defines an input requirement for a module
type ModuleInput struct {
	Name        string   // Logical name of the input (e.g., "audioFile", "narrationText")
	Description string   // Description of what this input is used for
	Patterns    []string // File patterns that match this input
	Type        string   // Type of input (e.g., "file", "directory", "data")
}

// ModuleOutput defines an output produced by a module
type ModuleOutput struct {
	Name        string   // Logical name of the output
	Description string   // Description of what this output contains
	Patterns    []string // File patterns that match this output
	Type        string   // Type of output (e.g., "file", "directory", "data")
}

// ModuleResult contains the results of a module execution
type ModuleResult struct {
	Outputs    map[string]string      // Map of output name to file/directory path
	Metadata   map[string]interface{} // Additional metadata about the execution
	Statistics map[string]interface{} // Performance and other statistics
}

// InputType defines the valid types of module inputs
type InputType string

const (
	InputTypeFile      InputType = "file"
	InputTypeDirectory InputType = "directory"
	InputTypeData      InputType = "data"
)

// OutputType defines the valid types of module outputs
type OutputType string

const (
	OutputTypeFile      OutputType = "file"
	OutputTypeDirectory OutputType = "directory"
	OutputTypeData      OutputType = "data"
)
