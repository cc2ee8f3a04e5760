package mod

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// Module defines the interface that all workflow modules must implement
type Module interface {
	// Name returns the module's unique identifier
	Name() string

	// GetIO returns the module's input/output specification
	GetIO() ModuleIO

	// Validate checks if the parameters are valid
	Validate(params map[string]interface{}) error

	// Execute runs the module with the given parameters
	Execute(ctx context.Context, params map[string]interface{}) (ModuleResult, error)
}

// ModuleRegistry stores all available modules
type ModuleRegistry struct {
	modules      map[string]Module
	sync.RWMutex // Protects the module map
}

// NewModuleRegistry creates a new module registry
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{
		modules: make(map[string]Module),
	}
}

// ValidateIO validates a module's I/O specification
func ValidateIO(io ModuleIO) error {
	for i, input := range io.RequiredInputs {
		if input.Name == "" {
			return fmt.Errorf("required input %d has empty name", i)
		}
		if input.Type == "" {
			return fmt.Errorf("required input %s has empty type", input.Name)
		}
		if !isValidInputType(input.Type) {
			return fmt.Errorf("required input %s has invalid type: %s", input.Name, input.Type)
		}
	}

	for i, input := range io.OptionalInputs {
		if input.Name == "" {
			return fmt.Errorf("optional input %d has empty name", i)
		}
		if input.Type == "" {
			return fmt.Errorf("optional input %s has empty type", input.Name)
		}
		if !isValidInputType(input.Type) {
			return fmt.Errorf("optional input %s has invalid type: %s", input.Name, input.Type)
		}
	}

	for i, output := range io.ProducedOutputs {
		if output.Name == "" {
			return fmt.Errorf("output %d has empty name", i)
		}
		if output.Type == "" {
			return fmt.Errorf("output %s has empty type", output.Name)
		}
		if !isValidOutputType(output.Type) {
			return fmt.Errorf("output %s has invalid type: %s", output.Name, output.Type)
		}
		if len(output.Patterns) == 0 {
			return fmt.Errorf("output %s has no patterns defined", output.Name)
		}
	}

	return nil
}

// isValidInputType checks if the input type is valid
func isValidInputType(t string) bool {
	switch InputType(t) {
	case InputTypeFile, InputTypeDirectory, InputTypeData:
		return true
	default:
		return false
	}
}

// isValidOutputType checks if the output type is valid
func isValidOutputType(t string) bool {
	switch OutputType(t) {
	case OutputTypeFile, OutputTypeDirectory, OutputTypeData:
		return true
	default:
		return false
	}
}

// Register adds a module to the registry
func (r *ModuleRegistry) Register(m Module) error {
	if m == nil {
		return fmt.Errorf("cannot register nil module")
	}

	name := m.Name()
	if name == "" {
		return fmt.Errorf("module name cannot be empty")
	}

	// Validate module I/O specification
	if err := ValidateIO(m.GetIO()); err != nil {
		return fmt.Errorf("invalid I/O specification for module %s: %w", name, err)
	}

	r.Lock()
	defer r.Unlock()

	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("module %s is already registered", name)
	}

	r.modules[name] = m
	return nil
}

// Get retrieves a module by name
func (r *ModuleRegistry) Get(name string) (Module, error) {
	if name == "" {
		return nil, fmt.Errorf("module name cannot be empty")
	}

	r.RLock()
	defer r.RUnlock()

	module, exists := r.modules[name]
	if !exists {
		return nil, fmt.Errorf("module %s not found", name)
	}
	return module, nil
}

// ListModules returns a slice of all registered modules
func (r *ModuleRegistry) ListModules() []Module {
	r.RLock()
	defer r.RUnlock()

	modules := make([]Module, 0, len(r.modules))
	for _, module := range r.modules {
		modules = append(modules, module)
	}
	return modules
}

// ParseParams converts generic parameter map to a specific struct for each module
func ParseParams(params map[string]interface{}, target interface{}) error {
	if params == nil {
		return fmt.Errorf("params cannot be nil")
	}
	if target == nil {
		return fmt.Errorf("target cannot be nil")
	}

	// Validate that target is a pointer to a struct
	if reflect.ValueOf(target).Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer to a struct")
	}
	if reflect.ValueOf(target).Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to a struct")
	}

	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("error marshaling params: %w", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("error unmarshaling params: %w", err)
	}

	return nil
}
