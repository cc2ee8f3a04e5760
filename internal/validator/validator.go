package validator

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/slidecast/slidecast/internal/utils"
)

// ExternalTool represents an external command-line tool requirement
type ExternalTool struct {
	Name        string
	VersionArgs []string
	Validate    func(output string) bool
}

// requiredTools is a list of external tools that must be installed.
// ffmpeg converts rendered narration tracks to analyzable WAV.
var requiredTools = []ExternalTool{
	{
		Name:        "ffmpeg",
		VersionArgs: []string{"-version"},
		Validate: func(output string) bool {
			return strings.Contains(output, "ffmpeg version")
		},
	},
}

// optionalTools lists tools that are checked but not required. Subtitle
// generation falls back to proportional timing without them.
var optionalTools = []ExternalTool{
	{
		Name:        "ffprobe",
		VersionArgs: []string{"-version"},
		Validate: func(output string) bool {
			return strings.Contains(output, "ffprobe version")
		},
	},
}

// ValidateExternalTools checks if all required external tools are installed
func ValidateExternalTools() error {
	for _, tool := range requiredTools {
		path, err := exec.LookPath(tool.Name)
		if err != nil {
			return fmt.Errorf("tool %s not found in PATH: %w", tool.Name, err)
		}

		cmd := exec.Command(path, tool.VersionArgs...)
		output, err := cmd.Output()
		if err != nil {
			return fmt.Errorf("failed to run %s: %w", tool.Name, err)
		}

		if !tool.Validate(string(output)) {
			return fmt.Errorf("invalid version of %s detected", tool.Name)
		}

		utils.LogVerbose("✓ %s found at %s", tool.Name, path)
	}

	for _, tool := range optionalTools {
		path, err := exec.LookPath(tool.Name)
		if err != nil {
			utils.LogVerbose("Optional tool %s not found: %v", tool.Name, err)
			continue
		}

		cmd := exec.Command(path, tool.VersionArgs...)
		output, err := cmd.CombinedOutput()
		if err != nil {
			utils.LogVerbose("Optional tool %s found but couldn't verify version: %v", tool.Name, err)
			continue
		}

		if !tool.Validate(string(output)) {
			utils.LogVerbose("Optional tool %s found but may not be the correct version", tool.Name)
			continue
		}

		utils.LogVerbose("✓ Optional tool %s found at %s", tool.Name, path)
	}

	return nil
}
