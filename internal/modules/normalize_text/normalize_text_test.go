package normalizetext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_GetIO(t *testing.T) {
	module := New()
	io := module.GetIO()

	assert.Len(t, io.RequiredInputs, 2)
	assert.Equal(t, "input", io.RequiredInputs[0].Name)
	assert.Equal(t, "output", io.RequiredInputs[1].Name)

	assert.Len(t, io.OptionalInputs, 2)
	assert.Equal(t, "cleanFileSuffix", io.OptionalInputs[0].Name)
	assert.Equal(t, "outputFileName", io.OptionalInputs[1].Name)

	assert.Len(t, io.ProducedOutputs, 1)
	assert.Equal(t, "normalized", io.ProducedOutputs[0].Name)
}

func TestModule_Validate(t *testing.T) {
	module := New()
	tempDir := t.TempDir()

	textPath := filepath.Join(tempDir, "narration.txt")
	err := os.WriteFile(textPath, []byte("Hello world"), 0644)
	require.NoError(t, err)

	tests := []struct {
		name    string
		params  map[string]interface{}
		wantErr bool
	}{
		{
			name: "valid parameters",
			params: map[string]interface{}{
				"input":  textPath,
				"output": tempDir,
			},
			wantErr: false,
		},
		{
			name: "missing input",
			params: map[string]interface{}{
				"output": tempDir,
			},
			wantErr: true,
		},
		{
			name: "missing output",
			params: map[string]interface{}{
				"input": textPath,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := module.Validate(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestModule_Execute(t *testing.T) {
	module := New()
	tempDir := t.TempDir()

	textPath := filepath.Join(tempDir, "narration.txt")
	err := os.WriteFile(textPath, []byte("Step 1️⃣ is easy 🚀  \n\n  Follow along!"), 0644)
	require.NoError(t, err)

	result, err := module.Execute(context.Background(), map[string]interface{}{
		"input":  textPath,
		"output": tempDir,
	})
	require.NoError(t, err)

	outPath := result.Outputs["normalized"]
	assert.Equal(t, filepath.Join(tempDir, "narration_clean.txt"), outPath)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "Step 1 is easy Follow along!\n", string(content))
}

func TestModule_Execute_CustomNames(t *testing.T) {
	module := New()
	tempDir := t.TempDir()

	textPath := filepath.Join(tempDir, "narration.txt")
	err := os.WriteFile(textPath, []byte("Plain text"), 0644)
	require.NoError(t, err)

	result, err := module.Execute(context.Background(), map[string]interface{}{
		"input":           textPath,
		"output":          tempDir,
		"outputFileName":  "script",
		"cleanFileSuffix": "_ascii",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "script_ascii.txt"), result.Outputs["normalized"])
}

func TestModule_Execute_MissingInput(t *testing.T) {
	module := New()
	tempDir := t.TempDir()

	_, err := module.Execute(context.Background(), map[string]interface{}{
		"input":  filepath.Join(tempDir, "nonexistent.txt"),
		"output": tempDir,
	})
	assert.Error(t, err)
}

func TestModule_Name(t *testing.T) {
	module := New()
	assert.Equal(t, "normalizetext", module.Name())
}
