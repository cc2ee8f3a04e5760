package subtitles

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestWAV renders a mono 16-bit PCM file with a tone between the
// given offsets and silence elsewhere.
func writeTestWAV(t *testing.T, path string, totalSec, toneFromSec, toneToSec float64) {
	t.Helper()

	const sampleRate = 16000
	n := int(totalSec * sampleRate)
	data := make([]int, n)
	for i := range data {
		sec := float64(i) / sampleRate
		if sec >= toneFromSec && sec < toneToSec {
			data[i] = int(0.5 * 32767 * math.Sin(2*math.Pi*440*sec))
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func TestModule_GetIO(t *testing.T) {
	module := New()
	io := module.GetIO()

	assert.Len(t, io.RequiredInputs, 3)
	assert.Equal(t, "input", io.RequiredInputs[0].Name)
	assert.Equal(t, "audio", io.RequiredInputs[1].Name)
	assert.Equal(t, "output", io.RequiredInputs[2].Name)

	assert.Len(t, io.ProducedOutputs, 1)
	assert.Equal(t, "subtitles", io.ProducedOutputs[0].Name)
}

func TestModule_Validate(t *testing.T) {
	module := New()
	tempDir := t.TempDir()

	textPath := filepath.Join(tempDir, "narration.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("Hello world"), 0644))

	tests := []struct {
		name    string
		params  map[string]interface{}
		wantErr bool
	}{
		{
			name: "valid parameters",
			params: map[string]interface{}{
				"input":  textPath,
				"audio":  filepath.Join(tempDir, "voice.wav"),
				"output": tempDir,
			},
			wantErr: false,
		},
		{
			name: "missing input",
			params: map[string]interface{}{
				"audio":  filepath.Join(tempDir, "voice.wav"),
				"output": tempDir,
			},
			wantErr: true,
		},
		{
			name: "missing audio",
			params: map[string]interface{}{
				"input":  textPath,
				"output": tempDir,
			},
			wantErr: true,
		},
		{
			name: "invalid mode",
			params: map[string]interface{}{
				"input":  textPath,
				"audio":  filepath.Join(tempDir, "voice.wav"),
				"output": tempDir,
				"mode":   "sentence",
			},
			wantErr: true,
		},
		{
			name: "negative line budget",
			params: map[string]interface{}{
				"input":           textPath,
				"audio":           filepath.Join(tempDir, "voice.wav"),
				"output":          tempDir,
				"maxCharsPerLine": -1,
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

func TestModule_Execute_LineMode(t *testing.T) {
	module := New()
	tempDir := t.TempDir()

	textPath := filepath.Join(tempDir, "narration.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("Welcome to the channel everyone"), 0644))

	audioPath := filepath.Join(tempDir, "voice.wav")
	writeTestWAV(t, audioPath, 2.0, 0.2, 1.8)

	result, err := module.Execute(context.Background(), map[string]interface{}{
		"input":  textPath,
		"audio":  audioPath,
		"output": tempDir,
	})
	require.NoError(t, err)

	outPath := result.Outputs["subtitles"]
	assert.Equal(t, filepath.Join(tempDir, "subtitles.ass"), outPath)
	assert.Equal(t, "line", result.Metadata["mode"])

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "[Script Info]")
	assert.Contains(t, text, "Welcome to the channel everyone")
}

func TestModule_Execute_WordModeWithDurationOverride(t *testing.T) {
	module := New()
	tempDir := t.TempDir()

	textPath := filepath.Join(tempDir, "narration.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("one two three"), 0644))

	// Audio is absent but a duration override keeps timing proportional
	result, err := module.Execute(context.Background(), map[string]interface{}{
		"input":          textPath,
		"audio":          filepath.Join(tempDir, "voice.wav"),
		"output":         tempDir,
		"outputFileName": "captions",
		"mode":           "word",
		"durationSec":    3.0,
	})
	require.NoError(t, err)

	outPath := result.Outputs["subtitles"]
	assert.Equal(t, filepath.Join(tempDir, "captions.ass"), outPath)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var dialogues int
	for _, line := range strings.Split(string(content), "\n") {
		if strings.HasPrefix(line, "Dialogue:") {
			dialogues++
		}
	}
	assert.Equal(t, 3, dialogues)
}

func TestModule_Execute_MissingAudioFallsBack(t *testing.T) {
	module := New()
	tempDir := t.TempDir()

	textPath := filepath.Join(tempDir, "narration.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("Hello world"), 0644))

	result, err := module.Execute(context.Background(), map[string]interface{}{
		"input":  textPath,
		"audio":  filepath.Join(tempDir, "voice.wav"),
		"output": tempDir,
	})
	require.NoError(t, err)

	content, err := os.ReadFile(result.Outputs["subtitles"])
	require.NoError(t, err)
	assert.Contains(t, string(content), "Subtitle generation failed for this narration.")
}

func TestModule_Name(t *testing.T) {
	module := New()
	assert.Equal(t, "subtitles", module.Name())
}
