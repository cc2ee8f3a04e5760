package subtitle

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// Burst is one detected non-silent interval of the narration track.
// Bursts are ordered by start time and never overlap.
type Burst struct {
	StartMs float64
	EndMs   float64
}

// SegmenterConfig tunes silence detection. Thresholds are empirical; the
// defaults match typical synthesized narration.
type SegmenterConfig struct {
	SilenceThresholdDB float64 // RMS level below this counts as silence (dBFS)
	MinSilenceMs       float64 // gaps shorter than this don't split a burst
	WindowMs           float64 // RMS analysis window size
}

// DefaultSegmenterConfig returns the standard detection parameters.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		SilenceThresholdDB: -35,
		MinSilenceMs:       150,
		WindowMs:           10,
	}
}

// Segment finds speech bursts in a mono sample stream normalized to [-1, 1].
// It computes windowed RMS loudness, marks windows above the silence
// threshold, and merges loud windows into bursts, bridging silence gaps
// shorter than MinSilenceMs. A nil or empty result is a normal outcome that
// sends the allocator down its fallback path; it is never an error.
func Segment(samples []float64, sampleRate int, totalSec float64, cfg SegmenterConfig) []Burst {
	if len(samples) == 0 || sampleRate <= 0 || totalSec <= 0 {
		return nil
	}
	if cfg.WindowMs <= 0 {
		cfg.WindowMs = DefaultSegmenterConfig().WindowMs
	}

	winSize := int(float64(sampleRate) * cfg.WindowMs / 1000)
	if winSize < 1 {
		winSize = 1
	}

	numWins := (len(samples) + winSize - 1) / winSize
	loud := make([]bool, numWins)
	for w := 0; w < numWins; w++ {
		start := w * winSize
		end := start + winSize
		if end > len(samples) {
			end = len(samples)
		}
		loud[w] = rmsDB(samples[start:end]) >= cfg.SilenceThresholdDB
	}

	minGapWins := int(math.Ceil(cfg.MinSilenceMs / cfg.WindowMs))
	totalMs := totalSec * 1000

	var bursts []Burst
	burstStart := -1 // first window of the current burst, -1 when outside
	silentRun := 0
	for w := 0; w < numWins; w++ {
		if loud[w] {
			if burstStart == -1 {
				burstStart = w
			}
			silentRun = 0
			continue
		}
		if burstStart == -1 {
			continue
		}
		silentRun++
		if silentRun >= minGapWins {
			bursts = appendBurst(bursts, burstStart, w-silentRun+1, cfg.WindowMs, totalMs)
			burstStart = -1
			silentRun = 0
		}
	}
	if burstStart != -1 {
		bursts = appendBurst(bursts, burstStart, numWins-silentRun, cfg.WindowMs, totalMs)
	}
	return bursts
}

// appendBurst converts a [startWin, endWin) window range to milliseconds,
// clamps it to the track duration and appends it if it is non-empty.
func appendBurst(bursts []Burst, startWin, endWin int, windowMs, totalMs float64) []Burst {
	startMs := float64(startWin) * windowMs
	endMs := float64(endWin) * windowMs
	if endMs > totalMs {
		endMs = totalMs
	}
	if startMs < 0 {
		startMs = 0
	}
	if endMs <= startMs {
		return bursts
	}
	return append(bursts, Burst{StartMs: startMs, EndMs: endMs})
}

// rmsDB returns the RMS level of a sample window in dBFS, floored at -120.
func rmsDB(window []float64) float64 {
	if len(window) == 0 {
		return -120
	}
	var sumSquares float64
	for _, s := range window {
		sumSquares += s * s
	}
	rms := math.Sqrt(sumSquares / float64(len(window)))
	if rms < 1e-6 {
		return -120
	}
	return 20 * math.Log10(rms)
}

// LoadWAV decodes a WAV file into mono samples normalized to [-1, 1] and
// reports the sample rate and duration in seconds. Multi-channel audio is
// mixed down by averaging.
func LoadWAV(path string) (samples []float64, sampleRate int, durationSec float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("%s is not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read PCM data: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels <= 0 {
		return nil, 0, 0, fmt.Errorf("WAV file %s has no usable format", path)
	}

	channels := buf.Format.NumChannels
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	samples = make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		samples[i] = sum / float64(channels) / scale
	}

	sampleRate = buf.Format.SampleRate
	durationSec = float64(frames) / float64(sampleRate)
	return samples, sampleRate, durationSec, nil
}

// SegmentFile detects speech bursts directly from a WAV file. Decoding
// failures are reported; zero detected bursts is not a failure.
func SegmentFile(path string, cfg SegmenterConfig) ([]Burst, float64, error) {
	samples, rate, duration, err := LoadWAV(path)
	if err != nil {
		return nil, 0, err
	}
	return Segment(samples, rate, duration, cfg), duration, nil
}
