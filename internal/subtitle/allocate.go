package subtitle

import (
	"math"
	"sort"
)

// TimedToken is one caption with its display window. Style is assigned by
// the track writer, not the allocator. Windows of adjacent tokens may
// overlap on purpose: the early-highlight bias keeps captions readable.
type TimedToken struct {
	Text  string
	Start float64 // seconds
	End   float64 // seconds
}

// AllocatorConfig holds the timing tuning constants. All three are
// empirically tuned values carried over from the reference pacing; override
// them rather than "fixing" them.
type AllocatorConfig struct {
	OffsetMs        float64 // burst mode: pull each start earlier by this much
	FallbackFactor  float64 // fallback mode: token duration divisor multiplier
	OverlapFraction float64 // fallback mode: fraction of token duration overlapped
}

// DefaultAllocatorConfig returns the standard pacing constants.
func DefaultAllocatorConfig() AllocatorConfig {
	return AllocatorConfig{
		OffsetMs:        100,
		FallbackFactor:  1.2,
		OverlapFraction: 0.1,
	}
}

// Allocate distributes tokens over time, producing exactly one TimedToken
// per input token in input order. With a non-empty burst list the tokens are
// apportioned across the detected speech bursts; otherwise they are spread
// evenly over the total duration with deliberate overlap. Start times are
// always non-negative and never exceed the matching end time.
func Allocate(tokens []string, bursts []Burst, totalSec float64, cfg AllocatorConfig) []TimedToken {
	if len(tokens) == 0 {
		return nil
	}
	if len(bursts) > 0 {
		return allocateBursts(tokens, bursts, cfg)
	}
	return allocateEven(tokens, totalSec, cfg)
}

// allocateEven implements the fallback mode. The FallbackFactor compresses
// each token's duration below the naive even split so captions lead the
// unanalyzed speech, and adjacent windows overlap by OverlapFraction.
func allocateEven(tokens []string, totalSec float64, cfg AllocatorConfig) []TimedToken {
	n := len(tokens)
	duration := totalSec / (float64(n) * cfg.FallbackFactor)
	overlap := cfg.OverlapFraction * duration

	out := make([]TimedToken, n)
	for i, tok := range tokens {
		start := float64(i)*duration - overlap
		if start < 0 {
			start = 0
		}
		out[i] = TimedToken{
			Text:  tok,
			Start: start,
			End:   float64(i+1)*duration + overlap,
		}
	}
	return out
}

// allocateBursts implements the sophisticated mode: each burst receives a
// token count proportional to its share of the total burst duration, the
// counts are reconciled to the exact token count, and tokens get equal
// sub-intervals within their burst, shifted early by OffsetMs.
func allocateBursts(tokens []string, bursts []Burst, cfg AllocatorConfig) []TimedToken {
	n := len(tokens)

	// Every burst is floored at one token, so more bursts than tokens could
	// never reconcile. Keep only the n longest bursts in that case.
	if len(bursts) > n {
		bursts = longestBursts(bursts, n)
	}

	durations := make([]float64, len(bursts))
	var totalDur float64
	for i, b := range bursts {
		durations[i] = b.EndMs - b.StartMs
		totalDur += durations[i]
	}

	counts := make([]int, len(bursts))
	assigned := 0
	for i, d := range durations {
		c := int(math.Round(float64(n) * d / totalDur))
		if c < 1 {
			c = 1
		}
		counts[i] = c
		assigned += c
	}

	// Reconcile to the exact token count. Each adjustment shrinks the picked
	// burst's effective duration by 10% so the next pick moves elsewhere;
	// the strictly decreasing effective durations guarantee termination.
	effective := append([]float64(nil), durations...)
	for assigned != n {
		k := 0
		for i := range effective {
			if effective[i] > effective[k] {
				k = i
			}
		}
		if assigned < n {
			counts[k]++
			assigned++
		} else if counts[k] > 1 {
			counts[k]--
			assigned--
		}
		effective[k] *= 0.9
	}

	offSec := cfg.OffsetMs / 1000

	out := make([]TimedToken, 0, n)
	for i, b := range bursts {
		burstStart := b.StartMs / 1000
		width := (b.EndMs - b.StartMs) / 1000 / float64(counts[i])
		for j := 0; j < counts[i]; j++ {
			// Start pulled earlier, end extended symmetrically but unclamped:
			// the early-highlight bias is intentional.
			start := burstStart + float64(j)*width - offSec
			if start < 0 {
				start = 0
			}
			out = append(out, TimedToken{
				Text:  tokens[len(out)],
				Start: start,
				End:   burstStart + float64(j+1)*width + offSec,
			})
		}
	}
	return out
}

// longestBursts returns the n longest bursts, preserving time order.
func longestBursts(bursts []Burst, n int) []Burst {
	idx := make([]int, len(bursts))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		da := bursts[idx[a]].EndMs - bursts[idx[a]].StartMs
		db := bursts[idx[b]].EndMs - bursts[idx[b]].StartMs
		return da > db
	})
	keep := idx[:n]
	sort.Ints(keep)

	out := make([]Burst, n)
	for i, k := range keep {
		out[i] = bursts[k]
	}
	return out
}
