package optimizer

import (
	"fmt"
	"math"
	"strings"

	"github.com/five82/hdrmeasure/internal/measurement"
)

// SmootherMode selects the target post-pass.
type SmootherMode string

const (
	SmootherOff SmootherMode = "off"
	SmootherEMA SmootherMode = "ema"
)

// DefaultSmootherAlpha is the EMA weight of the newest target.
const DefaultSmootherAlpha = 0.2

// ParseSmoother validates a smoother name. Empty means off.
func ParseSmoother(s string) (SmootherMode, error) {
	switch m := SmootherMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", SmootherOff:
		return SmootherOff, nil
	case SmootherEMA:
		return m, nil
	}
	return "", fmt.Errorf("unknown target smoother %q (want off or ema)", s)
}

// SmoothTargets applies an exponential moving average to the targets of
// each scene independently, optionally averaged with a backward pass, and
// then re-applies the delta limit within the scene. Scenes with any frame
// lacking a target are left untouched, as is everything when alpha is
// outside (0, 1].
func SmoothTargets(scenes []measurement.Scene, frames []measurement.Frame, alpha float64, bidirectional bool, maxDelta uint16) {
	if alpha <= 0 || alpha > 1 {
		return
	}

	for _, s := range scenes {
		end := min(s.End+1, len(frames))
		if s.Start < 0 || s.Start >= end {
			continue
		}
		span := frames[s.Start:end]

		values := make([]float64, len(span))
		complete := true
		for i, f := range span {
			if !f.HasTarget {
				complete = false
				break
			}
			values[i] = float64(f.TargetNits)
		}
		if !complete {
			continue
		}

		smoothed := forwardEMA(values, alpha)
		if bidirectional {
			back := backwardEMA(values, alpha)
			for i := range smoothed {
				smoothed[i] = (smoothed[i] + back[i]) / 2
			}
		}

		for i := range span {
			desired := uint16(math.Max(0, math.Min(math.Round(smoothed[i]), math.MaxUint16)))
			if i > 0 {
				desired = ApplyDeltaLimit(span[i-1].TargetNits, desired, maxDelta)
			}
			span[i].SetTarget(desired)
		}
	}
}

func forwardEMA(x []float64, alpha float64) []float64 {
	y := make([]float64, len(x))
	y[0] = x[0]
	for i := 1; i < len(x); i++ {
		y[i] = alpha*x[i] + (1-alpha)*y[i-1]
	}
	return y
}

func backwardEMA(x []float64, alpha float64) []float64 {
	y := make([]float64, len(x))
	last := len(x) - 1
	y[last] = x[last]
	for i := last - 1; i >= 0; i-- {
		y[i] = alpha*x[i] + (1-alpha)*y[i+1]
	}
	return y
}
