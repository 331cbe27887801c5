// Package smoothing applies scene-local temporal filters to frame
// histograms before scene statistics and targets are derived.
package smoothing

import (
	"slices"

	"github.com/five82/hdrmeasure/internal/histogram"
	"github.com/five82/hdrmeasure/internal/measurement"
)

// DefaultEMABeta is the default EMA weight of the current histogram.
const DefaultEMABeta = 0.1

// Options configures the smoother.
type Options struct {
	// EMABeta is the weight of the current frame; values outside (0, 1]
	// disable the EMA.
	EMABeta float64
	// MedianWindow is the number of previous histograms in the temporal
	// median; 0 disables it.
	MedianWindow int
	// PeakSource selects how the frame peak is re-derived.
	PeakSource histogram.PeakSource
}

// Enabled reports whether any filter is active.
func (o Options) Enabled() bool {
	return o.emaEnabled() || o.MedianWindow > 0
}

func (o Options) emaEnabled() bool {
	return o.EMABeta > 0 && o.EMABeta <= 1
}

// State is the filter state of one scene. A fresh State must be used for
// every scene so nothing bleeds across a cut.
type State struct {
	opts    Options
	ema     []float64
	history [][]float64
}

// NewState returns zeroed filter state.
func NewState(opts Options) *State {
	return &State{opts: opts, ema: make([]float64, histogram.Bins)}
}

// Apply filters f's luminance histogram in place, then re-derives its
// peak and average PQ from the result.
func (s *State) Apply(f *measurement.Frame) {
	h := f.LumHistogram
	if s.opts.emaEnabled() {
		beta := s.opts.EMABeta
		for i := range h {
			s.ema[i] = beta*h[i] + (1-beta)*s.ema[i]
			h[i] = s.ema[i]
		}
		histogram.Renormalize(h)
	}

	if s.opts.MedianWindow > 0 {
		entering := append([]float64(nil), h...)
		if len(s.history) > 0 {
			median(h, s.history)
			histogram.Renormalize(h)
		}
		s.history = append(s.history, entering)
		if len(s.history) > s.opts.MedianWindow {
			s.history = s.history[1:]
		}
	}

	f.PeakPQ2020 = histogram.SelectPeakPQ(h, f.PeakPQ2020, s.opts.PeakSource)
	f.AvgPQ = histogram.AveragePQ(h)
}

// median replaces every bin of h with the median of that bin across
// history and h itself. Even counts average the two middle values.
func median(h []float64, history [][]float64) {
	vals := make([]float64, 0, len(history)+1)
	for i := range h {
		vals = vals[:0]
		for _, past := range history {
			vals = append(vals, past[i])
		}
		vals = append(vals, h[i])
		slices.Sort(vals)

		mid := len(vals) / 2
		if len(vals)%2 == 0 {
			h[i] = (vals[mid-1] + vals[mid]) / 2
		} else {
			h[i] = vals[mid]
		}
	}
}

// ApplyScenes runs the smoother over every scene with fresh state per
// scene. It is a no-op when no filter is enabled.
func ApplyScenes(scenes []measurement.Scene, frames []measurement.Frame, opts Options) {
	if !opts.Enabled() {
		return
	}
	for _, sc := range scenes {
		end := min(sc.End+1, len(frames))
		if sc.Start < 0 || sc.Start >= end {
			continue
		}
		st := NewState(opts)
		for i := sc.Start; i < end; i++ {
			st.Apply(&frames[i])
		}
	}
}
