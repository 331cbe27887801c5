// Package scene provides histogram-based scene change detection and the
// per-scene statistics derived once all frames are known.
package scene

import (
	"math"
	"sort"

	"github.com/five82/hdrmeasure/internal/measurement"
	"github.com/five82/hdrmeasure/internal/transfer"
)

// Scene detection defaults
const (
	// DefaultThreshold is the distance above which a cut is considered.
	DefaultThreshold = 0.3

	// DefaultMinLength is the minimum scene length in frames.
	DefaultMinLength = 24

	// DefaultSmoothing is the size of the distance averaging window.
	DefaultSmoothing = 5
)

// NoCut marks that no cut has been accepted yet.
const NoCut = -1

// distanceEpsilon keeps empty bins from dividing by zero.
const distanceEpsilon = 1e-6

// Distance returns the symmetric chi-squared distance between two histograms.
func Distance(a, b []float64) float64 {
	var d float64
	for i := range min(len(a), len(b)) {
		diff := a[i] - b[i]
		d += diff * diff / (a[i] + b[i] + distanceEpsilon)
	}
	return d
}

// CutAllowed reports whether a cut at candidate respects the minimum scene
// length. With no previous cut (last == NoCut) the candidate itself must be
// at least minLen frames in.
func CutAllowed(last, candidate, minLen int) bool {
	if last == NoCut {
		return candidate >= minLen
	}
	return candidate-last >= minLen
}

// Options configures a Segmenter.
type Options struct {
	Threshold float64
	MinLength int
	Smoothing int // 0 disables the averaging window
}

// Segmenter detects scene cuts from a stream of frame histograms.
type Segmenter struct {
	opts    Options
	prev    []float64
	window  []float64
	lastCut int
	cuts    []int
}

// NewSegmenter creates a segmenter with no history.
func NewSegmenter(opts Options) *Segmenter {
	return &Segmenter{opts: opts, lastCut: NoCut}
}

// Push compares hist with the previous histogram and records a cut at
// frame when the decision value exceeds the threshold. It returns the
// decision value and whether a cut was accepted. The first frame only
// seeds the history.
func (s *Segmenter) Push(frame int, hist []float64) (float64, bool) {
	defer func() { s.prev = append(s.prev[:0], hist...) }()
	if s.prev == nil {
		return 0, false
	}

	value := Distance(hist, s.prev)
	if s.opts.Smoothing > 0 {
		s.window = append(s.window, value)
		if len(s.window) > s.opts.Smoothing {
			s.window = s.window[1:]
		}
		var sum float64
		for _, v := range s.window {
			sum += v
		}
		value = sum / float64(len(s.window))
	}

	if value > s.opts.Threshold && CutAllowed(s.lastCut, frame, s.opts.MinLength) {
		s.cuts = append(s.cuts, frame)
		s.lastCut = frame
		return value, true
	}
	return value, false
}

// Cuts returns the accepted cut frames.
func (s *Segmenter) Cuts() []int {
	return append([]int(nil), s.cuts...)
}

// Scenes converts the accepted cuts into scenes covering total frames.
func (s *Segmenter) Scenes(total int) []measurement.Scene {
	return FromCuts(s.cuts, total)
}

// FromCuts converts cut frames into contiguous inclusive scenes covering
// [0, total). Cuts at 0 or at/after total are ignored.
func FromCuts(cuts []int, total int) []measurement.Scene {
	if total <= 0 {
		return nil
	}
	sorted := append([]int(nil), cuts...)
	sort.Ints(sorted)

	var scenes []measurement.Scene
	start := 0
	for _, c := range sorted {
		if c <= start || c >= total {
			continue
		}
		scenes = append(scenes, measurement.Scene{Start: start, End: c - 1})
		start = c
	}
	return append(scenes, measurement.Scene{Start: start, End: total - 1})
}

// Repair clamps scene boundaries into [0, total) in place. Out-of-range
// ends and starts, including open ends recorded as the maximum index, move
// to the last frame, and an inverted range becomes the whole video.
func Repair(scenes []measurement.Scene, total int) {
	if total <= 0 {
		return
	}
	last := total - 1
	for i := range scenes {
		s := &scenes[i]
		if s.End >= total {
			s.End = last
		}
		if s.Start >= total {
			s.Start = last
		}
		if s.Start > s.End {
			s.Start, s.End = 0, last
		}
	}
}

// ComputeStats fills each scene's average PQ (mean of frame averages) and
// peak nits (from the brightest frame peak).
func ComputeStats(scenes []measurement.Scene, frames []measurement.Frame) {
	for i := range scenes {
		s := &scenes[i]
		end := min(s.End+1, len(frames))
		if s.Start < 0 || s.Start >= end {
			continue
		}

		var sum, peak float64
		for _, f := range frames[s.Start:end] {
			sum += f.AvgPQ
			peak = math.Max(peak, f.PeakPQ2020)
		}
		s.AvgPQ = sum / float64(end-s.Start)
		s.PeakNits = uint32(transfer.PQToNits(peak))
	}
}
