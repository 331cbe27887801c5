package optimizer

import (
	"math"

	"github.com/five82/hdrmeasure/internal/histogram"
	"github.com/five82/hdrmeasure/internal/measurement"
	"github.com/five82/hdrmeasure/internal/transfer"
)

// Heuristic constants
const (
	// RollingWindow is the number of frames in the rolling APL average.
	RollingWindow = 240

	// rollingWeight blends the rolling APL against the scene APL.
	rollingWeight = 0.6

	// classifyWeight blends the blended APL against the scene APL when
	// classifying a frame as dark, medium or bright.
	classifyWeight = 0.7

	darkAPLNits   = 50.0
	mediumAPLNits = 150.0
)

// window is a fixed-capacity FIFO that tracks its running mean.
type window struct {
	buf []float64
	cap int
	sum float64
}

func newWindow(capacity int) *window {
	return &window{buf: make([]float64, 0, max(capacity, 1)), cap: max(capacity, 1)}
}

func (w *window) push(v float64) float64 {
	if len(w.buf) == w.cap {
		w.sum -= w.buf[0]
		w.buf = append(w.buf[:0], w.buf[1:]...)
	}
	w.buf = append(w.buf, v)
	w.sum += v
	return w.sum / float64(len(w.buf))
}

// sceneState is the per-scene smoothing state; a new one is created at
// every scene boundary.
type sceneState struct {
	rolling  *window
	knee     *window
	sceneAPL float64
}

func newSceneState(p Profile, s measurement.Scene) *sceneState {
	return &sceneState{
		rolling:  newWindow(RollingWindow),
		knee:     newWindow(p.KneeSmoothingWindow),
		sceneAPL: transfer.PQToNits(s.AvgPQ),
	}
}

// Run assigns a target to every frame covered by scenes. Scenes are
// processed in order; the delta limit carries across scene boundaries and
// the first frame of the run is unconstrained. It returns the number of
// frames that received a target.
func Run(scenes []measurement.Scene, frames []measurement.Frame, p Profile) int {
	var (
		prev    uint16
		hasPrev bool
		n       int
	)
	for _, s := range scenes {
		end := min(s.End+1, len(frames))
		if s.Start < 0 || s.Start >= end {
			continue
		}
		st := newSceneState(p, s)
		for i := s.Start; i < end; i++ {
			f := &frames[i]
			target := st.target(f, p)
			if hasPrev {
				target = ApplyDeltaLimit(prev, target, p.MaxDeltaPerFrame)
			}
			f.SetTarget(target)
			prev, hasPrev = target, true
			n++
		}
	}
	return n
}

func (st *sceneState) target(f *measurement.Frame, p Profile) uint16 {
	rollingAPL := transfer.PQToNits(st.rolling.push(f.AvgPQ))
	blended := rollingWeight*rollingAPL + (1-rollingWeight)*st.sceneAPL
	peak := uint32(transfer.PQToNits(f.PeakPQ2020))
	knee := st.knee.push(histogram.HighlightKneeNits(f.LumHistogram))
	return Heuristic(peak, blended, knee, st.sceneAPL, p)
}

// Heuristic picks a target for one frame. Frames above the extreme peak
// threshold are capped at the knee; others are classified by APL and
// clamped by that class's range and knee multiplier.
func Heuristic(peakNits uint32, aplNits, kneeNits, sceneAPLNits float64, p Profile) uint16 {
	if peakNits > p.ExtremePeakThreshold {
		return toU16(math.Min(kneeNits, float64(p.ExtremePeakThreshold)))
	}

	apl := classifyWeight*aplNits + (1-classifyWeight)*sceneAPLNits
	clamp, mult := p.BrightClamp, p.BrightKneeMultiplier
	switch {
	case apl < darkAPLNits:
		clamp, mult = p.DarkClamp, p.DarkKneeMultiplier
	case apl < mediumAPLNits:
		clamp, mult = p.MediumClamp, p.MediumKneeMultiplier
	}
	return toU16(math.Min(float64(clamp.Apply(peakNits)), kneeNits*mult))
}

// ApplyDeltaLimit moves from prev toward target by at most maxDelta,
// saturating at the uint16 range.
func ApplyDeltaLimit(prev, target, maxDelta uint16) uint16 {
	switch {
	case target > prev:
		up := uint32(prev) + uint32(maxDelta)
		return uint16(min(up, uint32(target)))
	case target < prev:
		if maxDelta >= prev {
			return target
		}
		return max(prev-maxDelta, target)
	}
	return target
}

// toU16 truncates v toward zero into the uint16 range.
func toU16(v float64) uint16 {
	if v != v || v <= 0 {
		return 0
	}
	if v >= math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}
