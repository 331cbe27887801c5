package measurement

import (
	"math"
	"sort"
)

// Comparison summarizes how a measurement differs from a baseline.
type Comparison struct {
	BaselineScenes  int
	CurrentScenes   int
	BaselineMaxCLL  uint32
	CurrentMaxCLL   uint32
	BaselineMaxFALL uint32
	CurrentMaxFALL  uint32

	// TargetsCompared is false when the frame counts differ.
	TargetsCompared bool
	// TargetDeltaP95 is the 95th percentile absolute per-frame target delta.
	TargetDeltaP95 float64
}

// SceneDelta returns current minus baseline scene count.
func (c Comparison) SceneDelta() int {
	return c.CurrentScenes - c.BaselineScenes
}

// MaxCLLDelta returns current minus baseline MaxCLL.
func (c Comparison) MaxCLLDelta() int64 {
	return int64(c.CurrentMaxCLL) - int64(c.BaselineMaxCLL)
}

// MaxFALLDelta returns current minus baseline MaxFALL.
func (c Comparison) MaxFALLDelta() int64 {
	return int64(c.CurrentMaxFALL) - int64(c.BaselineMaxFALL)
}

// Compare reports scene, light level and target differences between two
// measurements. Frames without a target count as 0.
func Compare(baseline, current *File) Comparison {
	c := Comparison{
		BaselineScenes:  len(baseline.Scenes),
		CurrentScenes:   len(current.Scenes),
		BaselineMaxCLL:  baseline.Header.MaxCLL,
		CurrentMaxCLL:   current.Header.MaxCLL,
		BaselineMaxFALL: baseline.Header.MaxFALL,
		CurrentMaxFALL:  current.Header.MaxFALL,
	}
	if len(baseline.Frames) != len(current.Frames) {
		return c
	}

	c.TargetsCompared = true
	deltas := make([]float64, len(baseline.Frames))
	for i := range baseline.Frames {
		deltas[i] = math.Abs(float64(current.Frames[i].TargetNits) - float64(baseline.Frames[i].TargetNits))
	}
	if len(deltas) == 0 {
		return c
	}
	sort.Float64s(deltas)
	idx := min(int(math.Floor(float64(len(deltas))*0.95)), len(deltas)-1)
	c.TargetDeltaP95 = deltas[idx]
	return c
}
