package validation

import (
	"math"

	"github.com/five82/hdrmeasure/internal/measurement"
	"github.com/five82/hdrmeasure/internal/transfer"
)

// Stats summarizes the frame table of a measurement file.
type Stats struct {
	Frames       int
	MaxPeakNits  float64
	MeanPeakNits float64
	MaxAvgNits   float64
	MeanAvgNits  float64

	// TargetFrames counts frames with a non-zero target_nits.
	TargetFrames int
	MinTarget    uint16
	MaxTarget    uint16
}

// TargetCoverage returns the share of frames carrying a target, in percent.
func (s Stats) TargetCoverage() float64 {
	if s.Frames == 0 {
		return 0
	}
	return float64(s.TargetFrames) / float64(s.Frames) * 100
}

// Summarize computes Stats for f.
func Summarize(f *measurement.File) Stats {
	s := Stats{Frames: len(f.Frames), MinTarget: math.MaxUint16}
	if s.Frames == 0 {
		s.MinTarget = 0
		return s
	}

	var peakSum, avgSum float64
	for _, fr := range f.Frames {
		peak := transfer.PQToNits(fr.PeakPQ2020)
		avg := transfer.PQToNits(fr.AvgPQ)
		s.MaxPeakNits = math.Max(s.MaxPeakNits, peak)
		s.MaxAvgNits = math.Max(s.MaxAvgNits, avg)
		peakSum += peak
		avgSum += avg

		if fr.HasTarget && fr.TargetNits > 0 {
			s.TargetFrames++
			s.MinTarget = min(s.MinTarget, fr.TargetNits)
			s.MaxTarget = max(s.MaxTarget, fr.TargetNits)
		}
	}
	s.MeanPeakNits = peakSum / float64(s.Frames)
	s.MeanAvgNits = avgSum / float64(s.Frames)
	if s.TargetFrames == 0 {
		s.MinTarget = 0
	}
	return s
}
