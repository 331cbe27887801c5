package measurement

import (
	"fmt"
	"math"
	"sort"

	"github.com/five82/hdrmeasure/internal/histogram"
	"github.com/five82/hdrmeasure/internal/transfer"
)

// Per-gamut peak factors written in version 6 files. They approximate the
// P3 and 709 peaks from the 2020 peak without an RGB conversion.
const (
	dciP3PeakFactor = 0.99
	bt709PeakFactor = 0.95
)

// BuildOptions controls header derivation.
type BuildOptions struct {
	Version uint32

	// Optimizer marks the file as carrying target_nits.
	Optimizer bool

	// TargetPeakNits overrides the v6 header target; 0 uses MaxCLL.
	TargetPeakNits uint32

	// HeaderPeakSource selects how MaxCLL is derived from frame peaks.
	HeaderPeakSource histogram.PeakSource
}

// Build assembles a File from finalized scenes and frames. Frames are
// copied; v6 per-gamut peaks are filled on the copies.
func Build(scenes []Scene, frames []Frame, opts BuildOptions) (*File, error) {
	if opts.Version != Version5 && opts.Version != Version6 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, opts.Version)
	}

	maxCLL := MaxCLL(frames, opts.HeaderPeakSource)
	maxFALL, avgFALL := FALL(frames)

	h := Header{
		Version:    opts.Version,
		HeaderSize: HeaderSize(opts.Version),
		SceneCount: uint32(len(scenes)),
		FrameCount: uint32(len(frames)),
		Flags:      FlagHue,
		MaxCLL:     maxCLL,
		MaxFALL:    maxFALL,
		AvgFALL:    avgFALL,
	}
	if opts.Optimizer {
		h.Flags |= FlagTargets
	}
	if opts.Version >= Version6 {
		h.TargetPeakNits = opts.TargetPeakNits
		if h.TargetPeakNits == 0 {
			h.TargetPeakNits = maxCLL
		}
	}

	out := make([]Frame, len(frames))
	for i, f := range frames {
		c := f.Clone()
		if opts.Version >= Version6 {
			c.PeakPQDCIP3 = math.Min(c.PeakPQ2020*dciP3PeakFactor, 1)
			c.PeakPQ709 = math.Min(c.PeakPQ2020*bt709PeakFactor, 1)
		}
		out[i] = c
	}

	return &File{
		Header: h,
		Scenes: append([]Scene(nil), scenes...),
		Frames: out,
	}, nil
}

// MaxCLL derives the content light level from per-frame peaks, rounded to
// whole nits, using the selected policy.
func MaxCLL(frames []Frame, source histogram.PeakSource) uint32 {
	peaks := make([]uint32, len(frames))
	for i, f := range frames {
		peaks[i] = uint32(math.Round(transfer.PQToNits(f.PeakPQ2020)))
	}

	switch source {
	case histogram.PeakP99:
		return PercentileU32(peaks, 0.99)
	case histogram.PeakP999:
		return PercentileU32(peaks, 0.999)
	}
	var m uint32
	for _, p := range peaks {
		m = max(m, p)
	}
	return m
}

// FALL returns the rounded maximum and mean frame-average light level.
func FALL(frames []Frame) (maxFALL, avgFALL uint32) {
	if len(frames) == 0 {
		return 0, 0
	}
	var peak, sum float64
	for _, f := range frames {
		nits := transfer.PQToNits(f.AvgPQ)
		peak = math.Max(peak, nits)
		sum += nits
	}
	return uint32(math.Round(peak)), uint32(math.Round(sum / float64(len(frames))))
}

// PercentileU32 returns the nearest-rank percentile p in [0,1] of values.
func PercentileU32(values []uint32, p float64) uint32 {
	if len(values) == 0 {
		return 0
	}
	v := append([]uint32(nil), values...)
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })

	p = math.Max(0, math.Min(p, 1))
	idx := int(math.Max(math.Ceil(p*float64(len(v))-1), 0))
	return v[min(idx, len(v)-1)]
}
