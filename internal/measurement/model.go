// Package measurement holds the frame and scene records produced by the
// analyzer and the madVR-style binary layout they are persisted in.
package measurement

import (
	"github.com/five82/hdrmeasure/internal/histogram"
)

// Supported format versions.
const (
	Version5 = 5
	Version6 = 6
)

// Header flag bits.
const (
	// FlagTargets marks a trailing per-frame target_nits block.
	FlagTargets = 1
	// FlagHue marks per-frame hue histograms.
	FlagHue = 2
)

// Frame is the measurement of one analyzed frame.
type Frame struct {
	PeakPQ2020  float64
	PeakPQDCIP3 float64 // version 6 only
	PeakPQ709   float64 // version 6 only
	AvgPQ       float64

	LumHistogram []float64 // percentages, histogram.Bins entries
	HueHistogram []float64 // percentages, histogram.HueBins entries

	TargetNits uint16
	HasTarget  bool
}

// NewFrame returns a frame with zeroed histograms of the canonical size.
func NewFrame() Frame {
	return Frame{
		LumHistogram: make([]float64, histogram.Bins),
		HueHistogram: make([]float64, histogram.HueBins),
	}
}

// Clone returns a deep copy of f.
func (f Frame) Clone() Frame {
	c := f
	c.LumHistogram = append([]float64(nil), f.LumHistogram...)
	if f.HueHistogram != nil {
		c.HueHistogram = append([]float64(nil), f.HueHistogram...)
	}
	return c
}

// SetTarget records the optimizer's target brightness.
func (f *Frame) SetTarget(nits uint16) {
	f.TargetNits = nits
	f.HasTarget = true
}

// Scene is an inclusive, contiguous range of frames and its statistics.
type Scene struct {
	Start    int
	End      int
	PeakNits uint32
	AvgPQ    float64
}

// Len returns the number of frames in the scene.
func (s Scene) Len() int {
	return s.End - s.Start + 1
}

// Header is the fixed-size file header.
type Header struct {
	Version        uint32
	HeaderSize     uint32
	SceneCount     uint32
	FrameCount     uint32
	Flags          uint32
	MaxCLL         uint32
	MaxFALL        uint32
	AvgFALL        uint32
	TargetPeakNits uint32 // version 6 only
}

// HasTargets reports whether the target_nits block is flagged.
func (h Header) HasTargets() bool {
	return h.Flags&FlagTargets != 0
}

// HasHue reports whether hue histograms are flagged.
func (h Header) HasHue() bool {
	return h.Flags&FlagHue != 0
}

// File is a complete measurement: header, scenes and frames.
type File struct {
	Header Header
	Scenes []Scene
	Frames []Frame

	// TrailingBytes counts bytes after the last decoded section.
	TrailingBytes int
}

// HeaderSize returns the header length for a version, excluding the magic.
func HeaderSize(version uint32) uint32 {
	if version >= Version6 {
		return 36
	}
	return 32
}
