package validation

import (
	"fmt"
	"math"
	"os"

	"github.com/five82/hdrmeasure/internal/histogram"
	"github.com/five82/hdrmeasure/internal/measurement"
)

const (
	// histogramSumTolerance is the allowed deviation of a histogram from 100%.
	histogramSumTolerance = 1.0
	// fallRelativeTolerance and fallAbsoluteNits bound header FALL drift;
	// the larger of the two applies.
	fallRelativeTolerance = 0.02
	fallAbsoluteNits      = 10.0
	// maxListedWarnings caps per-frame warnings before they are summarized.
	maxListedWarnings = 10
)

// ValidateFile reads and validates a measurement file. A returned error
// means the file is unreadable (bad magic, truncation, unsupported
// version). A readable file always yields a Result, which may carry
// warnings.
func ValidateFile(path string) (*measurement.File, *Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return ValidateBytes(data)
}

// ValidateBytes decodes and validates an encoded measurement.
func ValidateBytes(data []byte) (*measurement.File, *Result, error) {
	f, err := measurement.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	res, err := Validate(f)
	if err != nil {
		return nil, nil, err
	}
	return f, res, nil
}

// Validate runs all checks on a decoded or freshly built file. Histograms
// of the wrong length are a structural error.
func Validate(f *measurement.File) (*Result, error) {
	for i, fr := range f.Frames {
		if len(fr.LumHistogram) != histogram.Bins {
			return nil, fmt.Errorf("%w: frame %d luminance has %d bins", measurement.ErrHistogramLength, i, len(fr.LumHistogram))
		}
		if fr.HueHistogram != nil && len(fr.HueHistogram) != histogram.HueBins {
			return nil, fmt.Errorf("%w: frame %d hue has %d bins", measurement.ErrHistogramLength, i, len(fr.HueHistogram))
		}
	}

	res := &Result{}
	res.IsHistogramValid, res.HistogramMessage = checkHistograms(res, f)
	res.IsPQRangeValid, res.PQRangeMessage = checkPQRange(res, f)
	res.IsSceneTableValid, res.SceneTableMessage = checkScenes(res, f)
	res.IsFlagsConsistent, res.FlagsMessage = checkFlags(res, f)
	res.IsFALLConsistent, res.FALLMessage = checkFALL(res, f)
	return res, nil
}

// checkHistograms requires every luminance histogram, and every hue
// histogram that is not all zero, to sum to 100 within tolerance.
func checkHistograms(res *Result, f *measurement.File) (bool, string) {
	bad := 0
	for i, fr := range f.Frames {
		if s := histogram.Sum(fr.LumHistogram); math.Abs(s-100) > histogramSumTolerance {
			bad++
			if bad <= maxListedWarnings {
				res.warn("frame %d: luminance histogram sums to %.2f%%", i, s)
			}
		}
		if s := histogram.Sum(fr.HueHistogram); s != 0 && math.Abs(s-100) > histogramSumTolerance {
			bad++
			if bad <= maxListedWarnings {
				res.warn("frame %d: hue histogram sums to %.2f%%", i, s)
			}
		}
	}
	if bad > maxListedWarnings {
		res.warn("%d further histogram warnings suppressed", bad-maxListedWarnings)
	}
	return bad == 0, summarize(bad, "histogram warning", fmt.Sprintf("%d frames sum to 100%%", len(f.Frames)))
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}

func checkPQRange(res *Result, f *measurement.File) (bool, string) {
	bad := 0
	for i, fr := range f.Frames {
		if !inUnit(fr.PeakPQ2020) || !inUnit(fr.PeakPQDCIP3) || !inUnit(fr.PeakPQ709) || !inUnit(fr.AvgPQ) {
			bad++
			if bad <= maxListedWarnings {
				res.warn("frame %d: PQ outside [0,1] (peak %.4f, avg %.4f)", i, fr.PeakPQ2020, fr.AvgPQ)
			}
		}
	}
	if bad > maxListedWarnings {
		res.warn("%d further PQ range warnings suppressed", bad-maxListedWarnings)
	}
	return bad == 0, summarize(bad, "out-of-range frame", "All PQ values within [0,1]")
}

// checkScenes requires the scene table to tile [0, frames) exactly.
func checkScenes(res *Result, f *measurement.File) (bool, string) {
	total := len(f.Frames)
	bad := 0
	next := 0
	for i, s := range f.Scenes {
		switch {
		case s.Start > s.End:
			bad++
			res.warn("scene %d: start %d after end %d", i, s.Start, s.End)
		case s.End >= total:
			bad++
			res.warn("scene %d: end %d beyond last frame %d", i, s.End, total-1)
		case s.Start < next:
			bad++
			res.warn("scene %d: starts at %d, overlapping previous scene ending at %d", i, s.Start, next-1)
		case s.Start > next:
			bad++
			res.warn("scene %d: gap of %d frames before start %d", i, s.Start-next, s.Start)
		}
		if s.End >= s.Start {
			next = max(next, s.End+1)
		}
	}
	if total > 0 && next < total {
		bad++
		res.warn("frames %d-%d are not covered by any scene", next, total-1)
	}
	return bad == 0, summarize(bad, "scene table problem", fmt.Sprintf("%d scenes cover %d frames", len(f.Scenes), total))
}

// checkFlags compares the target flag with what the file carries.
func checkFlags(res *Result, f *measurement.File) (bool, string) {
	frames := len(f.Frames)
	if f.Header.HasTargets() {
		for _, fr := range f.Frames {
			if fr.TargetNits != 0 {
				return true, "target_nits present and flagged"
			}
		}
		if frames > 0 {
			res.warn("target flag set but every target_nits is zero")
			return false, "Target flag set but all targets are zero"
		}
		return true, "target_nits flagged"
	}
	if frames > 0 && f.TrailingBytes == frames*2 {
		res.warn("%d trailing bytes look like an unflagged target_nits block", f.TrailingBytes)
		return false, "Trailing target block present without flag"
	}
	return true, "No target_nits"
}

// checkFALL recomputes MaxFALL and AvgFALL from the frames.
func checkFALL(res *Result, f *measurement.File) (bool, string) {
	maxFALL, avgFALL := measurement.FALL(f.Frames)
	ok := true
	if !withinFALLTolerance(f.Header.MaxFALL, maxFALL) {
		ok = false
		res.warn("header MaxFALL %d differs from derived %d", f.Header.MaxFALL, maxFALL)
	}
	if !withinFALLTolerance(f.Header.AvgFALL, avgFALL) {
		ok = false
		res.warn("header AvgFALL %d differs from derived %d", f.Header.AvgFALL, avgFALL)
	}
	if !ok {
		return false, fmt.Sprintf("Header %d/%d, derived %d/%d", f.Header.MaxFALL, f.Header.AvgFALL, maxFALL, avgFALL)
	}
	return true, fmt.Sprintf("MaxFALL %d, AvgFALL %d match frames", f.Header.MaxFALL, f.Header.AvgFALL)
}

func withinFALLTolerance(header, derived uint32) bool {
	diff := math.Abs(float64(header) - float64(derived))
	return diff <= math.Max(float64(header)*fallRelativeTolerance, fallAbsoluteNits)
}
