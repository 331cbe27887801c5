package histogram

import (
	"fmt"
	"strings"
)

// PeakSource selects how a frame's peak is derived.
type PeakSource string

const (
	// PeakMax uses the direct per-pixel maximum.
	PeakMax PeakSource = "max"
	// PeakP99 uses the 99th percentile of the histogram.
	PeakP99 PeakSource = "histogram99"
	// PeakP999 uses the 99.9th percentile of the histogram.
	PeakP999 PeakSource = "histogram999"
)

// ParsePeakSource validates a peak source name. The empty string is
// returned unchanged so callers can pick a default.
func ParsePeakSource(s string) (PeakSource, error) {
	switch p := PeakSource(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PeakMax, PeakP99, PeakP999:
		return p, nil
	}
	return "", fmt.Errorf("unknown peak source %q (want max, histogram99 or histogram999)", s)
}

// Percentile returns the percentile a histogram source reads, or 100 for max.
func (p PeakSource) Percentile() float64 {
	switch p {
	case PeakP99:
		return 99
	case PeakP999:
		return 99.9
	}
	return 100
}

// SelectPeakPQ returns the frame peak chosen by mode.
func SelectPeakPQ(h []float64, directMaxPQ float64, mode PeakSource) float64 {
	switch mode {
	case PeakP99, PeakP999:
		return PercentilePQ(h, mode.Percentile())
	}
	return directMaxPQ
}
