// Package histogram implements the madVR v5 luminance binning scheme and
// the statistics derived from a binned histogram: average PQ, upper-tail
// percentiles and the highlight knee.
package histogram

import (
	"math"

	"github.com/five82/hdrmeasure/internal/transfer"
)

// Histogram sizes.
const (
	// Bins is the number of luminance bins.
	Bins = 256

	// HueBins is the number of hue bins.
	HueBins = 31

	// SDRBins is the number of bins below the SDR reference white.
	SDRBins = 64
)

// DefaultKneeNits is returned by HighlightKneeNits when no bin holds
// highlight mass.
const DefaultKneeNits = 1000.0

var (
	// SDRPeakPQ is the PQ code of 100 nits, the boundary between the
	// linear SDR bins and the HDR bins.
	SDRPeakPQ = transfer.NitsToPQ(100)

	sdrStep = SDRPeakPQ / SDRBins
	hdrStep = (1 - SDRPeakPQ) / (Bins - SDRBins)
	sdrMid  = sdrStep + sdrStep/2
	hdrMid  = hdrStep + hdrStep/2
)

// BinIndex maps a PQ value to its v5 bin.
func BinIndex(pq float64) int {
	pq = transfer.Clamp01(pq)
	var bin int
	if pq < SDRPeakPQ {
		bin = int(math.Floor(pq / sdrStep))
	} else {
		bin = SDRBins + int(math.Floor((pq-SDRPeakPQ)/hdrStep))
	}
	if bin > Bins-1 {
		return Bins - 1
	}
	return bin
}

// BinPQ returns the PQ value at the upper edge of bin i.
func BinPQ(i int) float64 {
	if i < SDRBins {
		return float64(i+1) * sdrStep
	}
	return math.Min(SDRPeakPQ+float64(i-SDRBins+1)*hdrStep, 1)
}

// Sum returns the total of all bins.
func Sum(h []float64) float64 {
	var s float64
	for _, v := range h {
		s += v
	}
	return s
}

// Renormalize scales h in place so its bins sum to 100. An empty
// histogram is left untouched.
func Renormalize(h []float64) {
	s := Sum(h)
	if s <= 0 {
		return
	}
	scale := 100 / s
	for i := range h {
		h[i] *= scale
	}
}

// AveragePQ computes the mid-bin weighted mean PQ of a percentage
// histogram. Bin 0 is ignored when it holds between 2% and 30% of the
// pixels, which is typical of residual black bars.
func AveragePQ(h []float64) float64 {
	var avg float64
	for i, percent := range h {
		if i == 0 && percent > 2 && percent < 30 {
			continue
		}
		var pq float64
		if i <= SDRBins {
			pq = float64(i) * sdrMid
		} else {
			pq = SDRPeakPQ + float64(i-63)*hdrMid
		}
		avg += pq * (percent / 100)
	}
	if s := Sum(h); s > 0 {
		avg *= 100 / s
	}
	return math.Min(avg, 1)
}

// PercentilePQ returns the PQ value at which the given percentile of
// pixels lies below, searching from the brightest bin down. It falls back
// to the highest non-empty bin, and to 1.0 for an empty histogram.
func PercentilePQ(h []float64, percentile float64) float64 {
	tail := 100 - percentile
	var cum float64
	for i := len(h) - 1; i >= 0; i-- {
		cum += h[i]
		if cum >= tail && cum > 0 {
			return BinPQ(i)
		}
	}
	for i := len(h) - 1; i >= 0; i-- {
		if h[i] > 0 {
			return BinPQ(i)
		}
	}
	return 1
}

// HighlightKneeNits returns the luminance below which 99% of pixels fall.
func HighlightKneeNits(h []float64) float64 {
	var cum float64
	for i := len(h) - 1; i >= 0; i-- {
		cum += h[i]
		if cum >= 1 {
			return transfer.PQToNits(BinPQ(i))
		}
	}
	return DefaultKneeNits
}
