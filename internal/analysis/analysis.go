// Package analysis turns decoded frames into luminance and hue histogram
// measurements.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/five82/hdrmeasure/internal/crop"
	"github.com/five82/hdrmeasure/internal/histogram"
	"github.com/five82/hdrmeasure/internal/measurement"
	"github.com/five82/hdrmeasure/internal/transfer"
	"github.com/five82/hdrmeasure/internal/video"
	"github.com/five82/hdrmeasure/internal/worker"
)

// ErrCropOutOfBounds indicates a crop rectangle that does not fit the frame.
var ErrCropOutOfBounds = errors.New("crop rectangle outside frame")

// DefaultHLGPeakNits is the nominal display peak assumed for HLG content.
const DefaultHLGPeakNits = 1000.0

// tasksPerWorker oversubscribes the pool so uneven rows balance out.
const tasksPerWorker = 4

// DenoiseMode selects the luma pre-filter.
type DenoiseMode string

const (
	DenoiseOff     DenoiseMode = "off"
	DenoiseMedian3 DenoiseMode = "median3"
)

// ParseDenoise validates a denoise mode name. Empty means off.
func ParseDenoise(s string) (DenoiseMode, error) {
	switch m := DenoiseMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", DenoiseOff:
		return DenoiseOff, nil
	case DenoiseMedian3:
		return m, nil
	}
	return "", fmt.Errorf("unknown denoise mode %q (want off or median3)", s)
}

// Options configures an Analyzer.
type Options struct {
	Transfer    video.TransferFunction
	HLGPeakNits float64
	Denoise     DenoiseMode
}

// Analyzer measures frames. It is safe for concurrent use.
type Analyzer struct {
	opts Options
	pool *worker.Pool

	// pq and bin are indexed by 10-bit code value.
	pq  [video.CodeMask + 1]float64
	bin [video.CodeMask + 1]uint8
}

// New builds an analyzer and its code-value lookup tables.
func New(opts Options, pool *worker.Pool) *Analyzer {
	if opts.HLGPeakNits <= 0 {
		opts.HLGPeakNits = DefaultHLGPeakNits
	}
	if pool == nil {
		pool = worker.NewPool(0)
	}
	a := &Analyzer{opts: opts, pool: pool}
	for code := range a.pq {
		pq := CodeToPQ(uint16(code), opts.Transfer, opts.HLGPeakNits)
		a.pq[code] = pq
		a.bin[code] = uint8(histogram.BinIndex(pq))
	}
	return a
}

// CodeToPQ converts a limited-range 10-bit luma code to a PQ value. HLG
// codes go through absolute luminance; everything else is read as PQ.
func CodeToPQ(code uint16, tf video.TransferFunction, hlgPeakNits float64) float64 {
	norm := crop.NormalizeLimited(code)
	if tf == video.TransferHLG {
		return transfer.Clamp01(transfer.NitsToPQ(transfer.HLGSignalToNits(norm, hlgPeakNits)))
	}
	return norm
}

type partial struct {
	hist [histogram.Bins]float64
	max  float64
}

// Analyze measures one frame inside rect. The returned frame has no target.
func (a *Analyzer) Analyze(ctx context.Context, f *video.Frame, rect crop.Rect) (measurement.Frame, error) {
	if err := f.Validate(); err != nil {
		return measurement.Frame{}, err
	}
	if rect.X < 0 || rect.Y < 0 || rect.Width <= 0 || rect.Height <= 0 ||
		rect.X+rect.Width > f.Width || rect.Y+rect.Height > f.Height {
		return measurement.Frame{}, fmt.Errorf("%w: %s in %dx%d", ErrCropOutOfBounds, rect, f.Width, f.Height)
	}

	luma := f
	if a.opts.Denoise == DenoiseMedian3 {
		luma = Median3(f, rect)
	}

	ranges := worker.Partition(rect.Y, rect.Y+rect.Height, a.pool.Workers()*tasksPerWorker)
	parts, err := worker.Map(ctx, a.pool, ranges, func(ctx context.Context, r worker.Range) (partial, error) {
		return a.scanRows(ctx, luma, rect, r)
	})
	if err != nil {
		return measurement.Frame{}, err
	}

	out := measurement.NewFrame()
	var peak float64
	for _, p := range parts {
		for i, v := range p.hist {
			out.LumHistogram[i] += v
		}
		peak = max(peak, p.max)
	}

	total := float64(rect.Pixels())
	for i := range out.LumHistogram {
		out.LumHistogram[i] = out.LumHistogram[i] / total * 100
	}
	out.PeakPQ2020 = peak
	out.AvgPQ = histogram.AveragePQ(out.LumHistogram)
	out.HueHistogram = HueHistogram(f, rect)
	return out, nil
}

func (a *Analyzer) scanRows(ctx context.Context, f *video.Frame, rect crop.Rect, r worker.Range) (partial, error) {
	var p partial
	if err := ctx.Err(); err != nil {
		return p, err
	}
	stride := f.Strides[0]
	plane := f.Planes[0]
	for y := r.Start; y < r.End; y++ {
		row := plane[y*stride+rect.X*2 : y*stride+(rect.X+rect.Width)*2]
		for i := 0; i < len(row); i += 2 {
			code := (uint16(row[i]) | uint16(row[i+1])<<8) & video.CodeMask
			p.hist[a.bin[code]]++
			if pq := a.pq[code]; pq > p.max {
				p.max = pq
			}
		}
	}
	return p, nil
}
