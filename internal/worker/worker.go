// Package worker provides the bounded fork-join pool used for row-parallel
// pixel reductions and the progress type shared with reporters.
package worker

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minRowsPerTask keeps tasks large enough that scheduling does not dominate.
const minRowsPerTask = 16

// Range is a half-open interval [Start, End) of rows.
type Range struct {
	Start int
	End   int
}

// Len returns the number of rows in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Partition splits [start, end) into at most parts contiguous ranges of
// near-equal length. Empty input yields no ranges.
func Partition(start, end, parts int) []Range {
	n := end - start
	if n <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if limit := (n + minRowsPerTask - 1) / minRowsPerTask; parts > limit {
		parts = limit
	}

	ranges := make([]Range, 0, parts)
	base, extra := n/parts, n%parts
	pos := start
	for i := 0; i < parts; i++ {
		size := base
		if i < extra {
			size++
		}
		ranges = append(ranges, Range{Start: pos, End: pos + size})
		pos += size
	}
	return ranges
}

// Pool runs tasks with bounded concurrency.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given concurrency limit. Values below 1
// use the number of logical CPUs.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int {
	return p.workers
}

// Map runs fn over each range and returns the results in range order.
// The first error cancels the remaining tasks.
func Map[T any](ctx context.Context, p *Pool, ranges []Range, fn func(context.Context, Range) (T, error)) ([]T, error) {
	results := make([]T, len(ranges))
	if len(ranges) == 1 {
		v, err := fn(ctx, ranges[0])
		if err != nil {
			return nil, err
		}
		results[0] = v
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, r := range ranges {
		g.Go(func() error {
			v, err := fn(gctx, r)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Progress tracks how far a pass over the input has advanced.
type Progress struct {
	FramesComplete int
	FramesTotal    int // 0 when unknown
	ScenesDetected int
}

// Percent returns the completion percentage, or 0 when the total is unknown.
func (p Progress) Percent() float64 {
	if p.FramesTotal == 0 {
		return 0
	}
	return float64(p.FramesComplete) / float64(p.FramesTotal) * 100
}
