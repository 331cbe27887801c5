package scene

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/hdrmeasure/internal/histogram"
	"github.com/five82/hdrmeasure/internal/measurement"
	"github.com/five82/hdrmeasure/internal/transfer"
)

func spike(bin int) []float64 {
	h := make([]float64, histogram.Bins)
	h[bin] = 100
	return h
}

func TestDistance(t *testing.T) {
	flat := make([]float64, histogram.Bins)
	for i := range flat {
		flat[i] = 100.0 / histogram.Bins
	}
	if d := Distance(flat, flat); math.Abs(d) > 1e-9 {
		t.Errorf("identical histograms distance = %v, want 0", d)
	}
	if d := Distance(spike(0), spike(255)); d <= 0.5 {
		t.Errorf("disjoint histograms distance = %v, want > 0.5", d)
	}
	if Distance(spike(0), spike(255)) != Distance(spike(255), spike(0)) {
		t.Error("distance should be symmetric")
	}
}

func TestCutAllowed(t *testing.T) {
	tests := []struct {
		name      string
		last      int
		candidate int
		want      bool
	}{
		{"first cut too early", NoCut, 10, false},
		{"first cut at min length", NoCut, 24, true},
		{"first cut late", NoCut, 100, true},
		{"second cut too close", 24, 40, false},
		{"second cut at min distance", 24, 48, true},
		{"after later cut", 100, 110, false},
		{"exactly min after later cut", 100, 124, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CutAllowed(tt.last, tt.candidate, 24); got != tt.want {
				t.Errorf("CutAllowed(%d, %d, 24) = %v, want %v", tt.last, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestSegmenterStepChange(t *testing.T) {
	s := NewSegmenter(Options{Threshold: 0.3, MinLength: 24})
	for i := 0; i < 48; i++ {
		h := spike(10)
		if i >= 24 {
			h = spike(200)
		}
		s.Push(i, h)
	}

	want := []measurement.Scene{{Start: 0, End: 23}, {Start: 24, End: 47}}
	if diff := cmp.Diff(want, s.Scenes(48)); diff != "" {
		t.Errorf("scenes mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmenterDebounce(t *testing.T) {
	s := NewSegmenter(Options{Threshold: 0.3, MinLength: 24})
	for i := 0; i < 60; i++ {
		// Alternate every 5 frames so every boundary is a candidate.
		bin := 10
		if (i/5)%2 == 1 {
			bin = 200
		}
		s.Push(i, spike(bin))
	}

	want := []int{25, 50}
	if diff := cmp.Diff(want, s.Cuts()); diff != "" {
		t.Errorf("cuts mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmenterSmoothingDampensSingleSpike(t *testing.T) {
	raw := NewSegmenter(Options{Threshold: 50, MinLength: 1})
	smoothed := NewSegmenter(Options{Threshold: 50, MinLength: 1, Smoothing: 5})

	a := spike(10)
	b := make([]float64, histogram.Bins)
	b[10], b[11] = 50, 50
	seq := [][]float64{a, a, a, a, a, b, b, b}

	var rawCut, smoothCut bool
	for i, h := range seq {
		_, c1 := raw.Push(i, h)
		_, c2 := smoothed.Push(i, h)
		rawCut = rawCut || c1
		smoothCut = smoothCut || c2
	}
	if !rawCut {
		t.Error("raw distance should cross the threshold")
	}
	if smoothCut {
		t.Error("averaged distance should stay below the threshold")
	}
}

func TestSegmenterWindowDropsOldDistances(t *testing.T) {
	s := NewSegmenter(Options{Threshold: math.Inf(1), MinLength: 1, Smoothing: 3})
	a, b := spike(10), spike(200)
	d := Distance(b, a)

	// one jump at frame 1, then a static picture
	want := []float64{0, d, d / 2, d / 3, 0, 0}
	seq := [][]float64{a, b, b, b, b, b}
	for i, h := range seq {
		got, _ := s.Push(i, h)
		if math.Abs(got-want[i]) > 1e-9 {
			t.Errorf("frame %d decision value = %v, want %v", i, got, want[i])
		}
	}
}

func TestFromCuts(t *testing.T) {
	tests := []struct {
		name  string
		cuts  []int
		total int
		want  []measurement.Scene
	}{
		{"no cuts", nil, 10, []measurement.Scene{{Start: 0, End: 9}}},
		{"unsorted", []int{7, 3}, 10, []measurement.Scene{{Start: 0, End: 2}, {Start: 3, End: 6}, {Start: 7, End: 9}}},
		{"ignores out of range", []int{0, 5, 10, 5}, 10, []measurement.Scene{{Start: 0, End: 4}, {Start: 5, End: 9}}},
		{"empty video", []int{3}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, FromCuts(tt.cuts, tt.total)); diff != "" {
				t.Errorf("FromCuts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepair(t *testing.T) {
	scenes := []measurement.Scene{
		{Start: 0, End: 49},
		{Start: 50, End: math.MaxInt},
	}
	Repair(scenes, 100)
	assertCoverage(t, scenes, 100)

	tests := []struct {
		name string
		in   measurement.Scene
		want measurement.Scene
	}{
		{"end past total", measurement.Scene{Start: 10, End: 500}, measurement.Scene{Start: 10, End: 99}},
		{"start past total", measurement.Scene{Start: 200, End: 300}, measurement.Scene{Start: 99, End: 99}},
		{"inverted", measurement.Scene{Start: 60, End: 20}, measurement.Scene{Start: 0, End: 99}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []measurement.Scene{tt.in}
			Repair(got, 100)
			if got[0] != tt.want {
				t.Errorf("Repair(%+v) = %+v, want %+v", tt.in, got[0], tt.want)
			}
		})
	}
}

func assertCoverage(t *testing.T, scenes []measurement.Scene, total int) {
	t.Helper()
	next := 0
	for _, s := range scenes {
		if s.Start != next || s.End < s.Start {
			t.Fatalf("scene %+v breaks coverage at frame %d", s, next)
		}
		next = s.End + 1
	}
	if next != total {
		t.Fatalf("scenes cover [0,%d), want [0,%d)", next, total)
	}
}

func TestComputeStats(t *testing.T) {
	frames := make([]measurement.Frame, 4)
	for i := range frames {
		frames[i].AvgPQ = 0.1 * float64(i+1)
		frames[i].PeakPQ2020 = 0.5 + 0.05*float64(i)
	}
	scenes := []measurement.Scene{{Start: 0, End: 1}, {Start: 2, End: 3}}
	ComputeStats(scenes, frames)

	if math.Abs(scenes[0].AvgPQ-0.15) > 1e-12 || math.Abs(scenes[1].AvgPQ-0.35) > 1e-12 {
		t.Errorf("avg_pq = %v, %v", scenes[0].AvgPQ, scenes[1].AvgPQ)
	}
	if want := uint32(transfer.PQToNits(frames[1].PeakPQ2020)); scenes[0].PeakNits != want {
		t.Errorf("scene 0 peak = %d, want %d", scenes[0].PeakNits, want)
	}
	if want := uint32(transfer.PQToNits(frames[3].PeakPQ2020)); scenes[1].PeakNits != want {
		t.Errorf("scene 1 peak = %d, want %d", scenes[1].PeakNits, want)
	}
}
