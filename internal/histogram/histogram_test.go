package histogram

import (
	"math"
	"testing"

	"github.com/five82/hdrmeasure/internal/transfer"
)

func TestBinBoundaries(t *testing.T) {
	if got := transfer.PQToNits(SDRPeakPQ); math.Abs(got-100) > 1 {
		t.Errorf("SDR peak = %v nits, want ~100", got)
	}
	if got := SDRPeakPQ + float64(Bins-SDRBins)*hdrStep; math.Abs(got-1) > 1e-9 {
		t.Errorf("top of HDR range = %v, want 1", got)
	}

	tests := []struct {
		name string
		pq   float64
		want int
	}{
		{"black", 0, 0},
		{"negative clamps", -0.2, 0},
		{"just below sdr peak", SDRPeakPQ - 1e-9, 63},
		{"sdr peak", SDRPeakPQ, 64},
		{"full scale", 1, 255},
		{"above full scale", 1.5, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BinIndex(tt.pq); got != tt.want {
				t.Errorf("BinIndex(%v) = %d, want %d", tt.pq, got, tt.want)
			}
		})
	}
}

func TestBinPQIsUpperEdge(t *testing.T) {
	for i := 0; i < Bins-1; i++ {
		pq := BinPQ(i)
		if BinIndex(pq-1e-9) != i {
			t.Fatalf("BinPQ(%d) = %v is not the upper edge of bin %d", i, pq, i)
		}
	}
	if got := BinPQ(Bins - 1); math.Abs(got-1) > 1e-9 {
		t.Errorf("BinPQ(255) = %v, want 1", got)
	}
}

func TestAveragePQ(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := AveragePQ(make([]float64, Bins)); got != 0 {
			t.Errorf("AveragePQ(empty) = %v, want 0", got)
		}
	})

	t.Run("single bin", func(t *testing.T) {
		h := make([]float64, Bins)
		h[32] = 100
		want := 32 * sdrMid
		if got := AveragePQ(h); math.Abs(got-want) > 1e-12 {
			t.Errorf("AveragePQ = %v, want %v", got, want)
		}
	})

	t.Run("black bar bin ignored", func(t *testing.T) {
		h := make([]float64, Bins)
		h[0] = 10
		h[100] = 90
		want := (SDRPeakPQ + 37*hdrMid) * 0.9
		if got := AveragePQ(h); math.Abs(got-want) > 1e-12 {
			t.Errorf("AveragePQ = %v, want %v", got, want)
		}
	})

	t.Run("dominant black counted", func(t *testing.T) {
		h := make([]float64, Bins)
		h[0] = 50
		h[100] = 50
		want := (SDRPeakPQ + 37*hdrMid) / 2
		if got := AveragePQ(h); math.Abs(got-want) > 1e-12 {
			t.Errorf("AveragePQ = %v, want %v", got, want)
		}
	})

	t.Run("clamped to one", func(t *testing.T) {
		h := make([]float64, Bins)
		h[255] = 100
		if got := AveragePQ(h); got != 1 {
			t.Errorf("AveragePQ = %v, want 1", got)
		}
	})
}

func TestPercentilePQ(t *testing.T) {
	h := make([]float64, Bins)
	h[100] = 98
	h[200] = 1.5
	h[250] = 0.5

	if got := PercentilePQ(h, 99); got != BinPQ(200) {
		t.Errorf("P99 = %v, want BinPQ(200) = %v", got, BinPQ(200))
	}
	if got := PercentilePQ(h, 99.9); got != BinPQ(250) {
		t.Errorf("P99.9 = %v, want BinPQ(250) = %v", got, BinPQ(250))
	}

	sparse := make([]float64, Bins)
	sparse[40] = 0.5
	if got := PercentilePQ(sparse, 99); got != BinPQ(40) {
		t.Errorf("fallback = %v, want highest non-empty bin %v", got, BinPQ(40))
	}

	if got := PercentilePQ(make([]float64, Bins), 99); got != 1 {
		t.Errorf("empty histogram = %v, want 1", got)
	}
}

func TestHighlightKneeNits(t *testing.T) {
	h := make([]float64, Bins)
	h[100] = 98
	h[250] = 1.5
	h[255] = 0.5
	if got := HighlightKneeNits(h); got <= 1000 {
		t.Errorf("knee = %v nits, want > 1000", got)
	}

	if got := HighlightKneeNits(make([]float64, Bins)); got != DefaultKneeNits {
		t.Errorf("empty knee = %v, want %v", got, DefaultKneeNits)
	}
}

func TestRenormalize(t *testing.T) {
	h := []float64{1, 1, 2}
	Renormalize(h)
	if math.Abs(Sum(h)-100) > 1e-9 || h[2] != 50 {
		t.Errorf("Renormalize = %v", h)
	}

	zero := []float64{0, 0}
	Renormalize(zero)
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("Renormalize(zero) = %v", zero)
	}
}

func TestSelectPeakPQ(t *testing.T) {
	h := make([]float64, Bins)
	h[10] = 99
	h[200] = 1

	tests := []struct {
		mode PeakSource
		want float64
	}{
		{PeakMax, 0.9},
		{PeakP99, BinPQ(200)},
		{PeakP999, BinPQ(200)},
		{"", 0.9},
	}
	for _, tt := range tests {
		if got := SelectPeakPQ(h, 0.9, tt.mode); got != tt.want {
			t.Errorf("SelectPeakPQ(%q) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestParsePeakSource(t *testing.T) {
	for _, s := range []string{"", "max", "Histogram99", "histogram999"} {
		if _, err := ParsePeakSource(s); err != nil {
			t.Errorf("ParsePeakSource(%q): %v", s, err)
		}
	}
	if _, err := ParsePeakSource("p95"); err == nil {
		t.Error("ParsePeakSource(p95) should fail")
	}
}
