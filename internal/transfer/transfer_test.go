package transfer

import (
	"math"
	"testing"
)

func TestPQRoundTrip(t *testing.T) {
	for _, nits := range []float64{0, 10, 100, 1000, 4000, 10000} {
		pq := NitsToPQ(nits)
		back := PQToNits(pq)
		diff := math.Abs(back - nits)
		if diff >= 0.1 && diff/math.Max(nits, 1) >= 0.001 {
			t.Errorf("round trip %v nits -> pq %v -> %v nits (error %v)", nits, pq, back, diff)
		}
	}
}

func TestNitsToPQKnownValues(t *testing.T) {
	tests := []struct {
		nits float64
		want float64
	}{
		{0, 0.0000007},
		{100, 0.5081},
		{1000, 0.7518},
		{10000, 1.0},
	}

	for _, tt := range tests {
		got := NitsToPQ(tt.nits)
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("NitsToPQ(%v) = %v, want ~%v", tt.nits, got, tt.want)
		}
	}
}

func TestPQToNitsClamps(t *testing.T) {
	if got := PQToNits(-0.5); got != 0 {
		t.Errorf("PQToNits(-0.5) = %v, want 0", got)
	}
	if got := PQToNits(1.5); math.Abs(got-MaxNits) > 0.01 {
		t.Errorf("PQToNits(1.5) = %v, want %v", got, MaxNits)
	}
}

func TestNitsToPQMonotonic(t *testing.T) {
	prev := -1.0
	for nits := 0.0; nits <= MaxNits; nits += 50 {
		pq := NitsToPQ(nits)
		if pq < prev {
			t.Fatalf("NitsToPQ not monotonic at %v nits", nits)
		}
		prev = pq
	}
}

func TestHLGSignalToRelative(t *testing.T) {
	tests := []struct {
		name   string
		signal float64
		want   float64
		tol    float64
	}{
		{"zero", 0, 0, 1e-12},
		{"low segment", 0.25, 0.25 * 0.25 / 3, 1e-9},
		{"segment boundary", 0.5, 0.25 / 3, 1e-9},
		{"high segment", 0.75, 0.265, 0.02},
		{"nominal peak", 1.0, 1.0, 0.001},
		{"clamped above", 1.5, 1.0, 0.001},
		{"clamped below", -1, 0, 1e-12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HLGSignalToRelative(tt.signal)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("HLGSignalToRelative(%v) = %v, want %v±%v", tt.signal, got, tt.want, tt.tol)
			}
		})
	}
}

func TestHLGSignalToNits(t *testing.T) {
	if got := HLGSignalToNits(0.75, 1000); math.Abs(got-265) > 20 {
		t.Errorf("HLGSignalToNits(0.75, 1000) = %v, want ~265", got)
	}
	if got := HLGSignalToNits(1.0, 50000); got != MaxNits {
		t.Errorf("HLGSignalToNits should cap at %v, got %v", MaxNits, got)
	}
}
