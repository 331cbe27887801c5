// Package transfer implements the SMPTE ST.2084 (PQ) and BT.2100 HLG
// transfer functions used to move between code values and absolute luminance.
package transfer

import "math"

// ST.2084 constants.
const (
	// MaxNits is the luminance represented by PQ code value 1.0.
	MaxNits = 10000.0

	pqM1 = 2610.0 / 16384.0
	pqM2 = (2523.0 / 4096.0) * 128.0
	pqC1 = 3424.0 / 4096.0
	pqC2 = (2413.0 / 4096.0) * 32.0
	pqC3 = (2392.0 / 4096.0) * 32.0
)

// NitsToPQ converts absolute luminance in cd/m² to a PQ code value in [0,1].
func NitsToPQ(nits float64) float64 {
	y := math.Max(nits/MaxNits, 0)
	ym := math.Pow(y, pqM1)
	pq := math.Pow((pqC1+pqC2*ym)/(1+pqC3*ym), pqM2)
	return Clamp01(pq)
}

// PQToNits converts a PQ code value to absolute luminance in cd/m².
// Values at or below zero map to 0 nits.
func PQToNits(pq float64) float64 {
	if pq <= 0 {
		return 0
	}
	pq = math.Min(pq, 1)
	e := math.Pow(pq, 1/pqM2)
	num := math.Max(e-pqC1, 0)
	y := math.Pow(num/(pqC2-pqC3*e), 1/pqM1)
	return y * MaxNits
}

// Clamp01 limits v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
