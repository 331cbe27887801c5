package transfer

import "math"

// BT.2100 HLG constants.
const (
	hlgA = 0.17883277
	hlgB = 0.28466892
	hlgC = 0.55991073
)

// HLGSignalToRelative applies the HLG inverse OETF to a normalized signal.
// The result is scene-linear light where 1.0 is the nominal peak.
func HLGSignalToRelative(signal float64) float64 {
	x := Clamp01(signal)
	if x <= 0.5 {
		return x * x / 3
	}
	return (math.Exp((x-hlgC)/hlgA) + hlgB) / 12
}

// HLGSignalToNits scales the relative HLG light level by the display's
// nominal peak, capped at the PQ ceiling.
func HLGSignalToNits(signal, peakNits float64) float64 {
	return math.Min(HLGSignalToRelative(signal)*peakNits, MaxNits)
}
