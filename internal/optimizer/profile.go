// Package optimizer derives a per-frame tone-mapping target brightness
// from scene-aware light level heuristics, with flicker control.
package optimizer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProfile indicates an optimizer profile name that is not defined.
var ErrUnknownProfile = errors.New("unknown optimizer profile")

// Clamp is an inclusive (min, max) range in nits.
type Clamp struct {
	Min uint32
	Max uint32
}

// Apply clamps v into the range.
func (c Clamp) Apply(v uint32) uint32 {
	return max(c.Min, min(v, c.Max))
}

// Profile tunes how responsive and bright the optimizer targets are.
type Profile struct {
	Name string

	// MaxDeltaPerFrame bounds the frame-to-frame target change in nits.
	MaxDeltaPerFrame uint16
	// ExtremePeakThreshold caps targets for frames brighter than this.
	ExtremePeakThreshold uint32

	DarkClamp   Clamp
	MediumClamp Clamp
	BrightClamp Clamp

	// Knee multipliers allow targets above the highlight knee.
	DarkKneeMultiplier   float64
	MediumKneeMultiplier float64
	BrightKneeMultiplier float64

	// KneeSmoothingWindow is the number of frames the knee is averaged over.
	KneeSmoothingWindow int
}

// Conservative favors stability over brightness.
func Conservative() Profile {
	return Profile{
		Name:                 "conservative",
		MaxDeltaPerFrame:     100,
		ExtremePeakThreshold: 3500,
		DarkClamp:            Clamp{600, 1500},
		MediumClamp:          Clamp{500, 1200},
		BrightClamp:          Clamp{400, 900},
		DarkKneeMultiplier:   1.1,
		MediumKneeMultiplier: 1.05,
		BrightKneeMultiplier: 1.0,
		KneeSmoothingWindow:  10,
	}
}

// Balanced is the default profile.
func Balanced() Profile {
	return Profile{
		Name:                 "balanced",
		MaxDeltaPerFrame:     200,
		ExtremePeakThreshold: 4000,
		DarkClamp:            Clamp{800, 2000},
		MediumClamp:          Clamp{600, 1500},
		BrightClamp:          Clamp{400, 1000},
		DarkKneeMultiplier:   1.2,
		MediumKneeMultiplier: 1.1,
		BrightKneeMultiplier: 1.0,
		KneeSmoothingWindow:  5,
	}
}

// Aggressive reacts quickly and allows brighter targets.
func Aggressive() Profile {
	return Profile{
		Name:                 "aggressive",
		MaxDeltaPerFrame:     300,
		ExtremePeakThreshold: 4500,
		DarkClamp:            Clamp{1000, 2500},
		MediumClamp:          Clamp{800, 2000},
		BrightClamp:          Clamp{500, 1200},
		DarkKneeMultiplier:   1.3,
		MediumKneeMultiplier: 1.15,
		BrightKneeMultiplier: 1.05,
		KneeSmoothingWindow:  3,
	}
}

// ProfileNames lists the defined profiles from least to most aggressive.
var ProfileNames = []string{"conservative", "balanced", "aggressive"}

// ProfileFromName returns the named profile, ignoring case.
func ProfileFromName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "conservative":
		return Conservative(), nil
	case "balanced":
		return Balanced(), nil
	case "aggressive":
		return Aggressive(), nil
	}
	return Profile{}, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownProfile, name, strings.Join(ProfileNames, ", "))
}
