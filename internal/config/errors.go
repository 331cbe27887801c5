package config

import "errors"

// Sentinel errors for configuration validation.
var (
	// ErrInvalidProfile indicates an unknown optimizer profile name.
	ErrInvalidProfile = errors.New("invalid optimizer profile")

	// ErrInvalidPeakSource indicates an unknown frame or header peak source.
	ErrInvalidPeakSource = errors.New("invalid peak source")

	// ErrInvalidDenoise indicates an unknown denoise mode.
	ErrInvalidDenoise = errors.New("invalid denoise mode")

	// ErrInvalidSmoother indicates an unknown target smoother.
	ErrInvalidSmoother = errors.New("invalid target smoother")

	// ErrInvalidTransfer indicates an unknown transfer function override.
	ErrInvalidTransfer = errors.New("invalid transfer function")

	// ErrInvalidVersion indicates a measurement version other than 5 or 6.
	ErrInvalidVersion = errors.New("unsupported measurement version")

	// ErrInvalidDownscale indicates a downscale factor other than 1, 2 or 4.
	ErrInvalidDownscale = errors.New("downscale factor out of range")

	// ErrInvalidWorkers indicates a worker count below one.
	ErrInvalidWorkers = errors.New("worker count out of range")

	// ErrInvalidSampleRate indicates a frame sample rate below one.
	ErrInvalidSampleRate = errors.New("sample rate out of range")

	// ErrInvalidSceneDetection indicates a negative threshold, scene length
	// or smoothing window.
	ErrInvalidSceneDetection = errors.New("scene detection setting out of range")

	// ErrInvalidSmoothing indicates an EMA weight or alpha outside [0,1] or
	// a negative median window.
	ErrInvalidSmoothing = errors.New("smoothing setting out of range")

	// ErrInvalidHLGPeak indicates a non-positive HLG nominal peak.
	ErrInvalidHLGPeak = errors.New("HLG peak nits must be positive")
)
