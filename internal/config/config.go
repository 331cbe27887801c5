// Package config provides configuration types and defaults for hdrmeasure.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/five82/hdrmeasure/internal/analysis"
	"github.com/five82/hdrmeasure/internal/histogram"
	"github.com/five82/hdrmeasure/internal/measurement"
	"github.com/five82/hdrmeasure/internal/optimizer"
	"github.com/five82/hdrmeasure/internal/scene"
	"github.com/five82/hdrmeasure/internal/smoothing"
	"github.com/five82/hdrmeasure/internal/video"
)

// Default constants
const (
	// DefaultProfile is the optimizer profile used when none is given.
	DefaultProfile = "balanced"

	// DefaultHeaderPeakSource derives MaxCLL from the direct frame maxima.
	DefaultHeaderPeakSource = string(histogram.PeakMax)

	// DefaultVersion is the measurement format written by default.
	DefaultVersion = measurement.Version5

	// DefaultDownscale analyzes frames at full resolution.
	DefaultDownscale = 1

	// DefaultSampleRate analyzes every frame.
	DefaultSampleRate = 1

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "HDRMEASURE"
)

// Config holds all configuration for a measurement run. Environment
// overrides use the snake-cased field name with the HDRMEASURE_ prefix,
// e.g. HDRMEASURE_MIN_SCENE_LENGTH.
type Config struct {
	// Scene detection
	SceneThreshold float64 `yaml:"scene_threshold" split_words:"true"`
	MinSceneLength int     `yaml:"min_scene_length" split_words:"true"`
	SceneSmoothing int     `yaml:"scene_smoothing" split_words:"true"`

	// Frame analysis
	Crop        bool    `yaml:"crop" split_words:"true"`
	Denoise     string  `yaml:"denoise" split_words:"true"`
	Transfer    string  `yaml:"transfer" split_words:"true"` // empty uses the stream's own
	HLGPeakNits float64 `yaml:"hlg_peak_nits" split_words:"true"`
	Downscale   int     `yaml:"downscale" split_words:"true"`
	SampleRate  int     `yaml:"sample_rate" split_words:"true"`
	Workers     int     `yaml:"workers" split_words:"true"`

	// Histogram smoothing
	HistEMABeta        float64 `yaml:"hist_ema_beta" split_words:"true"`
	HistTemporalMedian int     `yaml:"hist_temporal_median" split_words:"true"`

	// Optimizer
	Optimizer        bool   `yaml:"optimizer" split_words:"true"`
	Profile          string `yaml:"profile" split_words:"true"`
	PeakSource       string `yaml:"peak_source" split_words:"true"` // empty picks by profile
	HeaderPeakSource string `yaml:"header_peak_source" split_words:"true"`

	// Target smoother
	TargetSmoother        string  `yaml:"target_smoother" split_words:"true"`
	SmootherAlpha         float64 `yaml:"smoother_alpha" split_words:"true"`
	SmootherBidirectional bool    `yaml:"smoother_bidirectional" split_words:"true"`

	// Output
	Version        uint32 `yaml:"version" split_words:"true"`
	TargetPeakNits uint32 `yaml:"target_peak_nits" split_words:"true"` // 0 uses MaxCLL
	Performance    bool   `yaml:"performance" split_words:"true"`
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		SceneThreshold:     scene.DefaultThreshold,
		MinSceneLength:     scene.DefaultMinLength,
		SceneSmoothing:     scene.DefaultSmoothing,
		Crop:               true,
		Denoise:            string(analysis.DenoiseOff),
		HLGPeakNits:        analysis.DefaultHLGPeakNits,
		Downscale:          DefaultDownscale,
		SampleRate:         DefaultSampleRate,
		Workers:            runtime.NumCPU(),
		HistEMABeta:        smoothing.DefaultEMABeta,
		HistTemporalMedian: 0,
		Optimizer:          true,
		Profile:            DefaultProfile,
		HeaderPeakSource:   DefaultHeaderPeakSource,
		TargetSmoother:     string(optimizer.SmootherOff),
		SmootherAlpha:      optimizer.DefaultSmootherAlpha,
		Version:            DefaultVersion,
	}
}

// Load reads config from a YAML file over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from HDRMEASURE_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("failed to apply environment: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := optimizer.ProfileFromName(c.Profile); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidProfile, c.Profile)
	}
	if _, err := histogram.ParsePeakSource(c.PeakSource); err != nil {
		return fmt.Errorf("%w: peak_source %q", ErrInvalidPeakSource, c.PeakSource)
	}
	if _, err := histogram.ParsePeakSource(c.HeaderPeakSource); err != nil {
		return fmt.Errorf("%w: header_peak_source %q", ErrInvalidPeakSource, c.HeaderPeakSource)
	}
	if _, err := analysis.ParseDenoise(c.Denoise); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDenoise, c.Denoise)
	}
	if _, err := optimizer.ParseSmoother(c.TargetSmoother); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidSmoother, c.TargetSmoother)
	}
	if _, err := video.ParseTransfer(c.Transfer); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTransfer, c.Transfer)
	}

	if c.Version != measurement.Version5 && c.Version != measurement.Version6 {
		return fmt.Errorf("%w: must be 5 or 6, got %d", ErrInvalidVersion, c.Version)
	}
	switch c.Downscale {
	case 1, 2, 4:
	default:
		return fmt.Errorf("%w: must be 1, 2 or 4, got %d", ErrInvalidDownscale, c.Downscale)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidWorkers, c.Workers)
	}
	if c.SampleRate < 1 {
		return fmt.Errorf("%w: must be at least 1, got %d", ErrInvalidSampleRate, c.SampleRate)
	}

	if c.SceneThreshold < 0 || c.MinSceneLength < 0 || c.SceneSmoothing < 0 {
		return fmt.Errorf("%w: threshold=%v min_length=%d smoothing=%d",
			ErrInvalidSceneDetection, c.SceneThreshold, c.MinSceneLength, c.SceneSmoothing)
	}
	if c.HistEMABeta < 0 || c.HistEMABeta > 1 {
		return fmt.Errorf("%w: hist_ema_beta must be 0-1, got %v", ErrInvalidSmoothing, c.HistEMABeta)
	}
	if c.HistTemporalMedian < 0 {
		return fmt.Errorf("%w: hist_temporal_median must not be negative, got %d", ErrInvalidSmoothing, c.HistTemporalMedian)
	}
	if c.SmootherAlpha < 0 || c.SmootherAlpha > 1 {
		return fmt.Errorf("%w: smoother_alpha must be 0-1, got %v", ErrInvalidSmoothing, c.SmootherAlpha)
	}
	if c.HLGPeakNits <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidHLGPeak, c.HLGPeakNits)
	}

	return nil
}

// OptimizerProfile returns the configured profile. Call Validate first.
func (c *Config) OptimizerProfile() optimizer.Profile {
	p, err := optimizer.ProfileFromName(c.Profile)
	if err != nil {
		return optimizer.Balanced()
	}
	return p
}

// ResolvedPeakSource returns the frame peak source, defaulting to the
// direct maximum for the conservative profile and the 99th percentile
// otherwise.
func (c *Config) ResolvedPeakSource() histogram.PeakSource {
	p, _ := histogram.ParsePeakSource(c.PeakSource)
	if p != "" {
		return p
	}
	if c.OptimizerProfile().Name == "conservative" {
		return histogram.PeakMax
	}
	return histogram.PeakP99
}

// ResolvedHeaderPeakSource returns the MaxCLL policy, defaulting to max.
func (c *Config) ResolvedHeaderPeakSource() histogram.PeakSource {
	p, _ := histogram.ParsePeakSource(c.HeaderPeakSource)
	if p == "" {
		return histogram.PeakMax
	}
	return p
}
