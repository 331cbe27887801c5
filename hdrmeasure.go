// Package hdrmeasure provides a Go library for measuring HDR video and
// writing madVR-compatible measurement files.
//
// An Analyzer decodes 10-bit frames, detects black bars and scene cuts,
// builds per-frame luminance and hue histograms and, optionally, derives a
// per-frame tone-mapping target brightness.
//
// Basic usage:
//
//	analyzer, err := hdrmeasure.New(
//	    hdrmeasure.WithProfile("balanced"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := analyzer.Analyze(ctx, "movie.y4m", "out/", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("%s: %d scenes, MaxCLL %d\n",
//	    result.OutputFile, result.Scenes, result.MaxCLL)
package hdrmeasure

import (
	"context"

	"github.com/five82/hdrmeasure/internal/config"
	herrors "github.com/five82/hdrmeasure/internal/errors"
	"github.com/five82/hdrmeasure/internal/measurement"
	"github.com/five82/hdrmeasure/internal/processing"
	"github.com/five82/hdrmeasure/internal/reporter"
	"github.com/five82/hdrmeasure/internal/util"
	"github.com/five82/hdrmeasure/internal/validation"
	"github.com/five82/hdrmeasure/internal/video"
)

// Re-exported types
type (
	Config           = config.Config
	Reporter         = reporter.Reporter
	File             = measurement.File
	Header           = measurement.Header
	Frame            = measurement.Frame
	Scene            = measurement.Scene
	Comparison       = measurement.Comparison
	ValidationResult = validation.Result
	Stats            = validation.Stats
	Source           = video.Source
	VideoFrame       = video.Frame
	OpenOptions      = video.OpenOptions
)

// Measurement format versions.
const (
	Version5 = measurement.Version5
	Version6 = measurement.Version6
)

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return config.NewConfig()
}

// Analyzer is the main entry point for measuring video.
type Analyzer struct {
	config *config.Config
	open   video.OpenOptions
}

// Result contains the result of measuring a single input.
type Result struct {
	OutputFile       string
	Frames           int
	Scenes           int
	MaxCLL           uint32
	MaxFALL          uint32
	AvgFALL          uint32
	ValidationPassed bool
	FramesPerSecond  float64
}

// BatchResult contains the result of a batch run.
type BatchResult struct {
	Results               []Result
	SuccessfulCount       int
	TotalFiles            int
	ValidationPassedCount int
}

// Option configures the analyzer.
type Option func(*Analyzer)

// New creates a new Analyzer with the given options.
func New(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{config: config.NewConfig()}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.config.Validate(); err != nil {
		return nil, herrors.NewConfigError("invalid configuration", err)
	}
	return a, nil
}

// WithConfig replaces the whole configuration. Later options still apply.
func WithConfig(c *Config) Option {
	return func(a *Analyzer) {
		cp := *c
		a.config = &cp
	}
}

// WithProfile selects the optimizer profile (conservative, balanced, aggressive).
func WithProfile(name string) Option {
	return func(a *Analyzer) {
		a.config.Profile = name
	}
}

// WithoutOptimizer writes measurements without per-frame targets.
func WithoutOptimizer() Option {
	return func(a *Analyzer) {
		a.config.Optimizer = false
	}
}

// WithPeakSource sets how frame peaks are taken: max, histogram99 or histogram999.
func WithPeakSource(source string) Option {
	return func(a *Analyzer) {
		a.config.PeakSource = source
	}
}

// WithHeaderPeakSource sets how MaxCLL is derived from frame peaks.
func WithHeaderPeakSource(source string) Option {
	return func(a *Analyzer) {
		a.config.HeaderPeakSource = source
	}
}

// WithVersion selects the measurement format version (5 or 6).
func WithVersion(v uint32) Option {
	return func(a *Analyzer) {
		a.config.Version = v
	}
}

// WithTargetPeakNits overrides the version 6 header target.
func WithTargetPeakNits(nits uint32) Option {
	return func(a *Analyzer) {
		a.config.TargetPeakNits = nits
	}
}

// WithDisableCrop analyzes the full frame.
func WithDisableCrop() Option {
	return func(a *Analyzer) {
		a.config.Crop = false
	}
}

// WithDenoise selects the luma pre-filter (off, median3).
func WithDenoise(mode string) Option {
	return func(a *Analyzer) {
		a.config.Denoise = mode
	}
}

// WithSceneDetection tunes scene cut detection.
func WithSceneDetection(threshold float64, minLength, smoothing int) Option {
	return func(a *Analyzer) {
		a.config.SceneThreshold = threshold
		a.config.MinSceneLength = minLength
		a.config.SceneSmoothing = smoothing
	}
}

// WithHistogramSmoothing sets the per-scene histogram EMA beta and
// temporal median window. Zero disables either filter.
func WithHistogramSmoothing(beta float64, medianWindow int) Option {
	return func(a *Analyzer) {
		a.config.HistEMABeta = beta
		a.config.HistTemporalMedian = medianWindow
	}
}

// WithTargetSmoothing enables the EMA post-pass over optimizer targets.
func WithTargetSmoothing(alpha float64, bidirectional bool) Option {
	return func(a *Analyzer) {
		a.config.TargetSmoother = "ema"
		a.config.SmootherAlpha = alpha
		a.config.SmootherBidirectional = bidirectional
	}
}

// WithWorkers sets the number of goroutines used per frame.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.config.Workers = n
	}
}

// WithSampleRate analyzes every nth frame and repeats the last record for
// the others.
func WithSampleRate(n int) Option {
	return func(a *Analyzer) {
		a.config.SampleRate = n
	}
}

// WithDownscale analyzes frames at 1/factor resolution (1, 2 or 4).
func WithDownscale(factor int) Option {
	return func(a *Analyzer) {
		a.config.Downscale = factor
	}
}

// WithRawGeometry sets the frame size of headerless yuv420p10le inputs.
func WithRawGeometry(width, height int) Option {
	return func(a *Analyzer) {
		a.open.Width = width
		a.open.Height = height
	}
}

// Config returns a copy of the effective configuration.
func (a *Analyzer) Config() Config {
	return *a.config
}

// Analyze measures a single input and writes
// <outputDir>/<stem>_measurements.bin, replacing any existing file.
func (a *Analyzer) Analyze(ctx context.Context, input, outputDir string, rep Reporter) (*Result, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	if outputDir == "" {
		outputDir = "."
	}
	if err := util.EnsureDirectory(outputDir); err != nil {
		return nil, herrors.NewIOError("creating output directory", err)
	}

	outputPath := util.ResolveOutputPath(input, outputDir, "")
	r, err := processing.ProcessFile(ctx, a.config, input, outputPath, a.open, rep)
	if err != nil {
		return nil, err
	}
	res := toResult(*r)
	return &res, nil
}

// AnalyzeBatch measures every input into outputDir. Inputs that fail are
// reported through rep and left out of the result.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, inputs []string, outputDir string, rep Reporter) (*BatchResult, error) {
	results, err := processing.ProcessFiles(ctx, a.config, inputs, processing.Options{
		OutputDir: outputDir,
		Overwrite: true,
		Open:      a.open,
	}, rep)
	if err != nil && !herrors.IsCancelled(err) {
		return nil, err
	}

	batch := &BatchResult{TotalFiles: len(inputs)}
	for _, r := range results {
		batch.Results = append(batch.Results, toResult(r))
		batch.SuccessfulCount++
		if r.ValidationPassed {
			batch.ValidationPassedCount++
		}
	}
	return batch, err
}

// Measure runs the pipeline over an in-memory frame source and returns the
// measurement without writing it.
func (a *Analyzer) Measure(ctx context.Context, src Source) (*File, error) {
	m, err := processing.Measure(ctx, src, a.config, nil)
	if err != nil {
		return nil, err
	}
	return m.File, nil
}

// Verify reads a measurement file and runs the consistency checks on it.
// An error means the file is structurally unreadable.
func Verify(path string) (*File, *ValidationResult, error) {
	f, res, err := validation.ValidateFile(path)
	if err != nil {
		return nil, nil, herrors.NewFormatError(path, err)
	}
	return f, res, nil
}

// Summarize computes frame statistics for a measurement.
func Summarize(f *File) Stats {
	return validation.Summarize(f)
}

// Compare reports how current differs from baseline.
func Compare(baseline, current *File) Comparison {
	return measurement.Compare(baseline, current)
}

// ReadFile decodes a measurement file from disk.
func ReadFile(path string) (*File, error) {
	return measurement.ReadFile(path)
}

// WriteFile atomically writes a measurement file.
func WriteFile(path string, f *File) error {
	return measurement.WriteFile(path, f)
}

func toResult(r processing.AnalyzeResult) Result {
	return Result{
		OutputFile:       r.OutputPath,
		Frames:           r.Frames,
		Scenes:           r.Scenes,
		MaxCLL:           r.MaxCLL,
		MaxFALL:          r.MaxFALL,
		AvgFALL:          r.AvgFALL,
		ValidationPassed: r.ValidationPassed,
		FramesPerSecond:  util.FramesPerSecond(r.Frames, r.Duration),
	}
}
