package processing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/five82/hdrmeasure/internal/config"
	herrors "github.com/five82/hdrmeasure/internal/errors"
	"github.com/five82/hdrmeasure/internal/logging"
	"github.com/five82/hdrmeasure/internal/measurement"
	"github.com/five82/hdrmeasure/internal/reporter"
	"github.com/five82/hdrmeasure/internal/util"
	"github.com/five82/hdrmeasure/internal/validation"
	"github.com/five82/hdrmeasure/internal/video"
)

// Options controls where a batch reads from and writes to.
type Options struct {
	OutputDir string
	// OutputOverride names the output file; only honored for a single input.
	OutputOverride string
	// Overwrite replaces existing measurement files instead of skipping.
	Overwrite bool
	// Open configures how inputs are opened (container, raw geometry).
	Open video.OpenOptions
}

// AnalyzeResult contains the result of measuring a single input.
type AnalyzeResult struct {
	InputFile        string
	OutputPath       string
	Frames           int
	Scenes           int
	MaxCLL           uint32
	MaxFALL          uint32
	AvgFALL          uint32
	OutputSize       uint64
	Duration         time.Duration
	ValidationPassed bool
	ValidationSteps  []validation.ValidationStep
	Timing           Timing
}

// ProcessFiles measures each input in turn and writes one measurement file
// per input. Per-file failures are reported and skipped; only cancellation
// stops the batch early.
func ProcessFiles(
	ctx context.Context,
	cfg *config.Config,
	inputs []string,
	opts Options,
	rep reporter.Reporter,
) ([]AnalyzeResult, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, herrors.NewConfigError("invalid configuration", err)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if err := util.EnsureDirectory(opts.OutputDir); err != nil {
		return nil, herrors.NewIOError("creating output directory", err)
	}

	sysInfo := util.GetSystemInfo()
	rep.Hardware(reporter.HardwareSummary{
		Hostname: sysInfo.Hostname,
		Cores:    fmt.Sprintf("%d threads, %s/%s", sysInfo.NumCPU, sysInfo.OS, sysInfo.Arch),
		Features: strings.Join(sysInfo.CPUFeatures, " "),
	})

	if len(inputs) > 1 {
		var names []string
		for _, in := range inputs {
			names = append(names, util.GetFilename(in))
		}
		rep.BatchStarted(reporter.BatchStartInfo{
			TotalFiles: len(inputs),
			FileList:   names,
			OutputDir:  opts.OutputDir,
		})
	}

	rep.AnalysisConfig(configSummary(cfg))

	var results []AnalyzeResult
	var cancelled bool
	for idx, input := range inputs {
		if ctx.Err() != nil {
			rep.Warning(fmt.Sprintf("Analysis cancelled: %v", ctx.Err()))
			cancelled = true
			break
		}
		if len(inputs) > 1 {
			rep.FileProgress(reporter.FileProgressContext{CurrentFile: idx + 1, TotalFiles: len(inputs)})
		}

		override := ""
		if len(inputs) == 1 {
			override = opts.OutputOverride
		}
		outputPath := util.ResolveOutputPath(input, opts.OutputDir, override)
		if !opts.Overwrite && util.FileExists(outputPath) {
			rep.Warning(fmt.Sprintf("Output file already exists: %s. Skipping analysis.", outputPath))
			continue
		}

		res, err := ProcessFile(ctx, cfg, input, outputPath, opts.Open, rep)
		if err != nil {
			if herrors.IsCancelled(err) {
				rep.Warning("Analysis cancelled")
				cancelled = true
				break
			}
			rep.Error(reporterError(input, err))
			logging.Error("analysis failed", "input", input, "error", err)
			continue
		}
		results = append(results, *res)
	}

	summarize(rep, results, len(inputs))
	if cancelled {
		return results, herrors.NewCancelledError()
	}
	return results, nil
}

// ProcessFile measures one input and writes its measurement file to
// outputPath. The configuration must already be validated.
func ProcessFile(ctx context.Context, cfg *config.Config, input, outputPath string, open video.OpenOptions, rep reporter.Reporter) (*AnalyzeResult, error) {
	started := time.Now()
	name := util.GetFilename(input)
	if input == "-" {
		name = "stdin"
	}

	src, err := video.Open(input, open)
	if err != nil {
		return nil, herrors.NewDecodeError(fmt.Sprintf("opening %s", name), err)
	}
	defer src.Close()

	info := src.Info()
	frames := "unknown"
	if info.TotalFrames > 0 {
		frames = fmt.Sprintf("%d", info.TotalFrames)
	}
	frameRate := "unknown"
	if info.FrameRate > 0 {
		frameRate = fmt.Sprintf("%.3f fps", info.FrameRate)
	}
	rep.Initialization(reporter.InitializationSummary{
		InputFile:  name,
		OutputFile: util.GetFilename(outputPath),
		Resolution: fmt.Sprintf("%dx%d", info.Width, info.Height),
		Frames:     frames,
		FrameRate:  frameRate,
		Transfer:   info.Transfer.String(),
	})
	logging.Info("analysis starting", "input", input, "output", outputPath,
		"width", info.Width, "height", info.Height, "transfer", info.Transfer.String())

	m, err := Measure(ctx, src, cfg, rep)
	if err != nil {
		return nil, err
	}

	rep.CropResult(reporter.CropSummary{
		Message:  m.Crop.Message,
		Crop:     m.Crop.Rect.String(),
		Required: m.Crop.Required,
		Disabled: !cfg.Crop,
	})

	if err := measurement.WriteFile(outputPath, m.File); err != nil {
		return nil, herrors.NewIOError(fmt.Sprintf("writing %s", outputPath), err)
	}
	outputSize, _ := util.GetFileSize(outputPath)

	steps := m.Validation.GetValidationSteps()
	passed := m.Validation.IsValid()
	var repSteps []reporter.ValidationStep
	for _, s := range steps {
		repSteps = append(repSteps, reporter.ValidationStep{Name: s.Name, Passed: s.Passed, Details: s.Details})
	}
	rep.ValidationComplete(reporter.ValidationSummary{
		Passed:   passed,
		Steps:    repSteps,
		Warnings: m.Validation.Warnings,
	})

	elapsed := time.Since(started)
	h := m.File.Header
	outcome := reporter.AnalysisOutcome{
		InputFile:  name,
		OutputFile: outputPath,
		Frames:     len(m.File.Frames),
		Scenes:     len(m.File.Scenes),
		MaxCLL:     h.MaxCLL,
		MaxFALL:    h.MaxFALL,
		AvgFALL:    h.AvgFALL,
		OutputSize: outputSize,
		TotalTime:  elapsed,
		AverageFPS: float32(util.FramesPerSecond(len(m.File.Frames), elapsed)),
	}
	if cfg.Performance {
		outcome.Performance = &reporter.PerformanceSummary{
			Decode:   m.Timing.Decode,
			Analysis: m.Timing.Analysis,
			Post:     m.Timing.Post,
		}
	}
	rep.AnalysisComplete(outcome)

	return &AnalyzeResult{
		InputFile:        name,
		OutputPath:       outputPath,
		Frames:           len(m.File.Frames),
		Scenes:           len(m.File.Scenes),
		MaxCLL:           h.MaxCLL,
		MaxFALL:          h.MaxFALL,
		AvgFALL:          h.AvgFALL,
		OutputSize:       outputSize,
		Duration:         elapsed,
		ValidationPassed: passed,
		ValidationSteps:  steps,
		Timing:           m.Timing,
	}, nil
}

func summarize(rep reporter.Reporter, results []AnalyzeResult, totalFiles int) {
	switch len(results) {
	case 0:
		rep.Warning("No files were successfully analyzed")
	case 1:
		r := results[0]
		rep.OperationComplete(fmt.Sprintf("Measured %s: %d frames, %d scenes", r.InputFile, r.Frames, r.Scenes))
	default:
		var totalDuration time.Duration
		var totalFrames, passed int
		var fileResults []reporter.FileResult
		for _, r := range results {
			totalDuration += r.Duration
			totalFrames += r.Frames
			fileResults = append(fileResults, reporter.FileResult{
				Filename: r.InputFile,
				Scenes:   r.Scenes,
				MaxCLL:   r.MaxCLL,
			})
			if r.ValidationPassed {
				passed++
			}
		}
		rep.BatchComplete(reporter.BatchSummary{
			SuccessfulCount:       len(results),
			TotalFiles:            totalFiles,
			TotalFrames:           totalFrames,
			TotalDuration:         totalDuration,
			FileResults:           fileResults,
			ValidationPassedCount: passed,
			ValidationFailedCount: len(results) - passed,
		})
	}
}

func configSummary(cfg *config.Config) reporter.AnalysisConfigSummary {
	s := reporter.AnalysisConfigSummary{
		Profile:          "disabled",
		PeakSource:       string(cfg.ResolvedPeakSource()),
		HeaderPeakSource: string(cfg.ResolvedHeaderPeakSource()),
		SceneDetection: fmt.Sprintf("threshold %.2f, min length %d, smoothing %d",
			cfg.SceneThreshold, cfg.MinSceneLength, cfg.SceneSmoothing),
		HistSmoothing:  "off",
		TargetSmoother: "off",
		Version:        cfg.Version,
		Workers:        cfg.Workers,
		Downscale:      cfg.Downscale,
		SampleRate:     cfg.SampleRate,
	}
	if cfg.Optimizer {
		s.Profile = cfg.OptimizerProfile().Name
		if cfg.TargetSmoother != "" && cfg.TargetSmoother != "off" {
			dir := "forward"
			if cfg.SmootherBidirectional {
				dir = "bidirectional"
			}
			s.TargetSmoother = fmt.Sprintf("%s alpha %.2f, %s", cfg.TargetSmoother, cfg.SmootherAlpha, dir)
		}
	}
	var parts []string
	if cfg.HistEMABeta > 0 {
		parts = append(parts, fmt.Sprintf("EMA beta %.2f", cfg.HistEMABeta))
	}
	if cfg.HistTemporalMedian > 0 {
		parts = append(parts, fmt.Sprintf("median window %d", cfg.HistTemporalMedian))
	}
	if len(parts) > 0 {
		s.HistSmoothing = strings.Join(parts, ", ")
	}
	return s
}

func reporterError(input string, err error) reporter.ReporterError {
	e := reporter.ReporterError{
		Title:   "Analysis Error",
		Message: err.Error(),
		Context: fmt.Sprintf("File: %s", input),
	}
	switch {
	case herrors.IsKind(err, herrors.KindDecode):
		e.Title = "Decode Error"
		e.Suggestion = "Check that the input is yuv420p10le (raw needs --width and --height) or Y4M C420p10"
	case herrors.IsKind(err, herrors.KindIO):
		e.Title = "Write Error"
		e.Suggestion = "Check that the output directory is writable"
	}
	return e
}
