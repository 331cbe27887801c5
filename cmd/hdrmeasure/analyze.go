package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/five82/hdrmeasure/internal/config"
	"github.com/five82/hdrmeasure/internal/discovery"
	herrors "github.com/five82/hdrmeasure/internal/errors"
	"github.com/five82/hdrmeasure/internal/logging"
	"github.com/five82/hdrmeasure/internal/processing"
	"github.com/five82/hdrmeasure/internal/reporter"
	"github.com/five82/hdrmeasure/internal/util"
	"github.com/five82/hdrmeasure/internal/video"
)

// analyzeArgs holds the parsed arguments for the analyze command.
type analyzeArgs struct {
	output     string
	configPath string
	logDir     string
	verbose    bool
	noLog      bool
	json       bool
	force      bool

	// Raw input geometry
	format string
	width  int
	height int

	// Analysis settings, applied only when the flag is given
	cfg           config.Config
	noCrop        bool
	noOptimizer   bool
	formatVersion uint32
}

func newAnalyzeCmd() *cobra.Command {
	return bindAnalyzeCmd(&analyzeArgs{})
}

// bindAnalyzeCmd builds the analyze command with its flags bound to aa.
func bindAnalyzeCmd(aa *analyzeArgs) *cobra.Command {
	defaults := config.NewConfig()

	cmd := &cobra.Command{
		Use:   "analyze [flags] INPUT...",
		Short: "Measure video files and write measurement files",
		Long: `Measure one or more yuv420p10le inputs (Y4M or raw) and write a
<stem>_measurements.bin file for each. Directories are scanned for
.y4m/.yuv/.raw files; "-" reads a single stream from standard input.

Settings are taken from the defaults, then the YAML file given by --config,
then HDRMEASURE_* environment variables, then flags.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, aa)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&aa.output, "output", "o", ".", "Output directory, or .bin filename for a single input")
	f.StringVarP(&aa.configPath, "config", "c", "", "YAML configuration file")
	f.StringVarP(&aa.logDir, "log-dir", "l", "", "Log directory (defaults to OUTPUT/logs)")
	f.BoolVarP(&aa.verbose, "verbose", "v", false, "Enable verbose output")
	f.BoolVar(&aa.noLog, "no-log", false, "Disable log file creation")
	f.BoolVar(&aa.json, "json", false, "Emit NDJSON progress events instead of terminal output")
	f.BoolVar(&aa.force, "force", false, "Overwrite existing measurement files")

	f.StringVar(&aa.format, "format", "", "Input container: y4m or raw (default from extension)")
	f.IntVar(&aa.width, "width", 0, "Frame width of raw input")
	f.IntVar(&aa.height, "height", 0, "Frame height of raw input")

	c := &aa.cfg
	f.Float64Var(&c.SceneThreshold, "scene-threshold", defaults.SceneThreshold, "Scene cut distance threshold")
	f.IntVar(&c.MinSceneLength, "min-scene-length", defaults.MinSceneLength, "Minimum scene length in frames")
	f.IntVar(&c.SceneSmoothing, "scene-smoothing", defaults.SceneSmoothing, "Scene distance averaging window (0 disables)")
	f.BoolVar(&aa.noCrop, "no-crop", false, "Disable black bar detection")
	f.StringVar(&c.Denoise, "denoise", defaults.Denoise, "Luma pre-filter: off or median3")
	f.StringVar(&c.Transfer, "transfer", "", "Override the transfer function: pq or hlg")
	f.Float64Var(&c.HLGPeakNits, "hlg-peak-nits", defaults.HLGPeakNits, "Nominal display peak for HLG input")
	f.IntVar(&c.Downscale, "downscale", defaults.Downscale, "Analyze at 1/N resolution (1, 2 or 4)")
	f.IntVar(&c.SampleRate, "sample-rate", defaults.SampleRate, "Analyze every Nth frame")
	f.IntVar(&c.Workers, "workers", defaults.Workers, "Goroutines per frame")
	f.Float64Var(&c.HistEMABeta, "hist-ema-beta", defaults.HistEMABeta, "Per-scene histogram EMA weight (0 disables)")
	f.IntVar(&c.HistTemporalMedian, "hist-temporal-median", defaults.HistTemporalMedian, "Histogram temporal median window (0 disables)")
	f.BoolVar(&aa.noOptimizer, "no-optimizer", false, "Do not write per-frame target nits")
	f.StringVar(&c.Profile, "profile", defaults.Profile, "Optimizer profile: conservative, balanced or aggressive")
	f.StringVar(&c.PeakSource, "peak-source", "", "Frame peak source: max, histogram99 or histogram999 (default by profile)")
	f.StringVar(&c.HeaderPeakSource, "header-peak-source", defaults.HeaderPeakSource, "MaxCLL source: max, histogram99 or histogram999")
	f.StringVar(&c.TargetSmoother, "target-smoother", defaults.TargetSmoother, "Target post-smoother: off or ema")
	f.Float64Var(&c.SmootherAlpha, "smoother-alpha", defaults.SmootherAlpha, "Target smoother EMA weight")
	f.BoolVar(&c.SmootherBidirectional, "smoother-bidirectional", false, "Average forward and backward target EMA")
	f.Uint32Var(&aa.formatVersion, "format-version", defaults.Version, "Measurement format version: 5 or 6")
	f.Uint32Var(&c.TargetPeakNits, "target-peak-nits", 0, "Version 6 header target (0 uses MaxCLL)")
	f.BoolVar(&c.Performance, "performance", false, "Report decode and analysis timing")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, aa *analyzeArgs) error {
	cfg, err := buildConfig(cmd.Flags(), aa)
	if err != nil {
		return err
	}

	found, err := discovery.ExpandInputs(args)
	if err != nil {
		return err
	}

	outputDir, override, err := resolveOutput(aa.output, len(found.Files))
	if err != nil {
		return err
	}
	if err := util.EnsureDirectory(outputDir); err != nil {
		return herrors.NewIOError("creating output directory", err)
	}

	logDir := aa.logDir
	if logDir == "" {
		logDir = filepath.Join(outputDir, "logs")
	}
	logger, err := logging.Setup(logDir, aa.verbose, aa.noLog)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer func() { _ = logger.Close() }()
	logging.SetGlobal(logger)

	logging.Info("configuration",
		"output_dir", outputDir,
		"profile", cfg.Profile,
		"optimizer", cfg.Optimizer,
		"version", cfg.Version,
		"workers", cfg.Workers,
		"crop", cfg.Crop)

	var rep reporter.Reporter
	if aa.json {
		rep = reporter.NewJSONReporter()
	} else {
		rep = reporter.NewTerminalReporter(aa.verbose)
	}
	if path := logger.FilePath(); path != "" {
		rep.Verbose(fmt.Sprintf("Logging to %s", path))
	}

	format, err := parseFormat(aa.format)
	if err != nil {
		return err
	}
	results, err := processing.ProcessFiles(cmd.Context(), cfg, found.Files, processing.Options{
		OutputDir:      outputDir,
		OutputOverride: override,
		Overwrite:      aa.force,
		Open: video.OpenOptions{
			Format: format,
			Width:  aa.width,
			Height: aa.height,
		},
	}, rep)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no measurement files were written")
	}
	return nil
}

// buildConfig layers the YAML file, environment and explicitly set flags
// over the defaults.
func buildConfig(flags *pflag.FlagSet, aa *analyzeArgs) (*config.Config, error) {
	cfg := config.NewConfig()
	if aa.configPath != "" {
		loaded, err := config.Load(aa.configPath)
		if err != nil {
			return nil, herrors.NewConfigError(fmt.Sprintf("loading %s", aa.configPath), err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, herrors.NewConfigError("reading environment", err)
	}

	c := &aa.cfg
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("scene-threshold", func() { cfg.SceneThreshold = c.SceneThreshold })
	set("min-scene-length", func() { cfg.MinSceneLength = c.MinSceneLength })
	set("scene-smoothing", func() { cfg.SceneSmoothing = c.SceneSmoothing })
	set("no-crop", func() { cfg.Crop = !aa.noCrop })
	set("denoise", func() { cfg.Denoise = c.Denoise })
	set("transfer", func() { cfg.Transfer = c.Transfer })
	set("hlg-peak-nits", func() { cfg.HLGPeakNits = c.HLGPeakNits })
	set("downscale", func() { cfg.Downscale = c.Downscale })
	set("sample-rate", func() { cfg.SampleRate = c.SampleRate })
	set("workers", func() { cfg.Workers = c.Workers })
	set("hist-ema-beta", func() { cfg.HistEMABeta = c.HistEMABeta })
	set("hist-temporal-median", func() { cfg.HistTemporalMedian = c.HistTemporalMedian })
	set("no-optimizer", func() { cfg.Optimizer = !aa.noOptimizer })
	set("profile", func() { cfg.Profile = c.Profile })
	set("peak-source", func() { cfg.PeakSource = c.PeakSource })
	set("header-peak-source", func() { cfg.HeaderPeakSource = c.HeaderPeakSource })
	set("target-smoother", func() { cfg.TargetSmoother = c.TargetSmoother })
	set("smoother-alpha", func() { cfg.SmootherAlpha = c.SmootherAlpha })
	set("smoother-bidirectional", func() { cfg.SmootherBidirectional = c.SmootherBidirectional })
	set("format-version", func() { cfg.Version = aa.formatVersion })
	set("target-peak-nits", func() { cfg.TargetPeakNits = c.TargetPeakNits })
	set("performance", func() { cfg.Performance = c.Performance })

	if err := cfg.Validate(); err != nil {
		return nil, herrors.NewConfigError("invalid configuration", err)
	}
	return cfg, nil
}

// resolveOutput splits -o into a directory and an optional filename. A
// path ending in .bin names the file and is only valid for one input.
func resolveOutput(output string, inputs int) (dir, override string, err error) {
	abs, err := filepath.Abs(output)
	if err != nil {
		return "", "", herrors.NewPathError(fmt.Sprintf("invalid output path: %s", output))
	}
	if !strings.EqualFold(filepath.Ext(abs), util.MeasurementExt) {
		return abs, "", nil
	}
	if inputs > 1 {
		return "", "", herrors.NewPathError("an output filename needs exactly one input")
	}
	return filepath.Dir(abs), abs, nil
}

func parseFormat(s string) (video.Format, error) {
	switch video.Format(strings.ToLower(s)) {
	case video.FormatAuto:
		return video.FormatAuto, nil
	case video.FormatRaw:
		return video.FormatRaw, nil
	case video.FormatY4M:
		return video.FormatY4M, nil
	}
	return "", herrors.NewConfigError(fmt.Sprintf("unknown input format %q (want y4m or raw)", s), nil)
}
