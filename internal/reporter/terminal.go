package reporter

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/hdrmeasure/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	progress   *progressbar.ProgressBar
	unbounded  bool
	maxPercent float32
	lastStage  string
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
	faint      *color.Color
	verbose    bool
}

// NewTerminalReporter creates a new terminal reporter. Verbose messages are
// printed only when verbose is set.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	return &TerminalReporter{
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
		faint:   color.New(color.Faint),
		verbose: verbose,
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("HARDWARE")
	r.printLabel(10, "Hostname:", summary.Hostname)
	r.printLabel(10, "CPU:", summary.Cores)
	if summary.Features != "" {
		r.printLabel(10, "Features:", summary.Features)
	}
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Initialization(summary InitializationSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("VIDEO")
	r.printLabel(11, "File:", summary.InputFile)
	r.printLabel(11, "Output:", summary.OutputFile)
	r.printLabel(11, "Resolution:", summary.Resolution)
	r.printLabel(11, "Frames:", summary.Frames)
	r.printLabel(11, "Frame rate:", summary.FrameRate)
	r.printLabel(11, "Transfer:", summary.Transfer)
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	if r.lastStage != update.Stage {
		r.mu.Unlock()
		fmt.Println()
		_, _ = r.cyan.Println(strings.ToUpper(update.Stage))
		r.mu.Lock()
		r.lastStage = update.Stage
	}
	r.mu.Unlock()
	fmt.Printf("  %s %s\n", r.magenta.Sprint("›"), update.Message)
}

func (r *TerminalReporter) CropResult(summary CropSummary) {
	var status string
	switch {
	case summary.Disabled:
		status = r.faint.Sprint("auto-crop disabled")
	case summary.Required:
		status = r.green.Sprint(summary.Crop)
	default:
		status = r.faint.Sprint("no crop needed")
	}
	fmt.Printf("  %s %s (%s)\n", r.bold.Sprint("Crop detection:"), summary.Message, status)
}

func (r *TerminalReporter) AnalysisConfig(summary AnalysisConfigSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("ANALYSIS")
	const w = 16
	r.printLabel(w, "Profile:", summary.Profile)
	r.printLabel(w, "Peak source:", summary.PeakSource)
	r.printLabel(w, "Header peak:", summary.HeaderPeakSource)
	r.printLabel(w, "Scene detection:", summary.SceneDetection)
	r.printLabel(w, "Histograms:", summary.HistSmoothing)
	r.printLabel(w, "Target smoother:", summary.TargetSmoother)
	r.printLabel(w, "Format:", fmt.Sprintf("v%d", summary.Version))
	r.printLabel(w, "Workers:", fmt.Sprintf("%d (downscale %dx, every %d frame(s))",
		summary.Workers, summary.Downscale, summary.SampleRate))
}

// AnalysisStarted opens a percentage bar, or a spinner when the frame count
// is unknown.
func (r *TerminalReporter) AnalysisStarted(totalFrames uint64) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	total := int64(100)
	r.unbounded = totalFrames == 0
	if r.unbounded {
		total = -1
	}

	r.progress = progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Analyzing [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) AnalysisProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	if r.unbounded {
		_ = r.progress.Set64(int64(progress.CurrentFrame))
		r.progress.Describe(fmt.Sprintf("frame %d, %.1f fps, %d scenes",
			progress.CurrentFrame, progress.FPS, progress.ScenesDetected))
		return
	}

	clamped := min(max(progress.Percent, 0), 100)
	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	r.progress.Describe(fmt.Sprintf("%.1f fps, %d scenes, eta %s",
		progress.FPS, progress.ScenesDetected, util.FormatDurationFromSecs(int64(progress.ETA.Seconds()))))
}

func (r *TerminalReporter) ValidationComplete(summary ValidationSummary) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("VALIDATION")

	if summary.Passed {
		fmt.Printf("  %s\n", r.green.Add(color.Bold).Sprint("All checks passed"))
	} else {
		fmt.Printf("  %s\n", r.yellow.Sprint("Checks raised warnings"))
	}

	maxLen := 0
	for _, step := range summary.Steps {
		maxLen = max(maxLen, len(step.Name))
	}

	for _, step := range summary.Steps {
		status := r.green.Sprint("✓")
		if !step.Passed {
			status = r.yellow.Sprint("!")
		}
		paddedName := fmt.Sprintf("%-*s", maxLen, step.Name)
		fmt.Printf("  - %s: %s (%s)\n", paddedName, status, step.Details)
	}
	for _, w := range summary.Warnings {
		fmt.Printf("    %s\n", r.faint.Sprint(w))
	}
}

func (r *TerminalReporter) AnalysisComplete(summary AnalysisOutcome) {
	r.finishProgress()

	fmt.Println()
	_, _ = r.cyan.Println("RESULTS")
	const w = 9
	r.printLabel(w, "Output:", r.bold.Sprint(summary.OutputFile))
	r.printLabel(w, "Frames:", fmt.Sprintf("%d in %d scenes", summary.Frames, summary.Scenes))
	r.printLabel(w, "MaxCLL:", util.FormatNits(float64(summary.MaxCLL)))
	r.printLabel(w, "MaxFALL:", util.FormatNits(float64(summary.MaxFALL)))
	r.printLabel(w, "AvgFALL:", util.FormatNits(float64(summary.AvgFALL)))
	r.printLabel(w, "Size:", util.FormatBytes(summary.OutputSize))
	r.printLabel(w, "Time:", fmt.Sprintf("%s (%.1f fps)",
		util.FormatDurationFromSecs(int64(summary.TotalTime.Seconds())), summary.AverageFPS))

	if p := summary.Performance; p != nil {
		r.printLabel(w, "Decode:", p.Decode.Round(time.Millisecond).String())
		r.printLabel(w, "Analysis:", p.Analysis.Round(time.Millisecond).String())
		r.printLabel(w, "Post:", p.Post.Round(time.Millisecond).String())
	}
	fmt.Printf("  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputFile))
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	fmt.Println()
	fmt.Printf("%s %s\n", r.green.Add(color.Bold).Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	fmt.Println()
	_, _ = r.cyan.Println("BATCH")
	fmt.Printf("  Analyzing %d files -> %s\n", info.TotalFiles, r.bold.Sprint(info.OutputDir))
	for i, name := range info.FileList {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	fmt.Printf("\nFile %s of %d\n",
		r.bold.Sprint(context.CurrentFile),
		context.TotalFiles)
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("BATCH SUMMARY")
	fmt.Printf("  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	fmt.Printf("  Validation: %s passed, %s with warnings\n",
		r.green.Sprint(summary.ValidationPassedCount),
		r.yellow.Sprint(summary.ValidationFailedCount))
	fmt.Printf("  Frames: %d in %s\n", summary.TotalFrames,
		util.FormatDurationFromSecs(int64(summary.TotalDuration.Seconds())))

	for _, result := range summary.FileResults {
		fmt.Printf("  - %s (%d scenes, MaxCLL %d)\n", result.Filename, result.Scenes, result.MaxCLL)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	fmt.Printf("  %s\n", r.faint.Sprint(message))
}
