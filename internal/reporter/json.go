package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONReporter outputs one JSON event per line.
type JSONReporter struct {
	writer             io.Writer
	mu                 sync.Mutex
	lastProgressBucket int
	lastProgressTime   time.Time
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return NewJSONReporterWithWriter(os.Stdout)
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer:             w,
		lastProgressBucket: -1,
	}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v map[string]any) {
	v["timestamp"] = r.timestamp()

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]any{
		"type":     "hardware",
		"hostname": summary.Hostname,
		"cores":    summary.Cores,
		"features": summary.Features,
	})
}

func (r *JSONReporter) Initialization(summary InitializationSummary) {
	r.write(map[string]any{
		"type":        "initialization",
		"input_file":  summary.InputFile,
		"output_file": summary.OutputFile,
		"resolution":  summary.Resolution,
		"frames":      summary.Frames,
		"frame_rate":  summary.FrameRate,
		"transfer":    summary.Transfer,
	})
}

func (r *JSONReporter) StageProgress(update StageProgress) {
	event := map[string]any{
		"type":    "stage_progress",
		"stage":   update.Stage,
		"percent": update.Percent,
		"message": update.Message,
	}
	if update.ETA != nil {
		event["eta_seconds"] = int64(update.ETA.Seconds())
	}
	r.write(event)
}

func (r *JSONReporter) CropResult(summary CropSummary) {
	r.write(map[string]any{
		"type":     "crop_result",
		"message":  summary.Message,
		"crop":     summary.Crop,
		"required": summary.Required,
		"disabled": summary.Disabled,
	})
}

func (r *JSONReporter) AnalysisConfig(summary AnalysisConfigSummary) {
	r.write(map[string]any{
		"type":               "analysis_config",
		"profile":            summary.Profile,
		"peak_source":        summary.PeakSource,
		"header_peak_source": summary.HeaderPeakSource,
		"scene_detection":    summary.SceneDetection,
		"hist_smoothing":     summary.HistSmoothing,
		"target_smoother":    summary.TargetSmoother,
		"version":            summary.Version,
		"workers":            summary.Workers,
		"downscale":          summary.Downscale,
		"sample_rate":        summary.SampleRate,
	})
}

func (r *JSONReporter) AnalysisStarted(totalFrames uint64) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.lastProgressTime = time.Time{}
	r.mu.Unlock()

	r.write(map[string]any{
		"type":         "analysis_started",
		"total_frames": totalFrames,
	})
}

// AnalysisProgress emits at most one event per percent, plus a heartbeat
// every few seconds.
func (r *JSONReporter) AnalysisProgress(progress ProgressSnapshot) {
	const minInterval = 5 * time.Second

	bucket := int(progress.Percent)
	now := time.Now()

	r.mu.Lock()
	intervalElapsed := r.lastProgressTime.IsZero() || now.Sub(r.lastProgressTime) >= minInterval
	shouldEmit := bucket > r.lastProgressBucket || intervalElapsed || progress.Percent >= 99.0

	if !shouldEmit {
		r.mu.Unlock()
		return
	}

	if bucket > r.lastProgressBucket {
		r.lastProgressBucket = bucket
	}
	r.lastProgressTime = now
	r.mu.Unlock()

	r.write(map[string]any{
		"type":            "analysis_progress",
		"stage":           "analysis",
		"current_frame":   progress.CurrentFrame,
		"total_frames":    progress.TotalFrames,
		"percent":         progress.Percent,
		"fps":             progress.FPS,
		"eta_seconds":     int64(progress.ETA.Seconds()),
		"scenes_detected": progress.ScenesDetected,
	})
}

func (r *JSONReporter) ValidationComplete(summary ValidationSummary) {
	steps := make([]map[string]any, len(summary.Steps))
	for i, step := range summary.Steps {
		steps[i] = map[string]any{
			"step":    step.Name,
			"passed":  step.Passed,
			"details": step.Details,
		}
	}

	r.write(map[string]any{
		"type":              "validation_complete",
		"validation_passed": summary.Passed,
		"validation_steps":  steps,
		"warnings":          summary.Warnings,
	})
}

func (r *JSONReporter) AnalysisComplete(summary AnalysisOutcome) {
	event := map[string]any{
		"type":             "analysis_complete",
		"input_file":       summary.InputFile,
		"output_file":      summary.OutputFile,
		"frames":           summary.Frames,
		"scenes":           summary.Scenes,
		"max_cll":          summary.MaxCLL,
		"max_fall":         summary.MaxFALL,
		"avg_fall":         summary.AvgFALL,
		"output_size":      summary.OutputSize,
		"duration_seconds": summary.TotalTime.Seconds(),
		"average_fps":      summary.AverageFPS,
	}
	if p := summary.Performance; p != nil {
		event["decode_seconds"] = p.Decode.Seconds()
		event["analysis_seconds"] = p.Analysis.Seconds()
		event["post_seconds"] = p.Post.Seconds()
	}
	r.write(event)
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]any{
		"type":    "warning",
		"message": message,
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]any{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write(map[string]any{
		"type":    "operation_complete",
		"message": message,
	})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.write(map[string]any{
		"type":        "batch_started",
		"total_files": info.TotalFiles,
		"file_list":   info.FileList,
		"output_dir":  info.OutputDir,
	})
}

func (r *JSONReporter) FileProgress(context FileProgressContext) {
	r.write(map[string]any{
		"type":         "file_progress",
		"current_file": context.CurrentFile,
		"total_files":  context.TotalFiles,
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	results := make([]map[string]any, len(summary.FileResults))
	for i, fr := range summary.FileResults {
		results[i] = map[string]any{
			"filename": fr.Filename,
			"scenes":   fr.Scenes,
			"max_cll":  fr.MaxCLL,
		}
	}

	r.write(map[string]any{
		"type":                    "batch_complete",
		"successful_count":        summary.SuccessfulCount,
		"total_files":             summary.TotalFiles,
		"total_frames":            summary.TotalFrames,
		"total_duration_seconds":  int64(summary.TotalDuration.Seconds()),
		"validation_passed_count": summary.ValidationPassedCount,
		"validation_failed_count": summary.ValidationFailedCount,
		"file_results":            results,
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]any{
		"type":    "verbose",
		"message": message,
	})
}
