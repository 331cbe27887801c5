// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// HardwareSummary contains hardware information.
type HardwareSummary struct {
	Hostname string
	Cores    string
	Features string
}

// InitializationSummary describes the current input before analysis.
type InitializationSummary struct {
	InputFile  string
	OutputFile string
	Resolution string
	Frames     string
	FrameRate  string
	Transfer   string
}

// CropSummary contains crop detection results.
type CropSummary struct {
	Message  string
	Crop     string
	Required bool
	Disabled bool
}

// AnalysisConfigSummary describes the effective analysis settings.
type AnalysisConfigSummary struct {
	Profile          string
	PeakSource       string
	HeaderPeakSource string
	SceneDetection   string
	HistSmoothing    string
	TargetSmoother   string
	Version          uint32
	Workers          int
	Downscale        int
	SampleRate       int
}

// ProgressSnapshot contains analysis progress information.
type ProgressSnapshot struct {
	CurrentFrame   uint64
	TotalFrames    uint64 // 0 when unknown
	Percent        float32
	FPS            float32
	ETA            time.Duration
	ScenesDetected int
}

// ValidationSummary contains validation results.
type ValidationSummary struct {
	Passed   bool
	Steps    []ValidationStep
	Warnings []string
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// PerformanceSummary splits wall time between pipeline phases.
type PerformanceSummary struct {
	Decode   time.Duration
	Analysis time.Duration
	Post     time.Duration
}

// AnalysisOutcome contains final analysis results.
type AnalysisOutcome struct {
	InputFile  string
	OutputFile string
	Frames     int
	Scenes     int
	MaxCLL     uint32
	MaxFALL    uint32
	AvgFALL    uint32
	OutputSize uint64
	TotalTime  time.Duration
	AverageFPS float32

	// Performance is set when phase timing was requested.
	Performance *PerformanceSummary
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	OutputDir  string
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount       int
	TotalFiles            int
	TotalFrames           int
	TotalDuration         time.Duration
	FileResults           []FileResult
	ValidationPassedCount int
	ValidationFailedCount int
}

// FileResult contains per-file analysis result.
type FileResult struct {
	Filename string
	Scenes   int
	MaxCLL   uint32
}

// StageProgress represents a generic stage update.
type StageProgress struct {
	Stage   string
	Percent float32
	Message string
	ETA     *time.Duration
}
