package processing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/five82/hdrmeasure/internal/analysis"
	"github.com/five82/hdrmeasure/internal/config"
	herrors "github.com/five82/hdrmeasure/internal/errors"
	"github.com/five82/hdrmeasure/internal/logging"
	"github.com/five82/hdrmeasure/internal/measurement"
	"github.com/five82/hdrmeasure/internal/optimizer"
	"github.com/five82/hdrmeasure/internal/reporter"
	"github.com/five82/hdrmeasure/internal/scene"
	"github.com/five82/hdrmeasure/internal/smoothing"
	"github.com/five82/hdrmeasure/internal/validation"
	"github.com/five82/hdrmeasure/internal/video"
	"github.com/five82/hdrmeasure/internal/worker"
)

// ErrNoFrames indicates a source that ended before its first frame.
var ErrNoFrames = errors.New("source produced no frames")

// progressEvery is the frame interval between progress events.
const progressEvery = 8

// Timing splits the wall time of one measurement between phases.
type Timing struct {
	Decode   time.Duration
	Analysis time.Duration
	Post     time.Duration
}

// Measurement is the result of measuring one source.
type Measurement struct {
	File       *measurement.File
	Validation *validation.Result
	Crop       CropResult
	Transfer   video.TransferFunction

	// Analyzed counts frames that went through the analyzer; the rest
	// reuse the previous record when sampling.
	Analyzed int
	Timing   Timing
}

// Measure runs the full pipeline over src and returns the assembled
// measurement file. Nothing is written to disk.
func Measure(ctx context.Context, src video.Source, cfg *config.Config, rep reporter.Reporter) (*Measurement, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	log := logging.Global().WithPrefix("pipeline")

	info := src.Info()
	tf := info.Transfer
	if cfg.Transfer != "" {
		parsed, err := video.ParseTransfer(cfg.Transfer)
		if err != nil {
			return nil, herrors.NewConfigError("invalid transfer", err)
		}
		if parsed != video.TransferUnknown {
			tf = parsed
		}
	}
	denoise, err := analysis.ParseDenoise(cfg.Denoise)
	if err != nil {
		return nil, herrors.NewConfigError("invalid denoise mode", err)
	}

	pool := worker.NewPool(cfg.Workers)
	analyzer := analysis.New(analysis.Options{
		Transfer:    tf,
		HLGPeakNits: cfg.HLGPeakNits,
		Denoise:     denoise,
	}, pool)
	seg := scene.NewSegmenter(scene.Options{
		Threshold: cfg.SceneThreshold,
		MinLength: cfg.MinSceneLength,
		Smoothing: cfg.SceneSmoothing,
	})

	rate := max(cfg.SampleRate, 1)
	total := uint64(max(info.TotalFrames, 0))
	rep.AnalysisStarted(total)

	out := &Measurement{Transfer: tf}
	var frames []measurement.Frame
	start := time.Now()

	for idx := 0; ; idx++ {
		if err := ctx.Err(); err != nil {
			return nil, herrors.NewCancelledError()
		}

		t0 := time.Now()
		f, err := src.Next(ctx)
		out.Timing.Decode += time.Since(t0)
		if err == io.EOF {
			break
		}
		if err != nil {
			if herrors.IsCancelled(err) {
				return nil, herrors.NewCancelledError()
			}
			return nil, herrors.NewDecodeError(fmt.Sprintf("frame %d", idx), err)
		}

		t1 := time.Now()
		f = video.Downscale(f, cfg.Downscale)
		if idx == 0 {
			out.Crop = DetectCrop(f, !cfg.Crop)
			log.Debug("crop decided", "rect", out.Crop.Rect.String(), "required", out.Crop.Required)
		}

		var rec measurement.Frame
		if idx%rate == 0 || len(frames) == 0 {
			rec, err = analyzer.Analyze(ctx, f, out.Crop.Rect)
			if err != nil {
				if herrors.IsCancelled(err) {
					return nil, herrors.NewCancelledError()
				}
				return nil, herrors.NewAnalysisError(fmt.Sprintf("frame %d", idx), err)
			}
			if _, cut := seg.Push(idx, rec.LumHistogram); cut {
				log.Debug("scene cut", "frame", idx)
			}
			out.Analyzed++
		} else {
			rec = frames[len(frames)-1].Clone()
		}
		frames = append(frames, rec)
		out.Timing.Analysis += time.Since(t1)

		if n := len(frames); n%progressEvery == 0 {
			rep.AnalysisProgress(snapshot(n, total, time.Since(start), len(seg.Cuts())+1))
		}
	}

	if len(frames) == 0 {
		return nil, herrors.NewDecodeError("empty input", ErrNoFrames)
	}
	rep.AnalysisProgress(snapshot(len(frames), uint64(len(frames)), time.Since(start), len(seg.Cuts())+1))

	t2 := time.Now()
	file, err := finalize(seg.Scenes(len(frames)), frames, cfg)
	if err != nil {
		return nil, err
	}
	out.File = file
	out.Validation, err = validation.Validate(file)
	if err != nil {
		return nil, herrors.NewAnalysisError("validating measurement", err)
	}
	out.Timing.Post = time.Since(t2)

	log.Info("measurement complete",
		"frames", len(frames),
		"analyzed", out.Analyzed,
		"scenes", len(file.Scenes),
		"max_cll", file.Header.MaxCLL)
	return out, nil
}

// finalize runs the whole-video passes over the collected frames: scene
// repair, histogram smoothing, scene statistics, the optimizer and the
// header build.
func finalize(scenes []measurement.Scene, frames []measurement.Frame, cfg *config.Config) (*measurement.File, error) {
	scene.Repair(scenes, len(frames))

	smoothing.ApplyScenes(scenes, frames, smoothing.Options{
		EMABeta:      cfg.HistEMABeta,
		MedianWindow: cfg.HistTemporalMedian,
		PeakSource:   cfg.ResolvedPeakSource(),
	})
	scene.ComputeStats(scenes, frames)
	for i, s := range scenes {
		logging.Debug("scene", "index", i, "start", s.Start, "end", s.End,
			"avg_pq", s.AvgPQ, "peak_nits", s.PeakNits)
	}

	if cfg.Optimizer {
		profile := cfg.OptimizerProfile()
		optimizer.Run(scenes, frames, profile)

		mode, err := optimizer.ParseSmoother(cfg.TargetSmoother)
		if err != nil {
			return nil, herrors.NewConfigError("invalid target smoother", err)
		}
		if mode == optimizer.SmootherEMA {
			optimizer.SmoothTargets(scenes, frames, cfg.SmootherAlpha, cfg.SmootherBidirectional, profile.MaxDeltaPerFrame)
		}
	}

	file, err := measurement.Build(scenes, frames, measurement.BuildOptions{
		Version:          cfg.Version,
		Optimizer:        cfg.Optimizer,
		TargetPeakNits:   cfg.TargetPeakNits,
		HeaderPeakSource: cfg.ResolvedHeaderPeakSource(),
	})
	if err != nil {
		return nil, herrors.NewConfigError("building measurement", err)
	}
	return file, nil
}

func snapshot(done int, total uint64, elapsed time.Duration, scenes int) reporter.ProgressSnapshot {
	p := worker.Progress{FramesComplete: done, FramesTotal: int(total), ScenesDetected: scenes}
	snap := reporter.ProgressSnapshot{
		CurrentFrame:   uint64(done),
		TotalFrames:    total,
		Percent:        float32(p.Percent()),
		ScenesDetected: p.ScenesDetected,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		snap.FPS = float32(float64(done) / secs)
		if total > uint64(done) && snap.FPS > 0 {
			snap.ETA = time.Duration(float64(total-uint64(done)) / float64(snap.FPS) * float64(time.Second))
		}
	}
	return snap
}
