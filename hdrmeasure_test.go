package hdrmeasure

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	herrors "github.com/five82/hdrmeasure/internal/errors"
	"github.com/five82/hdrmeasure/internal/measurement"
	"github.com/five82/hdrmeasure/internal/video"
)

func clip(frames int, code uint16) []byte {
	var buf bytes.Buffer
	for i := 0; i < frames; i++ {
		f := video.NewFrame(16, 16)
		f.Fill(code, 512, 512)
		for _, p := range f.Planes {
			buf.Write(p)
		}
	}
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{name: "defaults"},
		{name: "aggressive v6", opts: []Option{WithProfile("aggressive"), WithVersion(Version6)}},
		{name: "target smoothing", opts: []Option{WithTargetSmoothing(0.3, true)}},
		{name: "unknown profile", opts: []Option{WithProfile("loud")}, wantErr: true},
		{name: "bad version", opts: []Option{WithVersion(7)}, wantErr: true},
		{name: "bad downscale", opts: []Option{WithDownscale(3)}, wantErr: true},
		{name: "zero workers", opts: []Option{WithWorkers(0)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !herrors.IsKind(err, herrors.KindConfig) {
				t.Errorf("New() error kind = %v, want config", err)
			}
		})
	}
}

func TestWithConfigCopies(t *testing.T) {
	cfg := NewConfig()
	cfg.Profile = "conservative"
	a, err := New(WithConfig(cfg), WithWorkers(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	cfg.Profile = "aggressive"
	got := a.Config()
	if got.Profile != "conservative" || got.Workers != 1 {
		t.Errorf("Config() = profile %q workers %d, want conservative 1", got.Profile, got.Workers)
	}
}

func TestAnalyzeAndVerify(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "scene.yuv")
	if err := os.WriteFile(input, clip(30, 400), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := New(WithRawGeometry(16, 16), WithWorkers(2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := a.Analyze(context.Background(), input, dir, nil)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.Frames != 30 || res.Scenes != 1 {
		t.Errorf("Analyze() = %d frames %d scenes, want 30 and 1", res.Frames, res.Scenes)
	}
	if !res.ValidationPassed {
		t.Error("Analyze() validation failed")
	}

	f, vr, err := Verify(res.OutputFile)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !vr.IsValid() {
		t.Errorf("Verify() failures: %v", vr.GetFailures())
	}
	if f.Header.MaxCLL != res.MaxCLL {
		t.Errorf("MaxCLL = %d, want %d", f.Header.MaxCLL, res.MaxCLL)
	}

	stats := Summarize(f)
	if stats.TargetCoverage() != 100 {
		t.Errorf("TargetCoverage() = %v, want 100", stats.TargetCoverage())
	}

	cmp := Compare(f, f)
	if cmp.SceneDelta() != 0 || cmp.MaxCLLDelta() != 0 || cmp.TargetDeltaP95 != 0 {
		t.Errorf("Compare(self) = %+v, want no deltas", cmp)
	}
}

func TestVerifyRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.bin")
	if err := os.WriteFile(path, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := Verify(path)
	if !errors.Is(err, measurement.ErrBadMagic) {
		t.Errorf("Verify() error = %v, want ErrBadMagic", err)
	}
	if !herrors.IsKind(err, herrors.KindFormat) {
		t.Errorf("Verify() error kind = %v, want format", err)
	}
}

func TestMeasureInMemory(t *testing.T) {
	src, err := video.NewRawReader(bytes.NewReader(clip(10, 600)), 16, 16, video.TransferPQ)
	if err != nil {
		t.Fatal(err)
	}
	a, err := New(WithoutOptimizer(), WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	f, err := a.Measure(context.Background(), src)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}
	if f.Header.HasTargets() {
		t.Error("targets flagged with the optimizer disabled")
	}
	if len(f.Frames) != 10 {
		t.Errorf("frames = %d, want 10", len(f.Frames))
	}
}
