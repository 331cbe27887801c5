package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	herrors "github.com/five82/hdrmeasure/internal/errors"
	"github.com/five82/hdrmeasure/internal/measurement"
)

func TestResolveOutput(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name         string
		output       string
		inputs       int
		wantDir      string
		wantOverride string
		wantErr      bool
	}{
		{name: "directory", output: dir, inputs: 3, wantDir: dir},
		{name: "file for one input", output: filepath.Join(dir, "x.bin"), inputs: 1, wantDir: dir, wantOverride: filepath.Join(dir, "x.bin")},
		{name: "file for many inputs", output: filepath.Join(dir, "x.BIN"), inputs: 2, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotDir, gotOverride, err := resolveOutput(tt.output, tt.inputs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveOutput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if gotDir != tt.wantDir || gotOverride != tt.wantOverride {
				t.Errorf("resolveOutput() = %q, %q; want %q, %q", gotDir, gotOverride, tt.wantDir, tt.wantOverride)
			}
		})
	}
}

func TestBuildConfigFlagsOverride(t *testing.T) {
	t.Setenv("HDRMEASURE_PROFILE", "conservative")
	t.Setenv("HDRMEASURE_MIN_SCENE_LENGTH", "12")

	aa := &analyzeArgs{}
	cmd := bindAnalyzeCmd(aa)
	if err := cmd.ParseFlags([]string{"--min-scene-length", "48", "--no-optimizer", "--format-version", "6"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(cmd.Flags(), aa)
	if err != nil {
		t.Fatalf("buildConfig() error = %v", err)
	}
	if cfg.Profile != "conservative" {
		t.Errorf("Profile = %q, want environment value conservative", cfg.Profile)
	}
	if cfg.MinSceneLength != 48 {
		t.Errorf("MinSceneLength = %d, want flag value 48", cfg.MinSceneLength)
	}
	if cfg.Optimizer {
		t.Error("Optimizer still enabled after --no-optimizer")
	}
	if cfg.Version != measurement.Version6 {
		t.Errorf("Version = %d, want 6", cfg.Version)
	}
	if !cfg.Crop {
		t.Error("Crop disabled without --no-crop")
	}
}

func TestBuildConfigRejectsInvalid(t *testing.T) {
	aa := &analyzeArgs{}
	cmd := bindAnalyzeCmd(aa)
	if err := cmd.ParseFlags([]string{"--downscale", "3"}); err != nil {
		t.Fatal(err)
	}
	_, err := buildConfig(cmd.Flags(), aa)
	if !herrors.IsKind(err, herrors.KindConfig) {
		t.Errorf("buildConfig() error = %v, want config error", err)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"", "raw", "Y4M"} {
		if _, err := parseFormat(s); err != nil {
			t.Errorf("parseFormat(%q) error = %v", s, err)
		}
	}
	if _, err := parseFormat("mkv"); err == nil {
		t.Error("parseFormat(mkv) succeeded")
	}
}

func TestCompareDirs(t *testing.T) {
	base, cur := t.TempDir(), t.TempDir()
	f := &measurement.File{
		Header: measurement.Header{Version: measurement.Version5, Flags: measurement.FlagTargets, MaxCLL: 1000},
		Scenes: []measurement.Scene{{Start: 0, End: 0}},
		Frames: []measurement.Frame{measurement.NewFrame()},
	}
	f.Frames[0].LumHistogram[10] = 100
	f.Frames[0].SetTarget(500)
	if err := measurement.WriteFile(filepath.Join(base, "a.bin"), f); err != nil {
		t.Fatal(err)
	}
	if err := measurement.WriteFile(filepath.Join(base, "only_base.bin"), f); err != nil {
		t.Fatal(err)
	}
	f.Header.MaxCLL = 1100
	f.Frames[0].SetTarget(540)
	if err := measurement.WriteFile(filepath.Join(cur, "a.bin"), f); err != nil {
		t.Fatal(err)
	}

	results, unpaired, err := compareDirs(base, cur)
	if err != nil {
		t.Fatalf("compareDirs() error = %v", err)
	}
	if len(results) != 1 || results[0].err != nil {
		t.Fatalf("results = %+v, want one successful pair", results)
	}
	c := results[0].cmp
	if c.MaxCLLDelta() != 100 || c.TargetDeltaP95 != 40 {
		t.Errorf("MaxCLLDelta() = %d, TargetDeltaP95 = %v; want 100, 40", c.MaxCLLDelta(), c.TargetDeltaP95)
	}
	if len(unpaired) != 1 || unpaired[0] != "only_base.bin" {
		t.Errorf("unpaired = %v, want [only_base.bin]", unpaired)
	}

	var out bytes.Buffer
	printComparison(&out, results, unpaired)
	if !strings.Contains(out.String(), "a.bin") {
		t.Errorf("output missing file name:\n%s", out.String())
	}

	if _, _, err := compareDirs(t.TempDir(), cur); !herrors.IsNoFilesFound(err) {
		t.Errorf("compareDirs(empty) error = %v, want no files found", err)
	}
}

func TestVerifyFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(bad, []byte("mvr+"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := verifyFile(&out, bad, false, 0); !herrors.IsKind(err, herrors.KindFormat) {
		t.Errorf("verifyFile(truncated) error = %v, want format error", err)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	t.Setenv("HDRMEASURE_PROFILE", "aggressive")
	path := filepath.Join(t.TempDir(), "profiles", "hdr.yaml")

	if err := writeDefaultConfig(path, false); err != nil {
		t.Fatalf("writeDefaultConfig() error = %v", err)
	}
	if err := writeDefaultConfig(path, false); !herrors.IsKind(err, herrors.KindPath) {
		t.Errorf("writeDefaultConfig(existing) error = %v, want path error", err)
	}
	if err := writeDefaultConfig(path, true); err != nil {
		t.Errorf("writeDefaultConfig(force) error = %v", err)
	}

	if err := os.Unsetenv("HDRMEASURE_PROFILE"); err != nil {
		t.Fatal(err)
	}
	aa := &analyzeArgs{}
	cmd := bindAnalyzeCmd(aa)
	aa.configPath = path
	cfg, err := buildConfig(cmd.Flags(), aa)
	if err != nil {
		t.Fatalf("buildConfig() error = %v", err)
	}
	if cfg.Profile != "aggressive" {
		t.Errorf("Profile = %q, want aggressive from the written file", cfg.Profile)
	}
}
