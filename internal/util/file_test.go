package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveOutputPath(t *testing.T) {
	tests := []struct {
		name, input, dir, override, want string
	}{
		{"stem in dir", "/videos/movie.y4m", "out", "", filepath.Join("out", "movie_measurements.bin")},
		{"override wins", "/videos/movie.y4m", "out", "custom.bin", "custom.bin"},
		{"stdin", "-", ".", "", "stdin_measurements.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveOutputPath(tt.input, tt.dir, tt.override); got != tt.want {
				t.Errorf("ResolveOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListMeasurementFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.bin", "a.BIN", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.bin"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := ListMeasurementFiles(dir)
	if err != nil {
		t.Fatalf("ListMeasurementFiles() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a.BIN", "b.bin"}, got); diff != "" {
		t.Errorf("ListMeasurementFiles() mismatch (-want +got):\n%s", diff)
	}

	if _, err := ListMeasurementFiles(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestIsVideoFile(t *testing.T) {
	dir := t.TempDir()
	y4m := filepath.Join(dir, "clip.y4m")
	mkv := filepath.Join(dir, "clip.mkv")
	for _, p := range []string{y4m, mkv} {
		if err := os.WriteFile(p, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if !IsVideoFile(y4m) {
		t.Error("y4m should be accepted")
	}
	if IsVideoFile(mkv) {
		t.Error("containers are not decoded")
	}
	if IsVideoFile(dir) {
		t.Error("directories are not video files")
	}
}
