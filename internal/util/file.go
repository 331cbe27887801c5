package util

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MeasurementExt is the extension of measurement files.
const MeasurementExt = ".bin"

// MeasurementSuffix is appended to the input stem for the default output.
const MeasurementSuffix = "_measurements" + MeasurementExt

// VideoExtensions is the list of supported raw video file extensions.
var VideoExtensions = map[string]bool{
	".y4m": true,
	".yuv": true,
	".raw": true,
}

// IsVideoFile checks if the given path is a supported input file.
func IsVideoFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	return VideoExtensions[ext]
}

// GetFilename returns the filename from a path.
func GetFilename(path string) string {
	return filepath.Base(path)
}

// GetFileStem returns the filename without extension.
func GetFileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

// EnsureDirectory creates a directory if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// DirectoryExists checks if a directory exists.
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ResolveOutputPath determines where the measurement for inputPath is
// written. An explicit override wins; otherwise the file is named after the
// input stem inside outputDir. Standard input is named "stdin".
func ResolveOutputPath(inputPath, outputDir, override string) string {
	if override != "" {
		return override
	}
	stem := GetFileStem(inputPath)
	if inputPath == "-" || stem == "" {
		stem = "stdin"
	}
	return filepath.Join(outputDir, stem+MeasurementSuffix)
}

// ListMeasurementFiles returns the measurement files directly inside dir,
// sorted by name.
func ListMeasurementFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), MeasurementExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
