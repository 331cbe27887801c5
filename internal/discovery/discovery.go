// Package discovery expands command line inputs into the video files to
// measure.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	herrors "github.com/five82/hdrmeasure/internal/errors"
	"github.com/five82/hdrmeasure/internal/logging"
	"github.com/five82/hdrmeasure/internal/util"
)

// Stdin is the input name that reads frames from standard input.
const Stdin = "-"

// Result contains the outcome of expanding inputs.
type Result struct {
	Files        []string
	SkippedCount int
}

// FindVideoFiles returns the supported video files directly inside dir,
// sorted case-insensitively by name. Hidden files are ignored.
func FindVideoFiles(dir string) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, herrors.NewPathError(fmt.Sprintf("directory does not exist: %s", dir))
	}
	if !info.IsDir() {
		return nil, herrors.NewPathError(fmt.Sprintf("%s is not a directory", dir))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, herrors.NewIOError(fmt.Sprintf("cannot read directory %s", dir), err)
	}

	res := &Result{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)
		if util.IsVideoFile(full) {
			res.Files = append(res.Files, full)
		} else {
			res.SkippedCount++
		}
	}
	if len(res.Files) == 0 {
		return nil, herrors.NewPathError(fmt.Sprintf("no video files found in %s", dir))
	}

	sort.Slice(res.Files, func(i, j int) bool {
		return strings.ToLower(filepath.Base(res.Files[i])) < strings.ToLower(filepath.Base(res.Files[j]))
	})
	return res, nil
}

// ExpandInputs resolves each argument to input files: directories are
// scanned, files and stdin pass through unchanged. Stdin may only be used
// on its own.
func ExpandInputs(args []string) (*Result, error) {
	if len(args) == 0 {
		return nil, herrors.NewPathError("no input given")
	}

	res := &Result{}
	for _, arg := range args {
		if arg == Stdin {
			if len(args) > 1 {
				return nil, herrors.NewPathError("standard input cannot be combined with other inputs")
			}
			res.Files = append(res.Files, Stdin)
			continue
		}

		info, err := os.Stat(arg)
		if err != nil {
			return nil, herrors.NewPathError(fmt.Sprintf("input does not exist: %s", arg))
		}
		if !info.IsDir() {
			res.Files = append(res.Files, arg)
			continue
		}

		found, err := FindVideoFiles(arg)
		if err != nil {
			return nil, err
		}
		res.Files = append(res.Files, found.Files...)
		res.SkippedCount += found.SkippedCount
	}

	logDiscovered(res)
	return res, nil
}

// logDiscovered logs the first 5 inputs plus a count.
func logDiscovered(res *Result) {
	logging.Info("inputs discovered", "files", len(res.Files), "skipped", res.SkippedCount)
	for _, f := range res.Files[:min(5, len(res.Files))] {
		logging.Debug("input", "path", f)
	}
	if len(res.Files) > 5 {
		logging.Debug("more inputs", "count", len(res.Files)-5)
	}
}
