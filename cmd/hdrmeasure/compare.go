package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	herrors "github.com/five82/hdrmeasure/internal/errors"
	"github.com/five82/hdrmeasure/internal/measurement"
	"github.com/five82/hdrmeasure/internal/util"
)

// pairResult is the comparison of one file present in both directories.
type pairResult struct {
	name string
	cmp  measurement.Comparison
	err  error
}

func newCompareCmd() *cobra.Command {
	var baseline, current string

	cmd := &cobra.Command{
		Use:   "compare --baseline DIR --current DIR",
		Short: "Compare two directories of measurement files",
		Long: `Pair .bin files with the same name in two directories and report the
scene count, MaxCLL and MaxFALL deltas and the 95th percentile absolute
per-frame target_nits delta.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, unpaired, err := compareDirs(baseline, current)
			if err != nil {
				return err
			}
			printComparison(cmd.OutOrStdout(), results, unpaired)
			for _, r := range results {
				if r.err != nil {
					return fmt.Errorf("some measurement files could not be read")
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&baseline, "baseline", "", "Directory of baseline measurement files")
	cmd.Flags().StringVar(&current, "current", "", "Directory of current measurement files")
	_ = cmd.MarkFlagRequired("baseline")
	_ = cmd.MarkFlagRequired("current")
	return cmd
}

// compareDirs compares every file name present in both directories and
// lists the names found in only one of them.
func compareDirs(baselineDir, currentDir string) ([]pairResult, []string, error) {
	for _, dir := range []string{baselineDir, currentDir} {
		if !util.DirectoryExists(dir) {
			return nil, nil, herrors.NewPathError(fmt.Sprintf("directory does not exist: %s", dir))
		}
	}
	baseNames, err := util.ListMeasurementFiles(baselineDir)
	if err != nil {
		return nil, nil, herrors.NewIOError(fmt.Sprintf("reading %s", baselineDir), err)
	}
	if len(baseNames) == 0 {
		return nil, nil, herrors.NewNoFilesFoundError(baselineDir)
	}
	curNames, err := util.ListMeasurementFiles(currentDir)
	if err != nil {
		return nil, nil, herrors.NewIOError(fmt.Sprintf("reading %s", currentDir), err)
	}

	inCurrent := make(map[string]bool, len(curNames))
	for _, n := range curNames {
		inCurrent[n] = true
	}

	var results []pairResult
	var unpaired []string
	seen := make(map[string]bool, len(baseNames))
	for _, name := range baseNames {
		seen[name] = true
		if !inCurrent[name] {
			unpaired = append(unpaired, name)
			continue
		}
		results = append(results, comparePair(name, baselineDir, currentDir))
	}
	for _, name := range curNames {
		if !seen[name] {
			unpaired = append(unpaired, name)
		}
	}
	if len(results) == 0 {
		return nil, unpaired, herrors.NewNoFilesFoundError(fmt.Sprintf("both %s and %s", baselineDir, currentDir))
	}
	return results, unpaired, nil
}

func comparePair(name, baselineDir, currentDir string) pairResult {
	basePath := filepath.Join(baselineDir, name)
	base, err := measurement.ReadFile(basePath)
	if err != nil {
		return pairResult{name: name, err: herrors.NewFormatError(basePath, err)}
	}
	curPath := filepath.Join(currentDir, name)
	cur, err := measurement.ReadFile(curPath)
	if err != nil {
		return pairResult{name: name, err: herrors.NewFormatError(curPath, err)}
	}
	return pairResult{name: name, cmp: measurement.Compare(base, cur)}
}

func printComparison(w io.Writer, results []pairResult, unpaired []string) {
	cyan := color.New(color.FgCyan, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	faint := color.New(color.Faint)

	fmt.Fprintln(w)
	_, _ = cyan.Fprintln(w, "COMPARISON")
	fmt.Fprintf(w, "  %-32s %12s %12s %12s %14s\n", "File", "Scenes", "MaxCLL", "MaxFALL", "Target p95")
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(w, "  %-32s %s\n", r.name, red.Sprint(r.err.Error()))
			continue
		}
		c := r.cmp
		target := faint.Sprint("n/a")
		if c.TargetsCompared {
			target = fmt.Sprintf("%.1f nits", c.TargetDeltaP95)
		}
		fmt.Fprintf(w, "  %-32s %12s %12s %12s %14s\n", r.name,
			fmt.Sprintf("%d→%d (%+d)", c.BaselineScenes, c.CurrentScenes, c.SceneDelta()),
			fmt.Sprintf("%+d", c.MaxCLLDelta()),
			fmt.Sprintf("%+d", c.MaxFALLDelta()),
			target)
	}
	for _, name := range unpaired {
		fmt.Fprintf(w, "  %s\n", faint.Sprintf("%s: present in only one directory", name))
	}
}
