package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	herrors "github.com/five82/hdrmeasure/internal/errors"
	"github.com/five82/hdrmeasure/internal/measurement"
	"github.com/five82/hdrmeasure/internal/transfer"
	"github.com/five82/hdrmeasure/internal/util"
	"github.com/five82/hdrmeasure/internal/validation"
)

// maxListedScenes caps the scene table unless --all-scenes is given.
const maxListedScenes = 20

func newVerifyCmd() *cobra.Command {
	var allScenes bool
	var fps float64

	cmd := &cobra.Command{
		Use:   "verify FILE...",
		Short: "Inspect and validate measurement files",
		Long: `Print the header, scene table, frame statistics and validation report of
each measurement file. Only unreadable files cause a non-zero exit;
validation warnings are reported but do not fail the command.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				if err := verifyFile(cmd.OutOrStdout(), path, allScenes, fps); err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files unreadable", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&allScenes, "all-scenes", false, "List every scene")
	cmd.Flags().Float64Var(&fps, "fps", 0, "Frame rate used to print scene timecodes")
	return cmd
}

func verifyFile(w io.Writer, path string, allScenes bool, fps float64) error {
	f, res, err := validation.ValidateFile(path)
	if err != nil {
		return herrors.NewFormatError(path, err)
	}

	cyan := color.New(color.FgCyan, color.Bold)
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow, color.Bold)
	label := func(name string, value any) {
		fmt.Fprintf(w, "  %s %v\n", bold.Sprintf("%-16s", name), value)
	}

	h := f.Header
	fmt.Fprintln(w)
	_, _ = cyan.Fprintln(w, util.GetFilename(path))
	label("Version:", h.Version)
	label("Frames:", h.FrameCount)
	label("Scenes:", h.SceneCount)
	label("Flags:", describeFlags(h))
	label("MaxCLL:", fmt.Sprintf("%d nits", h.MaxCLL))
	label("MaxFALL:", fmt.Sprintf("%d nits", h.MaxFALL))
	label("AvgFALL:", fmt.Sprintf("%d nits", h.AvgFALL))
	if h.Version >= measurement.Version6 {
		label("Target peak:", fmt.Sprintf("%d nits", h.TargetPeakNits))
	}

	fmt.Fprintln(w)
	_, _ = cyan.Fprintln(w, "SCENES")
	limit := len(f.Scenes)
	if !allScenes {
		limit = min(limit, maxListedScenes)
	}
	for i, s := range f.Scenes[:limit] {
		start := fmt.Sprintf("%d", s.Start)
		if fps > 0 {
			start = util.FormatTimecode(s.Start, fps)
		}
		fmt.Fprintf(w, "  %4d  %-12s %6d frames  peak %5d nits  avg %s\n",
			i, start, s.Len(), s.PeakNits, util.FormatNits(transfer.PQToNits(s.AvgPQ)))
	}
	if limit < len(f.Scenes) {
		fmt.Fprintf(w, "  ... %d more (use --all-scenes)\n", len(f.Scenes)-limit)
	}

	st := validation.Summarize(f)
	fmt.Fprintln(w)
	_, _ = cyan.Fprintln(w, "FRAMES")
	label("Peak:", fmt.Sprintf("max %s, mean %s", util.FormatNits(st.MaxPeakNits), util.FormatNits(st.MeanPeakNits)))
	label("Average:", fmt.Sprintf("max %s, mean %s", util.FormatNits(st.MaxAvgNits), util.FormatNits(st.MeanAvgNits)))
	if h.HasTargets() {
		label("Targets:", fmt.Sprintf("%.1f%% of frames, %d-%d nits", st.TargetCoverage(), st.MinTarget, st.MaxTarget))
	}

	fmt.Fprintln(w)
	_, _ = cyan.Fprintln(w, "VALIDATION")
	for _, step := range res.GetValidationSteps() {
		mark := green.Sprint("ok  ")
		if !step.Passed {
			mark = yellow.Sprint("warn")
		}
		fmt.Fprintf(w, "  %s %-26s %s\n", mark, step.Name, step.Details)
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "       %s\n", warning)
	}
	if f.TrailingBytes > 0 {
		fmt.Fprintf(w, "  %s %d trailing bytes after the frame data\n", yellow.Sprint("note"), f.TrailingBytes)
	}
	return nil
}

func describeFlags(h measurement.Header) string {
	var parts []string
	if h.HasTargets() {
		parts = append(parts, "targets")
	}
	if h.HasHue() {
		parts = append(parts, "hue")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%d", h.Flags)
	}
	return fmt.Sprintf("%d (%s)", h.Flags, strings.Join(parts, ", "))
}
