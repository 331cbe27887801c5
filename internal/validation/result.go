// Package validation checks measurement files for structural corruption and
// statistical inconsistencies.
package validation

import "fmt"

// Result contains the outcome of the soft checks on a readable file.
type Result struct {
	IsHistogramValid  bool
	IsPQRangeValid    bool
	IsSceneTableValid bool
	IsFlagsConsistent bool
	IsFALLConsistent  bool

	// Details
	HistogramMessage  string
	PQRangeMessage    string
	SceneTableMessage string
	FlagsMessage      string
	FALLMessage       string

	// Warnings lists every individual inconsistency found.
	Warnings []string
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// IsValid returns true if all validation checks passed.
func (r *Result) IsValid() bool {
	return r.IsHistogramValid &&
		r.IsPQRangeValid &&
		r.IsSceneTableValid &&
		r.IsFlagsConsistent &&
		r.IsFALLConsistent
}

// GetValidationSteps returns all validation steps with results.
func (r *Result) GetValidationSteps() []ValidationStep {
	return []ValidationStep{
		{Name: "Histograms", Passed: r.IsHistogramValid, Details: r.HistogramMessage},
		{Name: "PQ range", Passed: r.IsPQRangeValid, Details: r.PQRangeMessage},
		{Name: "Scene table", Passed: r.IsSceneTableValid, Details: r.SceneTableMessage},
		{Name: "Flags", Passed: r.IsFlagsConsistent, Details: r.FlagsMessage},
		{Name: "Frame-average light level", Passed: r.IsFALLConsistent, Details: r.FALLMessage},
	}
}

// GetFailures returns descriptions of failed validation checks.
func (r *Result) GetFailures() []string {
	var failures []string
	for _, step := range r.GetValidationSteps() {
		if !step.Passed {
			failures = append(failures, step.Name+": "+step.Details)
		}
	}
	return failures
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func summarize(problems int, what, ok string) string {
	switch problems {
	case 0:
		return ok
	case 1:
		return "1 " + what
	default:
		return fmt.Sprintf("%d %ss", problems, what)
	}
}
