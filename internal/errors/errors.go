// Package errors provides structured error types for hdrmeasure operations.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO represents I/O errors.
	KindIO ErrorKind = iota
	// KindPath represents path-related errors.
	KindPath
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindDecode represents failures reading frames from the input.
	KindDecode
	// KindAnalysis represents per-frame analysis errors.
	KindAnalysis
	// KindFormat represents structural corruption of a measurement file.
	KindFormat
	// KindValidation represents measurement files that fail statistical checks.
	KindValidation
	// KindNoFilesFound represents no measurement files found.
	KindNoFilesFound
	// KindCancelled represents user-cancelled operations.
	KindCancelled
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "I/O error"
	case KindPath:
		return "Path error"
	case KindConfig:
		return "Configuration error"
	case KindDecode:
		return "Decode error"
	case KindAnalysis:
		return "Analysis error"
	case KindFormat:
		return "Format error"
	case KindValidation:
		return "Validation error"
	case KindNoFilesFound:
		return "No files found"
	case KindCancelled:
		return "Operation cancelled"
	default:
		return "Unknown error"
	}
}

// CoreError is the main error type for hdrmeasure operations.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewPathError creates a new path-related error.
func NewPathError(message string) *CoreError {
	return &CoreError{Kind: KindPath, Message: message}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message, Underlying: underlying}
}

// NewDecodeError creates an error for an unreadable input stream.
func NewDecodeError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindDecode, Message: message, Underlying: underlying}
}

// NewAnalysisError creates a new analysis-related error.
func NewAnalysisError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindAnalysis, Message: message, Underlying: underlying}
}

// NewFormatError creates an error for a structurally corrupt measurement file.
func NewFormatError(path string, underlying error) *CoreError {
	return &CoreError{Kind: KindFormat, Message: fmt.Sprintf("unreadable measurement file %s", path), Underlying: underlying}
}

// NewValidationError creates an error for a file that failed validation.
func NewValidationError(message string) *CoreError {
	return &CoreError{Kind: KindValidation, Message: message}
}

// NewNoFilesFoundError creates an error for when no measurement files are found.
func NewNoFilesFoundError(dir string) *CoreError {
	return &CoreError{Kind: KindNoFilesFound, Message: fmt.Sprintf("no measurement files found in %s", dir)}
}

// NewCancelledError creates an error for user-cancelled operations.
func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled by the user"}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsCancelled checks if the error is a cancellation error. Context
// cancellation counts as well.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled) || errors.Is(err, context.Canceled)
}

// IsNoFilesFound checks if the error is a no-files-found error.
func IsNoFilesFound(err error) bool {
	return IsKind(err, KindNoFilesFound)
}
