package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// RunLogPrefix starts the name of every run log file.
const RunLogPrefix = "hdrmeasure_run_"

// Setup creates a logger that writes slog records to a timestamped log
// file in logDir. It returns a discarding logger when noLog is set.
func Setup(logDir string, verbose, noLog bool) (*Logger, error) {
	if noLog {
		return Discard(), nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filePath := filepath.Join(logDir, RunLogPrefix+timestamp+".log")

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	level := LevelInfo
	if verbose {
		level = LevelDebug
	}

	l := &Logger{
		Logger:   slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: level})),
		file:     file,
		filePath: filePath,
	}

	l.Info("hdrmeasure starting", "log_file", filePath, "debug", verbose)
	return l, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// FilePath returns the path to the log file.
func (l *Logger) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Writer returns an io.Writer that writes to the log file.
func (l *Logger) Writer() io.Writer {
	if l == nil || l.file == nil {
		return io.Discard
	}
	return l.file
}
