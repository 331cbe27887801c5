// Package util provides utility functions for formatting and common operations.
package util

import (
	"fmt"
	"time"
)

const (
	KiB = 1024
	MiB = KiB * 1024
	GiB = MiB * 1024
)

// FormatBytes formats bytes with appropriate binary units (B, KiB, MiB, GiB).
func FormatBytes(bytes uint64) string {
	bf := float64(bytes)
	switch {
	case bf >= GiB:
		return fmt.Sprintf("%.2f GiB", bf/GiB)
	case bf >= MiB:
		return fmt.Sprintf("%.2f MiB", bf/MiB)
	case bf >= KiB:
		return fmt.Sprintf("%.2f KiB", bf/KiB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatDuration formats seconds as HH:MM:SS.
func FormatDuration(seconds float64) string {
	if seconds < 0 || seconds != seconds { // NaN check
		return "??:??:??"
	}

	totalSecs := int64(seconds)
	hours := totalSecs / 3600
	minutes := (totalSecs % 3600) / 60
	secs := totalSecs % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// FormatDurationFromSecs formats seconds as HH:MM:SS from an int64.
func FormatDurationFromSecs(secs int64) string {
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FramesPerSecond returns frames divided by the elapsed wall time, or 0.
func FramesPerSecond(frames int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(frames) / elapsed.Seconds()
}

// FormatNits formats a luminance value in whole nits.
func FormatNits(nits float64) string {
	return fmt.Sprintf("%.0f nits", nits)
}

// FormatTimecode formats a frame index as HH:MM:SS.fff at fps. Without a
// usable frame rate the bare frame number is returned.
func FormatTimecode(frame int, fps float64) string {
	if fps <= 0 {
		return fmt.Sprintf("frame %d", frame)
	}
	secs := float64(frame) / fps
	whole := int64(secs)
	ms := int64((secs - float64(whole)) * 1000)
	return fmt.Sprintf("%s.%03d", FormatDurationFromSecs(whole), ms)
}
