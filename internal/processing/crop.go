// Package processing runs the measurement pipeline over video inputs.
package processing

import (
	"fmt"

	"github.com/five82/hdrmeasure/internal/crop"
	"github.com/five82/hdrmeasure/internal/video"
)

// CropResult holds the crop decision made on the first analyzed frame.
type CropResult struct {
	Rect     crop.Rect
	Required bool
	Message  string
}

// DetectCrop decides the analysis rectangle for a session. When disabled
// the full frame is used.
func DetectCrop(f *video.Frame, disabled bool) CropResult {
	full := crop.Full(f.Width, f.Height)
	if disabled {
		return CropResult{Rect: full, Message: "Crop detection disabled"}
	}

	rect := crop.Detect(f)
	if rect.IsFull(f.Width, f.Height) {
		return CropResult{Rect: rect, Message: "No black bars detected"}
	}

	barsV := f.Height - rect.Height
	barsH := f.Width - rect.Width
	var msg string
	switch {
	case barsV > 0 && barsH > 0:
		msg = fmt.Sprintf("Black bars detected: %d rows, %d columns", barsV, barsH)
	case barsV > 0:
		msg = fmt.Sprintf("Letterbox detected: %d rows", barsV)
	default:
		msg = fmt.Sprintf("Pillarbox detected: %d columns", barsH)
	}
	return CropResult{Rect: rect, Required: true, Message: msg}
}
