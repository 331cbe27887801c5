// Package crop detects the active picture area of a frame so letterbox and
// pillarbox bars are excluded from luminance statistics.
package crop

import (
	"fmt"
	"math"

	"github.com/five82/hdrmeasure/internal/video"
)

// Detection constants
const (
	// sampleStep is the pixel stride used when sampling a row or column.
	sampleStep = 10

	// activeRatio is the share of sampled pixels that must be non-black
	// for a row or column to count as picture.
	activeRatio = 0.10

	// blackThreshold is the normalized luma above nominal black that
	// separates picture from bars.
	blackThreshold = 0.01
)

// Rect is the active picture rectangle in luma pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Full returns the rectangle covering an entire frame.
func Full(width, height int) Rect {
	return Rect{Width: width, Height: height}
}

// String formats the rectangle the way crop filters do (w:h:x:y).
func (r Rect) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", r.Width, r.Height, r.X, r.Y)
}

// IsFull reports whether r covers the whole width x height frame.
func (r Rect) IsFull(width, height int) bool {
	return r.X == 0 && r.Y == 0 && r.Width == width && r.Height == height
}

// Pixels returns the pixel count of the rectangle.
func (r Rect) Pixels() int {
	return r.Width * r.Height
}

// NormalizeLimited maps a 10-bit limited-range code to [0,1].
func NormalizeLimited(code uint16) float64 {
	v := (float64(code&video.CodeMask) - 64) / 876
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func isNonBlack(code uint16) bool {
	return NormalizeLimited(code) > blackThreshold
}

// requiredSamples is the non-black count needed along a line of n pixels.
func requiredSamples(n int) int {
	samples := (n + sampleStep - 1) / sampleStep
	if samples < 1 {
		samples = 1
	}
	need := int(math.Ceil(float64(samples) * activeRatio))
	return max(need, 1)
}

// Detect scans the four edges of the luma plane inward and returns the
// even-aligned active rectangle. A degenerate result falls back to the
// full frame.
func Detect(f *video.Frame) Rect {
	width, height := f.Width, f.Height
	if width <= 0 || height <= 0 {
		return Full(width, height)
	}

	needRow := requiredSamples(width)
	needCol := requiredSamples(height)

	rowActive := func(y int) bool {
		n := 0
		for x := 0; x < width; x += sampleStep {
			if isNonBlack(f.Sample(0, x, y)) {
				if n++; n >= needRow {
					return true
				}
			}
		}
		return false
	}
	colActive := func(x int) bool {
		n := 0
		for y := 0; y < height; y += sampleStep {
			if isNonBlack(f.Sample(0, x, y)) {
				if n++; n >= needCol {
					return true
				}
			}
		}
		return false
	}

	top, bottom := 0, height-1
	for y := 0; y < height; y++ {
		if rowActive(y) {
			top = y
			break
		}
	}
	for y := height - 1; y >= 0; y-- {
		if rowActive(y) {
			bottom = y
			break
		}
	}
	left, right := 0, width-1
	for x := 0; x < width; x++ {
		if colActive(x) {
			left = x
			break
		}
	}
	for x := width - 1; x >= 0; x-- {
		if colActive(x) {
			right = x
			break
		}
	}

	if right <= left || bottom <= top {
		return Full(width, height)
	}
	return align(left, top, right, bottom, width, height)
}

// align rounds the inclusive edge coordinates to an even rectangle that
// fits inside the frame.
func align(left, top, right, bottom, width, height int) Rect {
	x0 := left &^ 1
	y0 := top &^ 1
	w := roundLenEven(max(right-x0+1, 2))
	h := roundLenEven(max(bottom-y0+1, 2))

	if x0+w > width {
		if width >= w {
			x0 = width - w
		} else {
			x0, w = 0, width&^1
		}
	}
	if y0+h > height {
		if height >= h {
			y0 = height - h
		} else {
			y0, h = 0, height&^1
		}
	}
	return Rect{X: x0, Y: y0, Width: w, Height: h}
}

func roundLenEven(n int) int {
	if n <= 2 {
		return 2
	}
	return n &^ 1
}
