package analysis

import (
	"encoding/binary"
	"slices"

	"github.com/five82/hdrmeasure/internal/crop"
	"github.com/five82/hdrmeasure/internal/video"
)

// Median3 returns a copy of f whose luma plane has a 3x3 median filter
// applied inside rect. The outermost row and column of rect keep their
// original values. Chroma planes are shared with f.
func Median3(f *video.Frame, rect crop.Rect) *video.Frame {
	src := f.Planes[0]
	dst := append([]byte(nil), src...)
	stride := f.Strides[0]

	var window [9]uint16
	for y := rect.Y + 1; y < rect.Y+rect.Height-1; y++ {
		for x := rect.X + 1; x < rect.X+rect.Width-1; x++ {
			n := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					window[n] = f.Sample(0, x+dx, y+dy)
					n++
				}
			}
			slices.Sort(window[:])
			binary.LittleEndian.PutUint16(dst[y*stride+x*2:], window[4])
		}
	}

	out := *f
	out.Planes[0] = dst
	return &out
}
