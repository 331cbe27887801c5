package video

import (
	"image"

	"github.com/nfnt/resize"
)

// Downscale returns a copy of f reduced by factor in each dimension using
// bilinear filtering. Output dimensions are floored to even and never below 2.
// A factor of 1 or less returns f unchanged.
func Downscale(f *Frame, factor int) *Frame {
	if factor <= 1 {
		return f
	}
	w := evenAtLeast2(f.Width / factor)
	h := evenAtLeast2(f.Height / factor)
	cw, ch := ChromaSize(f.Width, f.Height)
	ncw, nch := ChromaSize(w, h)

	out := NewFrame(w, h)
	scalePlane(f, out, 0, f.Width, f.Height, w, h)
	scalePlane(f, out, 1, cw, ch, ncw, nch)
	scalePlane(f, out, 2, cw, ch, ncw, nch)
	return out
}

func evenAtLeast2(n int) int {
	n &^= 1
	if n < 2 {
		return 2
	}
	return n
}

// scalePlane moves one plane through an image.Gray16 so the resampler can
// work on it. Code values are stored unshifted.
func scalePlane(src, dst *Frame, plane, sw, sh, dw, dh int) {
	img := image.NewGray16(image.Rect(0, 0, sw, sh))
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			v := src.Sample(plane, x, y)
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8(v >> 8)
			img.Pix[i+1] = uint8(v)
		}
	}

	scaled := resize.Resize(uint(dw), uint(dh), img, resize.Bilinear)
	b := scaled.Bounds()
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			r, _, _, _ := scaled.At(b.Min.X+x, b.Min.Y+y).RGBA()
			dst.SetSample(plane, x, y, uint16(r))
		}
	}
}
