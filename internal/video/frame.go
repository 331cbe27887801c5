// Package video defines the decoded-frame boundary of the analyzer: planar
// 10-bit 4:2:0 frames, stream metadata and the sources that produce them.
package video

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for frame sources.
var (
	// ErrNoVideoStream indicates the input carries no decodable video.
	ErrNoVideoStream = errors.New("no video stream")
	// ErrShortFrame indicates a frame ended before all planes were read.
	ErrShortFrame = errors.New("truncated frame")
	// ErrUnsupportedFormat indicates a pixel format other than 10-bit 4:2:0.
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
)

// CodeMask keeps the 10 significant bits of a sample container.
const CodeMask = 0x3FF

// TransferFunction identifies the transfer characteristic of a stream.
type TransferFunction int

const (
	// TransferUnknown is treated like PQ by the analyzer.
	TransferUnknown TransferFunction = iota
	// TransferPQ is SMPTE ST.2084.
	TransferPQ
	// TransferHLG is ARIB STD-B67 / BT.2100 HLG.
	TransferHLG
)

// String returns the short name of the transfer function.
func (t TransferFunction) String() string {
	switch t {
	case TransferPQ:
		return "pq"
	case TransferHLG:
		return "hlg"
	default:
		return "unknown"
	}
}

// ParseTransfer maps common transfer names to a TransferFunction.
func ParseTransfer(s string) (TransferFunction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "unknown":
		return TransferUnknown, nil
	case "pq", "smpte2084", "st2084":
		return TransferPQ, nil
	case "hlg", "arib-std-b67":
		return TransferHLG, nil
	}
	return TransferUnknown, fmt.Errorf("unknown transfer function %q", s)
}

// Info describes a video stream.
type Info struct {
	Width       int
	Height      int
	TotalFrames int // 0 when unknown
	FrameRate   float64
	Transfer    TransferFunction
}

// Frame is one decoded yuv420p10le picture. Each plane stores samples as
// little-endian 16-bit containers with an explicit row stride in bytes.
type Frame struct {
	Width   int
	Height  int
	Planes  [3][]byte
	Strides [3]int
}

// ChromaSize returns the dimensions of the subsampled chroma planes.
func ChromaSize(width, height int) (int, int) {
	return (width + 1) / 2, (height + 1) / 2
}

// FrameSize returns the packed byte size of a frame with the given dimensions.
func FrameSize(width, height int) int {
	cw, ch := ChromaSize(width, height)
	return width*height*2 + 2*cw*ch*2
}

// NewFrame allocates a tightly packed frame.
func NewFrame(width, height int) *Frame {
	cw, ch := ChromaSize(width, height)
	return &Frame{
		Width:  width,
		Height: height,
		Planes: [3][]byte{
			make([]byte, width*height*2),
			make([]byte, cw*ch*2),
			make([]byte, cw*ch*2),
		},
		Strides: [3]int{width * 2, cw * 2, cw * 2},
	}
}

// Sample returns the 10-bit code at (x, y) of the given plane.
func (f *Frame) Sample(plane, x, y int) uint16 {
	off := y*f.Strides[plane] + x*2
	return binary.LittleEndian.Uint16(f.Planes[plane][off:]) & CodeMask
}

// SetSample stores a code value at (x, y) of the given plane.
func (f *Frame) SetSample(plane, x, y int, code uint16) {
	off := y*f.Strides[plane] + x*2
	binary.LittleEndian.PutUint16(f.Planes[plane][off:], code&CodeMask)
}

// Fill sets every sample of the frame to the given luma and chroma codes.
func (f *Frame) Fill(y, u, v uint16) {
	cw, ch := ChromaSize(f.Width, f.Height)
	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			f.SetSample(0, col, row, y)
		}
	}
	for row := 0; row < ch; row++ {
		for col := 0; col < cw; col++ {
			f.SetSample(1, col, row, u)
			f.SetSample(2, col, row, v)
		}
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{Width: f.Width, Height: f.Height, Strides: f.Strides}
	for i := range f.Planes {
		c.Planes[i] = append([]byte(nil), f.Planes[i]...)
	}
	return c
}

// Validate checks that the plane buffers are large enough for the geometry.
func (f *Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: invalid frame size %dx%d", ErrShortFrame, f.Width, f.Height)
	}
	cw, ch := ChromaSize(f.Width, f.Height)
	dims := [3][2]int{{f.Width, f.Height}, {cw, ch}, {cw, ch}}
	for i, d := range dims {
		if f.Strides[i] < d[0]*2 {
			return fmt.Errorf("%w: plane %d stride %d below row size %d", ErrShortFrame, i, f.Strides[i], d[0]*2)
		}
		need := (d[1]-1)*f.Strides[i] + d[0]*2
		if len(f.Planes[i]) < need {
			return fmt.Errorf("%w: plane %d has %d bytes, need %d", ErrShortFrame, i, len(f.Planes[i]), need)
		}
	}
	return nil
}
