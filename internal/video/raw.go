package video

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// RawReader reads a headerless yuv420p10le stream of fixed geometry.
type RawReader struct {
	r    *bufio.Reader
	c    io.Closer
	info Info
}

// NewRawReader wraps r. Width and height must be positive.
func NewRawReader(r io.Reader, width, height int, transfer TransferFunction) (*RawReader, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: raw input needs width and height (got %dx%d)", ErrNoVideoStream, width, height)
	}
	rr := &RawReader{
		r:    bufio.NewReaderSize(r, 1<<20),
		info: Info{Width: width, Height: height, Transfer: transfer},
	}
	if c, ok := r.(io.Closer); ok {
		rr.c = c
	}
	return rr, nil
}

// Info returns the stream description.
func (r *RawReader) Info() Info { return r.info }

// Next reads the next frame.
func (r *RawReader) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readFrame(r.r, r.info.Width, r.info.Height)
}

// Close closes the underlying reader if it is closable.
func (r *RawReader) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}
