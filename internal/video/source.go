package video

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source produces decoded frames in presentation order.
// Next returns io.EOF after the last frame.
type Source interface {
	Info() Info
	Next(ctx context.Context) (*Frame, error)
	Close() error
}

// Format selects a container for Open.
type Format string

const (
	FormatAuto Format = ""
	FormatRaw  Format = "raw"
	FormatY4M  Format = "y4m"
)

// OpenOptions configures Open.
type OpenOptions struct {
	Format   Format
	Width    int // required for raw input
	Height   int // required for raw input
	Transfer TransferFunction
}

// Open opens path ("-" for stdin) as a frame source. The format is inferred
// from the extension when not given.
func Open(path string, opts OpenOptions) (Source, error) {
	format := opts.Format
	if format == FormatAuto {
		if strings.HasSuffix(strings.ToLower(path), ".y4m") {
			format = FormatY4M
		} else {
			format = FormatRaw
		}
	}

	var rc io.ReadCloser
	size := int64(-1)
	if path == "-" {
		rc = io.NopCloser(os.Stdin)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		if st, err := f.Stat(); err == nil && st.Mode().IsRegular() {
			size = st.Size()
		}
		rc = f
	}

	switch format {
	case FormatY4M:
		src, err := NewY4MReader(rc, opts.Transfer)
		if err != nil {
			_ = rc.Close()
			return nil, err
		}
		return src, nil
	case FormatRaw:
		src, err := NewRawReader(rc, opts.Width, opts.Height, opts.Transfer)
		if err != nil {
			_ = rc.Close()
			return nil, err
		}
		if size > 0 {
			src.info.TotalFrames = int(size / int64(FrameSize(opts.Width, opts.Height)))
		}
		return src, nil
	default:
		_ = rc.Close()
		return nil, fmt.Errorf("%w: container %q", ErrUnsupportedFormat, format)
	}
}

// readFrame fills a packed frame from r. A clean end of stream before the
// first byte returns io.EOF.
func readFrame(r io.Reader, width, height int) (*Frame, error) {
	f := NewFrame(width, height)
	for i := range f.Planes {
		n, err := io.ReadFull(r, f.Planes[i])
		if err == io.EOF && i == 0 {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("%w: plane %d read %d of %d bytes", ErrShortFrame, i, n, len(f.Planes[i]))
		}
	}
	return f, nil
}
