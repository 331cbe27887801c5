package video

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	y4mMagic       = "YUV4MPEG2"
	y4mFrameMarker = "FRAME"
)

// Y4MReader reads YUV4MPEG2 streams with the C420p10 colorspace.
type Y4MReader struct {
	r    *bufio.Reader
	c    io.Closer
	info Info
}

// NewY4MReader parses the stream header from r.
func NewY4MReader(r io.Reader, transfer TransferFunction) (*Y4MReader, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	line, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("%w: reading y4m header: %v", ErrNoVideoStream, err)
	}
	info, err := parseY4MHeader(strings.TrimRight(line, "\n"))
	if err != nil {
		return nil, err
	}
	info.Transfer = transfer

	yr := &Y4MReader{r: br, info: info}
	if c, ok := r.(io.Closer); ok {
		yr.c = c
	}
	return yr, nil
}

func parseY4MHeader(line string) (Info, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != y4mMagic {
		return Info{}, fmt.Errorf("%w: missing %s signature", ErrNoVideoStream, y4mMagic)
	}

	var info Info
	colorspace := "420jpeg"
	for _, f := range fields[1:] {
		if len(f) < 2 {
			continue
		}
		val := f[1:]
		switch f[0] {
		case 'W':
			info.Width, _ = strconv.Atoi(val)
		case 'H':
			info.Height, _ = strconv.Atoi(val)
		case 'F':
			num, den, ok := strings.Cut(val, ":")
			if ok {
				n, _ := strconv.ParseFloat(num, 64)
				d, _ := strconv.ParseFloat(den, 64)
				if d > 0 {
					info.FrameRate = n / d
				}
			}
		case 'C':
			colorspace = val
		}
	}

	if info.Width <= 0 || info.Height <= 0 {
		return Info{}, fmt.Errorf("%w: y4m header lacks frame size", ErrNoVideoStream)
	}
	if colorspace != "420p10" {
		return Info{}, fmt.Errorf("%w: y4m colorspace %s (need 420p10)", ErrUnsupportedFormat, colorspace)
	}
	return info, nil
}

// Info returns the stream description.
func (y *Y4MReader) Info() Info { return y.info }

// Next reads the next FRAME record.
func (y *Y4MReader) Next(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	line, err := y.r.ReadString('\n')
	if err == io.EOF && line == "" {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: frame header: %v", ErrShortFrame, err)
	}
	if !strings.HasPrefix(line, y4mFrameMarker) {
		return nil, fmt.Errorf("%w: expected %s marker, got %q", ErrShortFrame, y4mFrameMarker, strings.TrimSpace(line))
	}

	f, err := readFrame(y.r, y.info.Width, y.info.Height)
	if err == io.EOF {
		return nil, fmt.Errorf("%w: frame marker without payload", ErrShortFrame)
	}
	return f, err
}

// Close closes the underlying reader if it is closable.
func (y *Y4MReader) Close() error {
	if y.c == nil {
		return nil
	}
	return y.c.Close()
}
