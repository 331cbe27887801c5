package measurement

import "errors"

// Structural errors. A file failing with one of these cannot be read.
var (
	ErrBadMagic           = errors.New("bad magic")
	ErrTruncated          = errors.New("truncated measurement data")
	ErrUnsupportedVersion = errors.New("unsupported measurement version")
	ErrHistogramLength    = errors.New("invalid histogram length")
)
