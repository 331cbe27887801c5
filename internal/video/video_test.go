package video

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func packedFrames(t *testing.T, width, height int, lumas ...uint16) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, y := range lumas {
		f := NewFrame(width, height)
		f.Fill(y, 512, 512)
		for _, p := range f.Planes {
			buf.Write(p)
		}
	}
	return buf.Bytes()
}

func TestFrameSampleMasksTo10Bits(t *testing.T) {
	f := NewFrame(4, 2)
	f.Planes[0][0] = 0xFF
	f.Planes[0][1] = 0xFF
	if got := f.Sample(0, 0, 0); got != 0x3FF {
		t.Errorf("Sample = %#x, want 0x3ff", got)
	}
}

func TestFrameValidate(t *testing.T) {
	f := NewFrame(8, 4)
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate() on packed frame: %v", err)
	}
	f.Planes[2] = f.Planes[2][:3]
	if err := f.Validate(); !errors.Is(err, ErrShortFrame) {
		t.Errorf("Validate() = %v, want ErrShortFrame", err)
	}
}

func TestRawReader(t *testing.T) {
	data := packedFrames(t, 8, 4, 100, 200)
	r, err := NewRawReader(bytes.NewReader(data), 8, 4, TransferPQ)
	if err != nil {
		t.Fatalf("NewRawReader: %v", err)
	}
	ctx := context.Background()

	for i, want := range []uint16{100, 200} {
		f, err := r.Next(ctx)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if got := f.Sample(0, 3, 2); got != want {
			t.Errorf("frame %d luma = %d, want %d", i, got, want)
		}
	}
	if _, err := r.Next(ctx); err != io.EOF {
		t.Errorf("Next after last frame = %v, want io.EOF", err)
	}
}

func TestRawReaderTruncated(t *testing.T) {
	data := packedFrames(t, 8, 4, 100)
	r, err := NewRawReader(bytes.NewReader(data[:len(data)-5]), 8, 4, TransferPQ)
	if err != nil {
		t.Fatalf("NewRawReader: %v", err)
	}
	if _, err := r.Next(context.Background()); !errors.Is(err, ErrShortFrame) {
		t.Errorf("Next = %v, want ErrShortFrame", err)
	}
}

func TestRawReaderNeedsGeometry(t *testing.T) {
	if _, err := NewRawReader(bytes.NewReader(nil), 0, 0, TransferPQ); !errors.Is(err, ErrNoVideoStream) {
		t.Errorf("NewRawReader(0x0) = %v, want ErrNoVideoStream", err)
	}
}

func TestY4MReader(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("YUV4MPEG2 W8 H4 F24000:1001 Ip A1:1 C420p10 XYSCSS=420P10\n")
	for _, y := range []uint16{300, 400} {
		buf.WriteString("FRAME\n")
		buf.Write(packedFrames(t, 8, 4, y))
	}

	r, err := NewY4MReader(&buf, TransferHLG)
	if err != nil {
		t.Fatalf("NewY4MReader: %v", err)
	}
	info := r.Info()
	if info.Width != 8 || info.Height != 4 || info.Transfer != TransferHLG {
		t.Errorf("Info = %+v", info)
	}
	if info.FrameRate < 23.97 || info.FrameRate > 23.98 {
		t.Errorf("FrameRate = %v, want ~23.976", info.FrameRate)
	}

	ctx := context.Background()
	for _, want := range []uint16{300, 400} {
		f, err := r.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got := f.Sample(0, 0, 0); got != want {
			t.Errorf("luma = %d, want %d", got, want)
		}
	}
	if _, err := r.Next(ctx); err != io.EOF {
		t.Errorf("Next at end = %v, want io.EOF", err)
	}
}

func TestY4MHeaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   error
	}{
		{"no signature", "MPEG W8 H4\n", ErrNoVideoStream},
		{"no size", "YUV4MPEG2 C420p10\n", ErrNoVideoStream},
		{"8-bit", "YUV4MPEG2 W8 H4 C420jpeg\n", ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewY4MReader(bytes.NewBufferString(tt.header), TransferPQ)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewY4MReader = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDownscale(t *testing.T) {
	f := NewFrame(16, 8)
	f.Fill(700, 600, 400)

	out := Downscale(f, 2)
	if out.Width != 8 || out.Height != 4 {
		t.Fatalf("Downscale size = %dx%d, want 8x4", out.Width, out.Height)
	}
	if got := out.Sample(0, 4, 2); got != 700 {
		t.Errorf("luma = %d, want 700", got)
	}
	if got := out.Sample(1, 1, 1); got != 600 {
		t.Errorf("u = %d, want 600", got)
	}
	if same := Downscale(f, 1); same != f {
		t.Error("factor 1 should return the input frame")
	}
}

func TestParseTransfer(t *testing.T) {
	tests := map[string]TransferFunction{
		"pq":           TransferPQ,
		"SMPTE2084":    TransferPQ,
		"hlg":          TransferHLG,
		"arib-std-b67": TransferHLG,
		"":             TransferUnknown,
	}
	for in, want := range tests {
		got, err := ParseTransfer(in)
		if err != nil || got != want {
			t.Errorf("ParseTransfer(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseTransfer("gamma22"); err == nil {
		t.Error("ParseTransfer(gamma22) should fail")
	}
}
