package measurement

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/five82/hdrmeasure/internal/histogram"
	"github.com/five82/hdrmeasure/internal/transfer"
)

// Magic prefixes every measurement file.
const Magic = "mvr+"

// Fixed-point scales of the stored values.
const (
	pqScale   = 64000.0
	histScale = 640.0
)

// frameSize returns the encoded bytes per frame for a header.
func frameSize(h Header) int {
	n := 2 + histogram.Bins*2
	if h.Version >= Version6 {
		n += 4
	}
	if h.HasHue() {
		n += histogram.HueBins * 2
	}
	return n
}

func encodePQ(pq float64) uint16 {
	return uint16(math.Round(transfer.Clamp01(pq) * pqScale))
}

func decodePQ(v uint16) float64 {
	return float64(v) / pqScale
}

func encodePercent(p float64) uint16 {
	return uint16(math.Round(math.Max(0, math.Min(p*histScale, math.MaxUint16))))
}

func decodePercent(v uint16) float64 {
	return float64(v) / histScale
}

func clampU32(v int) uint32 {
	if v < 0 {
		return 0
	}
	if int64(v) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// Encode serializes f. Scene and frame counts and the header size are
// taken from the data and version, not from f.Header.
func Encode(f *File) ([]byte, error) {
	h := f.Header
	if h.Version != Version5 && h.Version != Version6 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	h.HeaderSize = HeaderSize(h.Version)
	h.SceneCount = uint32(len(f.Scenes))
	h.FrameCount = uint32(len(f.Frames))

	for i, fr := range f.Frames {
		if len(fr.LumHistogram) != histogram.Bins {
			return nil, fmt.Errorf("%w: frame %d has %d luminance bins", ErrHistogramLength, i, len(fr.LumHistogram))
		}
		if h.HasHue() && fr.HueHistogram != nil && len(fr.HueHistogram) != histogram.HueBins {
			return nil, fmt.Errorf("%w: frame %d has %d hue bins", ErrHistogramLength, i, len(fr.HueHistogram))
		}
	}

	var buf bytes.Buffer
	buf.Grow(len(Magic) + int(h.HeaderSize) + len(f.Scenes)*12 + len(f.Frames)*(frameSize(h)+2))
	buf.WriteString(Magic)

	le := binary.LittleEndian
	u32 := func(v uint32) { buf.Write(le.AppendUint32(nil, v)) }
	u16 := func(v uint16) { buf.Write(le.AppendUint16(nil, v)) }

	u32(h.Version)
	u32(h.HeaderSize)
	u32(h.SceneCount)
	u32(h.FrameCount)
	u32(h.Flags)
	u32(h.MaxCLL)
	u32(h.MaxFALL)
	u32(h.AvgFALL)
	if h.Version >= Version6 {
		u32(h.TargetPeakNits)
	}

	for _, s := range f.Scenes {
		u32(clampU32(s.Start))
	}
	for _, s := range f.Scenes {
		u32(clampU32(s.End))
	}
	for _, s := range f.Scenes {
		u32(s.PeakNits)
	}

	for _, fr := range f.Frames {
		u16(encodePQ(fr.PeakPQ2020))
		if h.Version >= Version6 {
			u16(encodePQ(fr.PeakPQDCIP3))
			u16(encodePQ(fr.PeakPQ709))
		}
		for _, p := range fr.LumHistogram {
			u16(encodePercent(p))
		}
		if h.HasHue() {
			for i := 0; i < histogram.HueBins; i++ {
				var p float64
				if fr.HueHistogram != nil {
					p = fr.HueHistogram[i]
				}
				u16(encodePercent(p))
			}
		}
	}

	if h.HasTargets() {
		for _, fr := range f.Frames {
			u16(fr.TargetNits)
		}
	}

	return buf.Bytes(), nil
}

// reader walks a byte slice, failing with ErrTruncated on short reads.
type reader struct {
	data []byte
	off  int
}

func (r *reader) need(n int, what string) error {
	if len(r.data)-r.off < n {
		return fmt.Errorf("%w: %s needs %d bytes at offset %d, %d left", ErrTruncated, what, n, r.off, len(r.data)-r.off)
	}
	return nil
}

func (r *reader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *reader) u16() uint16 {
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

// Decode parses a measurement file. Frame avg_pq is rebuilt from the
// stored histogram and scene avg_pq from its frames.
func Decode(data []byte) (*File, error) {
	r := &reader{data: data}
	if err := r.need(len(Magic), "magic"); err != nil {
		return nil, err
	}
	if string(data[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("%w: got %q", ErrBadMagic, data[:len(Magic)])
	}
	r.off = len(Magic)

	if err := r.need(8, "header"); err != nil {
		return nil, err
	}
	var h Header
	h.Version = r.u32()
	h.HeaderSize = r.u32()
	if h.Version != Version5 && h.Version != Version6 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	want := HeaderSize(h.Version)
	if h.HeaderSize < want {
		return nil, fmt.Errorf("%w: header size %d below %d for version %d", ErrTruncated, h.HeaderSize, want, h.Version)
	}
	if err := r.need(int(h.HeaderSize)-8, "header"); err != nil {
		return nil, err
	}
	h.SceneCount = r.u32()
	h.FrameCount = r.u32()
	h.Flags = r.u32()
	h.MaxCLL = r.u32()
	h.MaxFALL = r.u32()
	h.AvgFALL = r.u32()
	if h.Version >= Version6 {
		h.TargetPeakNits = r.u32()
	}
	r.off = len(Magic) + int(h.HeaderSize)

	scenes, frames := int(h.SceneCount), int(h.FrameCount)
	body := scenes*12 + frames*frameSize(h)
	if h.HasTargets() {
		body += frames * 2
	}
	if err := r.need(body, fmt.Sprintf("%d scenes and %d frames", scenes, frames)); err != nil {
		return nil, err
	}

	f := &File{Header: h, Scenes: make([]Scene, scenes), Frames: make([]Frame, frames)}
	for i := range f.Scenes {
		f.Scenes[i].Start = int(r.u32())
	}
	for i := range f.Scenes {
		f.Scenes[i].End = int(r.u32())
	}
	for i := range f.Scenes {
		f.Scenes[i].PeakNits = r.u32()
	}

	for i := range f.Frames {
		fr := Frame{LumHistogram: make([]float64, histogram.Bins)}
		fr.PeakPQ2020 = decodePQ(r.u16())
		if h.Version >= Version6 {
			fr.PeakPQDCIP3 = decodePQ(r.u16())
			fr.PeakPQ709 = decodePQ(r.u16())
		}
		for b := range fr.LumHistogram {
			fr.LumHistogram[b] = decodePercent(r.u16())
		}
		if h.HasHue() {
			fr.HueHistogram = make([]float64, histogram.HueBins)
			for b := range fr.HueHistogram {
				fr.HueHistogram[b] = decodePercent(r.u16())
			}
		}
		fr.AvgPQ = histogram.AveragePQ(fr.LumHistogram)
		f.Frames[i] = fr
	}

	if h.HasTargets() {
		for i := range f.Frames {
			f.Frames[i].SetTarget(r.u16())
		}
	}
	f.TrailingBytes = len(data) - r.off

	for i := range f.Scenes {
		f.Scenes[i].AvgPQ = sceneAvgPQ(f.Scenes[i], f.Frames)
	}
	return f, nil
}

// sceneAvgPQ averages frame avg_pq over a scene; out-of-range scenes give 0.
func sceneAvgPQ(s Scene, frames []Frame) float64 {
	if s.Start < 0 || s.End < s.Start || s.End >= len(frames) {
		return 0
	}
	var sum float64
	for _, fr := range frames[s.Start : s.End+1] {
		sum += fr.AvgPQ
	}
	return sum / float64(s.Len())
}

// ReadFile reads and decodes a measurement file from disk.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// WriteFile encodes f and atomically replaces path with the result.
func WriteFile(path string, f *File) error {
	data, err := Encode(f)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
