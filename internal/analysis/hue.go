package analysis

import (
	"math"

	"github.com/five82/hdrmeasure/internal/crop"
	"github.com/five82/hdrmeasure/internal/histogram"
	"github.com/five82/hdrmeasure/internal/video"
)

// minChroma is the chroma magnitude below which a sample counts as gray.
const minChroma = 10.0

// HueHistogram buckets the hue angle of every saturated chroma sample in
// rect into histogram.HueBins bins, as percentages of the counted samples.
// Frames with no saturated samples give an all-zero histogram.
func HueHistogram(f *video.Frame, rect crop.Rect) []float64 {
	hist := make([]float64, histogram.HueBins)
	cw, ch := video.ChromaSize(f.Width, f.Height)

	x0, y0 := rect.X/2, rect.Y/2
	x1, y1 := min(x0+rect.Width/2, cw), min(y0+rect.Height/2, ch)

	var counted int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			u := float64(int(f.Sample(1, x, y)) - 512)
			v := float64(int(f.Sample(2, x, y)) - 512)
			if math.Hypot(u, v) < minChroma {
				continue
			}
			deg := math.Mod(math.Atan2(v, u)*180/math.Pi+360, 360)
			bin := min(int(math.Floor(deg*histogram.HueBins/360)), histogram.HueBins-1)
			hist[bin]++
			counted++
		}
	}

	if counted > 0 {
		for i := range hist {
			hist[i] = hist[i] / float64(counted) * 100
		}
	}
	return hist
}
