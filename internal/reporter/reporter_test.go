package reporter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

var (
	_ Reporter = NullReporter{}
	_ Reporter = (*JSONReporter)(nil)
	_ Reporter = (*TerminalReporter)(nil)
	_ Reporter = (*CompositeReporter)(nil)
)

func decodeEvents(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var ev map[string]any
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
		}
		events = append(events, ev)
	}
	return events
}

func TestJSONReporterEvents(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)

	r.AnalysisStarted(480)
	r.AnalysisComplete(AnalysisOutcome{
		OutputFile:  "clip_measurements.bin",
		Frames:      480,
		Scenes:      3,
		MaxCLL:      1200,
		TotalTime:   2 * time.Second,
		Performance: &PerformanceSummary{Decode: time.Second},
	})

	events := decodeEvents(t, &buf)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0]["type"] != "analysis_started" || events[0]["total_frames"] != float64(480) {
		t.Errorf("start event = %v", events[0])
	}
	done := events[1]
	if done["type"] != "analysis_complete" || done["max_cll"] != float64(1200) || done["scenes"] != float64(3) {
		t.Errorf("complete event = %v", done)
	}
	if done["decode_seconds"] != float64(1) {
		t.Errorf("decode_seconds = %v", done["decode_seconds"])
	}
	if _, ok := done["timestamp"]; !ok {
		t.Error("events should carry a timestamp")
	}
}

func TestJSONReporterThrottlesProgress(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporterWithWriter(&buf)
	r.AnalysisStarted(1000)
	buf.Reset()

	for frame := uint64(0); frame < 20; frame++ {
		r.AnalysisProgress(ProgressSnapshot{CurrentFrame: frame, TotalFrames: 1000, Percent: float32(frame) / 10})
	}
	r.AnalysisProgress(ProgressSnapshot{CurrentFrame: 20, TotalFrames: 1000, Percent: 2})

	events := decodeEvents(t, &buf)
	// first call, the step to 1% and the step to 2%
	if len(events) != 3 {
		t.Errorf("got %d progress events, want 3", len(events))
	}
}

func TestCompositeReporterFansOut(t *testing.T) {
	var a, b bytes.Buffer
	c := NewCompositeReporter(NewJSONReporterWithWriter(&a), nil, NewJSONReporterWithWriter(&b))
	c.Warning("hue histogram empty")

	for _, buf := range []*bytes.Buffer{&a, &b} {
		events := decodeEvents(t, buf)
		if len(events) != 1 || events[0]["message"] != "hue histogram empty" {
			t.Errorf("events = %v", events)
		}
	}
}
