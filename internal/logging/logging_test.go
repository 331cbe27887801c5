package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf, Enabled: true})

	l.Info("hidden")
	l.Warn("shown", "scenes", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "scenes=3") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestDisabledLoggerDiscards(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Level: LevelDebug, Output: &buf}).Error("nope")
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
}

func TestWithPrefixGroupsAttributes(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelInfo, Output: &buf, Enabled: true}).WithPrefix("optimizer")
	l.Info("target", "nits", 800)

	if !strings.Contains(buf.String(), "optimizer.nits=800") {
		t.Errorf("grouped attribute missing: %q", buf.String())
	}
}

func TestSetGlobal(t *testing.T) {
	prev := Global()
	t.Cleanup(func() { SetGlobal(prev) })

	var buf bytes.Buffer
	Init(LevelDebug, &buf)
	Debug("frame analyzed", "index", 7)

	if !strings.Contains(buf.String(), "index=7") {
		t.Errorf("global logger not replaced: %q", buf.String())
	}
}

func TestSetupWritesRunLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := Setup(dir, true, false)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	l.Debug("debug record")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if !strings.HasPrefix(filepath.Base(l.FilePath()), RunLogPrefix) {
		t.Errorf("log file name = %s", l.FilePath())
	}
	data, err := os.ReadFile(l.FilePath())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hdrmeasure starting") || !strings.Contains(string(data), "debug record") {
		t.Errorf("run log content = %q", data)
	}
}

func TestSetupNoLog(t *testing.T) {
	l, err := Setup(t.TempDir(), false, true)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if l.FilePath() != "" {
		t.Errorf("FilePath() = %q, want empty", l.FilePath())
	}
	l.Info("dropped")
	if err := l.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	var nilLogger *Logger
	if nilLogger.FilePath() != "" || nilLogger.Close() != nil || nilLogger.Writer() == nil {
		t.Error("nil logger helpers should be safe")
	}
}
