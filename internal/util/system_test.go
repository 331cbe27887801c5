package util

import (
	"runtime"
	"slices"
	"testing"
)

func TestGetSystemInfo(t *testing.T) {
	info := GetSystemInfo()
	if info.NumCPU != runtime.NumCPU() || info.OS != runtime.GOOS || info.Arch != runtime.GOARCH {
		t.Errorf("GetSystemInfo() = %+v", info)
	}
	t.Logf("CPU features: %v", info.CPUFeatures)
}

func TestCPUFeaturesKnownNames(t *testing.T) {
	known := []string{"sse4.1", "avx2", "avx512f", "asimd", "sve"}
	for _, f := range CPUFeatures() {
		if !slices.Contains(known, f) {
			t.Errorf("CPUFeatures() returned unexpected %q", f)
		}
	}
}
