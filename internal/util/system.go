package util

import (
	"os"
	"runtime"

	"golang.org/x/sys/cpu"
)

// SystemInfo describes the host for the hardware report.
type SystemInfo struct {
	Hostname    string
	NumCPU      int
	OS          string
	Arch        string
	CPUFeatures []string
}

// GetSystemInfo collects system information.
func GetSystemInfo() SystemInfo {
	hostname, _ := os.Hostname()
	return SystemInfo{
		Hostname:    hostname,
		NumCPU:      runtime.NumCPU(),
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		CPUFeatures: CPUFeatures(),
	}
}

// CPUFeatures lists the vector extensions of the host CPU that matter for
// per-pixel work.
func CPUFeatures() []string {
	var features []string
	add := func(has bool, name string) {
		if has {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasSVE, "sve")
	}
	return features
}
