package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// hostInfoFunc matches host.InfoWithContext so tests can stub it.
type hostInfoFunc func(ctx context.Context) (*host.InfoStat, error)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	hostInfo hostInfoFunc
}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{hostInfo: host.InfoWithContext}
}

// Detect performs platform detection and returns platform information.
//
// Arch always describes the running binary (runtime.GOARCH), never the
// kernel. If gopsutil fails, Name falls back to runtime.GOOS and the product
// fields stay empty. A cancelled context is a hard failure.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		Name: runtime.GOOS,
		OS:   runtime.GOOS,
		Arch: normalizeArch(runtime.GOARCH),
	}

	lookup := d.hostInfo
	if lookup == nil {
		lookup = host.InfoWithContext
	}

	stat, err := lookup(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}
	if stat == nil {
		return info, nil
	}

	if stat.OS != "" {
		info.Name = stat.OS
	}
	info.Platform = normalizeName(stat.Platform)
	info.Version = normalizeName(stat.PlatformVersion)

	return info, nil
}
