// Process probe. Reads the monitoring process's own resource usage, so the
// engine's footprint is visible in its own records.
package collector

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// processResult holds the self-observation data.
type processResult struct {
	CPUPercent    float64
	MemoryPercent float64
	MemoryRSS     uint64
}

type processProbe struct {
	pid int32
}

func newProcessProbe() *processProbe {
	return &processProbe{pid: int32(os.Getpid())}
}

func (p *processProbe) Name() string { return "process" }

func (p *processProbe) Collect(ctx context.Context) (interface{}, error) {
	proc, err := process.NewProcessWithContext(ctx, p.pid)
	if err != nil {
		return nil, err
	}
	cpuPct, err := proc.CPUPercentWithContext(ctx)
	if err != nil {
		return nil, err
	}
	memPct, err := proc.MemoryPercentWithContext(ctx)
	if err != nil {
		return nil, err
	}
	memInfo, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return processResult{
		CPUPercent:    cpuPct,
		MemoryPercent: float64(memPct),
		MemoryRSS:     memInfo.RSS,
	}, nil
}
