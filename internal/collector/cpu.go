// CPU probe. Reads whole-machine utilization via gopsutil.
package collector

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// cpuResult holds the collected CPU usage data.
type cpuResult struct {
	Percent float64
}

type cpuProbe struct {
	sample time.Duration
}

func (p *cpuProbe) Name() string { return "cpu" }

// Collect blocks for the sampling window to measure an accurate percentage.
func (p *cpuProbe) Collect(ctx context.Context) (interface{}, error) {
	pcts, err := cpu.PercentWithContext(ctx, p.sample, false)
	if err != nil {
		return nil, err
	}
	res := cpuResult{}
	if len(pcts) > 0 {
		res.Percent = pcts[0]
	}
	return res, nil
}
