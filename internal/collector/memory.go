// Memory probe. Reads virtual memory usage via gopsutil.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"
)

// memoryResult holds the collected memory usage data.
type memoryResult struct {
	Percent float64
	Used    uint64
	Total   uint64
}

type memoryProbe struct{}

func (p *memoryProbe) Name() string { return "memory" }

func (p *memoryProbe) Collect(ctx context.Context) (interface{}, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return memoryResult{
		Percent: v.UsedPercent,
		Used:    v.Used,
		Total:   v.Total,
	}, nil
}
