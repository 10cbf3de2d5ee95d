// Disk probe. Reads usage of the primary volume via gopsutil.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"
)

// diskResult holds the collected disk usage data.
type diskResult struct {
	Percent float64
	Used    uint64
	Total   uint64
}

type diskProbe struct {
	path string
}

func (p *diskProbe) Name() string { return "disk" }

func (p *diskProbe) Collect(ctx context.Context) (interface{}, error) {
	u, err := disk.UsageWithContext(ctx, p.path)
	if err != nil {
		return nil, err
	}
	return diskResult{
		Percent: u.UsedPercent,
		Used:    u.Used,
		Total:   u.Total,
	}, nil
}
