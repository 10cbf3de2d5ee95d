// Network probe. Reads RX/TX byte counters via gopsutil.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/net"
)

// networkResult holds counters accumulated since boot, summed across all
// interfaces. Rates are derived at query time from consecutive records.
type networkResult struct {
	BytesSent uint64
	BytesRecv uint64
}

type networkProbe struct{}

func (p *networkProbe) Name() string { return "network" }

func (p *networkProbe) Collect(ctx context.Context) (interface{}, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(counters) == 0 {
		return networkResult{}, nil
	}
	return networkResult{
		BytesSent: counters[0].BytesSent,
		BytesRecv: counters[0].BytesRecv,
	}, nil
}
