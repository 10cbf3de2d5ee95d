// Uptime probe. Reads seconds since last boot via gopsutil.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"
)

type uptimeProbe struct{}

func (p *uptimeProbe) Name() string { return "uptime" }

func (p *uptimeProbe) Collect(ctx context.Context) (interface{}, error) {
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return uptime, nil
}
