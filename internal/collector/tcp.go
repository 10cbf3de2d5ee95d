// TCP probe. Counts open TCP sockets via gopsutil.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/net"
)

// tcpResult holds the total socket count across every connection state.
type tcpResult struct {
	Connections int
}

type tcpProbe struct{}

func (p *tcpProbe) Name() string { return "tcp" }

func (p *tcpProbe) Collect(ctx context.Context) (interface{}, error) {
	conns, err := net.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return nil, err
	}
	return tcpResult{Connections: len(conns)}, nil
}
