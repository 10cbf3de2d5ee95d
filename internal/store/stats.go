// Window aggregation over stored records. Rows are fetched once and reduced
// in Go: sums accumulate in float64, min and max keep their native width.
package store

import (
	"context"
	"time"

	"github.com/statline/statline/internal/models"
)

type floatAcc struct {
	sum float64
	min float64
	max float64
	n   int64
}

func (a *floatAcc) add(v float64) {
	if a.n == 0 || v < a.min {
		a.min = v
	}
	if a.n == 0 || v > a.max {
		a.max = v
	}
	a.sum += v
	a.n++
}

func (a *floatAcc) stats() *models.FloatStats {
	if a.n == 0 {
		return nil
	}
	return &models.FloatStats{Avg: a.sum / float64(a.n), Min: a.min, Max: a.max}
}

type uintAcc struct {
	sum float64
	min uint64
	max uint64
	n   int64
}

func (a *uintAcc) add(v uint64) {
	if a.n == 0 || v < a.min {
		a.min = v
	}
	if a.n == 0 || v > a.max {
		a.max = v
	}
	a.sum += float64(v)
	a.n++
}

func (a *uintAcc) stats() *models.UintStats {
	if a.n == 0 {
		return nil
	}
	return &models.UintStats{Avg: a.sum / float64(a.n), Min: a.min, Max: a.max}
}

type intAcc struct {
	sum float64
	min int64
	max int64
	n   int64
}

func (a *intAcc) add(v int64) {
	if a.n == 0 || v < a.min {
		a.min = v
	}
	if a.n == 0 || v > a.max {
		a.max = v
	}
	a.sum += float64(v)
	a.n++
}

func (a *intAcc) stats() *models.IntStats {
	if a.n == 0 {
		return nil
	}
	return &models.IntStats{Avg: a.sum / float64(a.n), Min: a.min, Max: a.max}
}

// Stats summarizes the records inside [start, end]. A window with no records
// yields Count 0 and nil aggregates.
func (s *Store) Stats(ctx context.Context, start, end time.Time) (*models.StatsSummary, error) {
	recs, err := s.Range(ctx, start, end)
	if err != nil {
		return nil, err
	}

	summary := &models.StatsSummary{
		Count: int64(len(recs)),
		Start: start.UTC(),
		End:   end.UTC(),
	}
	if len(recs) == 0 {
		return summary, nil
	}

	var (
		cpuPct, memPct, diskPct, procCPU, procMem floatAcc
		memUsed, memTotal, diskUsed, diskTotal    uintAcc
		netSent, netRecv, procRSS, uptime         uintAcc
		tcpConns                                  intAcc
	)
	for i := range recs {
		r := &recs[i]
		cpuPct.add(r.CPUPercent)
		memPct.add(r.MemoryPercent)
		diskPct.add(r.DiskPercent)
		procCPU.add(r.ProcessCPUPercent)
		procMem.add(r.ProcessMemoryPercent)
		memUsed.add(r.MemoryUsed)
		memTotal.add(r.MemoryTotal)
		diskUsed.add(r.DiskUsed)
		diskTotal.add(r.DiskTotal)
		netSent.add(r.NetworkBytesSent)
		netRecv.add(r.NetworkBytesRecv)
		procRSS.add(r.ProcessMemoryRSS)
		uptime.add(r.UptimeSeconds)
		tcpConns.add(int64(r.TCPConnections))
	}

	summary.CPUPercent = cpuPct.stats()
	summary.MemoryPercent = memPct.stats()
	summary.MemoryUsed = memUsed.stats()
	summary.MemoryTotal = memTotal.stats()
	summary.DiskPercent = diskPct.stats()
	summary.DiskUsed = diskUsed.stats()
	summary.DiskTotal = diskTotal.stats()
	summary.TCPConnections = tcpConns.stats()
	summary.NetworkBytesSent = netSent.stats()
	summary.NetworkBytesRecv = netRecv.stats()
	summary.ProcessCPUPercent = procCPU.stats()
	summary.ProcessMemoryPercent = procMem.stats()
	summary.ProcessMemoryRSS = procRSS.stats()
	summary.UptimeSeconds = uptime.stats()
	return summary, nil
}
