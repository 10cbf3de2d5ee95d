// Package collector reads host counters and assembles them into immutable
// metric records. Each probe covers one domain; probes run concurrently and
// a failed probe leaves its fields at zero instead of sinking the snapshot.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/statline/statline/internal/models"
)

// probe is the interface all domain probes implement.
type probe interface {
	// Name returns the unique identifier for this probe.
	Name() string

	// Collect gathers the domain's data and returns it.
	// The context allows for cancellation and timeout control.
	Collect(ctx context.Context) (interface{}, error)
}

// Options configures snapshot collection.
type Options struct {
	// Timeout bounds a whole collection pass. Defaults to 10s.
	Timeout time.Duration

	// CPUSample is the blocking window used to measure CPU utilization.
	// Defaults to 1s.
	CPUSample time.Duration

	// DiskPath is the mount point whose usage gets recorded. Defaults to "/".
	DiskPath string
}

// SystemCollector produces one MetricsRecord per call by running every
// domain probe concurrently and merging the results.
type SystemCollector struct {
	probes  []probe
	timeout time.Duration
	logger  *zap.Logger
}

// NewSystemCollector creates a collector with the full probe set.
func NewSystemCollector(opts Options, logger *zap.Logger) *SystemCollector {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.CPUSample <= 0 {
		opts.CPUSample = time.Second
	}
	if opts.DiskPath == "" {
		opts.DiskPath = "/"
	}
	return &SystemCollector{
		probes: []probe{
			&cpuProbe{sample: opts.CPUSample},
			&memoryProbe{},
			&diskProbe{path: opts.DiskPath},
			&networkProbe{},
			&tcpProbe{},
			newProcessProbe(),
			&uptimeProbe{},
		},
		timeout: opts.Timeout,
		logger:  logger,
	}
}

// Collect takes one snapshot. The record's ID and timestamp are assigned
// here and never change afterwards. Probes that fail are logged and their
// fields stay zero; Collect returns an error only when every probe failed.
func (c *SystemCollector) Collect(ctx context.Context) (*models.MetricsRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]interface{}, len(c.probes))
		errs    []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range c.probes {
		p := p // per-iteration copy: required for correct capture under go < 1.22
		g.Go(func() error {
			data, err := p.Collect(gctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				c.logger.Warn("Probe failed",
					zap.String("probe", p.Name()),
					zap.Error(err))
				errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
				return nil
			}
			results[p.Name()] = data
			return nil
		})
	}
	_ = g.Wait() // probe errors are collected above, never returned to the group

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: all probes failed: %w", models.ErrCollection, errors.Join(errs...))
	}

	return assembleRecord(results), nil
}

// assembleRecord maps probe results into a unified MetricsRecord.
func assembleRecord(results map[string]interface{}) *models.MetricsRecord {
	now := time.Now().UTC()
	rec := &models.MetricsRecord{
		ID:        uuid.NewString(),
		Timestamp: now.Truncate(time.Second),
		CreatedAt: now,
	}

	if data, ok := results["cpu"]; ok {
		if v, ok := data.(cpuResult); ok {
			rec.CPUPercent = v.Percent
		}
	}

	if data, ok := results["memory"]; ok {
		if v, ok := data.(memoryResult); ok {
			rec.MemoryPercent = v.Percent
			rec.MemoryUsed = v.Used
			rec.MemoryTotal = v.Total
		}
	}

	if data, ok := results["disk"]; ok {
		if v, ok := data.(diskResult); ok {
			rec.DiskPercent = v.Percent
			rec.DiskUsed = v.Used
			rec.DiskTotal = v.Total
		}
	}

	if data, ok := results["network"]; ok {
		if v, ok := data.(networkResult); ok {
			rec.NetworkBytesSent = v.BytesSent
			rec.NetworkBytesRecv = v.BytesRecv
		}
	}

	if data, ok := results["tcp"]; ok {
		if v, ok := data.(tcpResult); ok {
			rec.TCPConnections = v.Connections
		}
	}

	if data, ok := results["process"]; ok {
		if v, ok := data.(processResult); ok {
			rec.ProcessCPUPercent = v.CPUPercent
			rec.ProcessMemoryPercent = v.MemoryPercent
			rec.ProcessMemoryRSS = v.MemoryRSS
		}
	}

	if data, ok := results["uptime"]; ok {
		if v, ok := data.(uint64); ok {
			rec.UptimeSeconds = v
		}
	}

	return rec
}
