package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/statline/statline/internal/models"
)

type fakeProbe struct {
	name string
	data interface{}
	err  error
}

func (f *fakeProbe) Name() string { return f.name }

func (f *fakeProbe) Collect(_ context.Context) (interface{}, error) {
	return f.data, f.err
}

func newTestCollector(probes ...probe) *SystemCollector {
	return &SystemCollector{
		probes:  probes,
		timeout: time.Second,
		logger:  zap.NewNop(),
	}
}

func TestCollect_MergesAllDomains(t *testing.T) {
	c := newTestCollector(
		&fakeProbe{name: "cpu", data: cpuResult{Percent: 42.5}},
		&fakeProbe{name: "memory", data: memoryResult{Percent: 61.2, Used: 600, Total: 1000}},
		&fakeProbe{name: "disk", data: diskResult{Percent: 75.0, Used: 750, Total: 1000}},
		&fakeProbe{name: "network", data: networkResult{BytesSent: 1111, BytesRecv: 2222}},
		&fakeProbe{name: "tcp", data: tcpResult{Connections: 17}},
		&fakeProbe{name: "process", data: processResult{CPUPercent: 1.5, MemoryPercent: 0.8, MemoryRSS: 4096}},
		&fakeProbe{name: "uptime", data: uint64(3600)},
	)

	rec, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rec.CPUPercent != 42.5 {
		t.Errorf("CPUPercent = %v, want 42.5", rec.CPUPercent)
	}
	if rec.MemoryUsed != 600 || rec.MemoryTotal != 1000 || rec.MemoryPercent != 61.2 {
		t.Errorf("memory fields = %v/%v/%v", rec.MemoryPercent, rec.MemoryUsed, rec.MemoryTotal)
	}
	if rec.DiskPercent != 75.0 || rec.DiskUsed != 750 || rec.DiskTotal != 1000 {
		t.Errorf("disk fields = %v/%v/%v", rec.DiskPercent, rec.DiskUsed, rec.DiskTotal)
	}
	if rec.NetworkBytesSent != 1111 || rec.NetworkBytesRecv != 2222 {
		t.Errorf("network fields = %v/%v", rec.NetworkBytesSent, rec.NetworkBytesRecv)
	}
	if rec.TCPConnections != 17 {
		t.Errorf("TCPConnections = %d, want 17", rec.TCPConnections)
	}
	if rec.ProcessCPUPercent != 1.5 || rec.ProcessMemoryPercent != 0.8 || rec.ProcessMemoryRSS != 4096 {
		t.Errorf("process fields = %v/%v/%v", rec.ProcessCPUPercent, rec.ProcessMemoryPercent, rec.ProcessMemoryRSS)
	}
	if rec.UptimeSeconds != 3600 {
		t.Errorf("UptimeSeconds = %d, want 3600", rec.UptimeSeconds)
	}
}

func TestCollect_FailedProbeLeavesZeroes(t *testing.T) {
	c := newTestCollector(
		&fakeProbe{name: "cpu", data: cpuResult{Percent: 50}},
		&fakeProbe{name: "memory", err: errors.New("mem unavailable")},
	)

	rec, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("partial failure should not error: %v", err)
	}
	if rec.CPUPercent != 50 {
		t.Errorf("CPUPercent = %v, want 50", rec.CPUPercent)
	}
	if rec.MemoryPercent != 0 || rec.MemoryUsed != 0 || rec.MemoryTotal != 0 {
		t.Errorf("failed domain should stay zero, got %v/%v/%v",
			rec.MemoryPercent, rec.MemoryUsed, rec.MemoryTotal)
	}
}

func TestCollect_AllProbesFailed(t *testing.T) {
	c := newTestCollector(
		&fakeProbe{name: "cpu", err: errors.New("boom")},
		&fakeProbe{name: "memory", err: errors.New("boom")},
	)

	rec, err := c.Collect(context.Background())
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
	if !errors.Is(err, models.ErrCollection) {
		t.Errorf("err = %v, want ErrCollection", err)
	}
}

func TestCollect_AssignsIdentityOnce(t *testing.T) {
	c := newTestCollector(&fakeProbe{name: "cpu", data: cpuResult{Percent: 1}})

	first, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if first.ID == "" || second.ID == "" {
		t.Fatal("records must carry IDs")
	}
	if first.ID == second.ID {
		t.Errorf("IDs must be unique, both were %s", first.ID)
	}
	if first.Timestamp.Location() != time.UTC {
		t.Errorf("timestamp location = %v, want UTC", first.Timestamp.Location())
	}
	if first.Timestamp.Nanosecond() != 0 {
		t.Errorf("timestamp should be second-precision, got %dns", first.Timestamp.Nanosecond())
	}
}

func TestCollect_RealSystem(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping live collection in short mode")
	}

	c := NewSystemCollector(Options{CPUSample: 50 * time.Millisecond}, zap.NewNop())
	rec, err := c.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID == "" {
		t.Error("record has no ID")
	}
	if rec.MemoryTotal == 0 {
		t.Error("MemoryTotal = 0, want real value")
	}
	if rec.UptimeSeconds == 0 {
		t.Error("UptimeSeconds = 0, want real value")
	}
}
