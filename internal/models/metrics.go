// Package models defines the record and summary types shared across the
// engine. Records are immutable once assembled and are serialized both to
// JSON (API responses) and to the system_metrics table.
package models

import "time"

// MetricsRecord is a single point-in-time sample of host metrics. It is
// created exactly once by the collector, with ID and Timestamp assigned at
// assembly, and never modified afterwards.
type MetricsRecord struct {
	ID                   string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Timestamp            time.Time `gorm:"column:timestamp;index;not null" json:"timestamp"`
	CPUPercent           float64   `gorm:"column:cpu_percent;index" json:"cpu_percent"`
	MemoryPercent        float64   `gorm:"column:memory_percent;index" json:"memory_percent"`
	MemoryUsed           uint64    `gorm:"column:memory_used" json:"memory_used"`
	MemoryTotal          uint64    `gorm:"column:memory_total" json:"memory_total"`
	DiskPercent          float64   `gorm:"column:disk_percent" json:"disk_percent"`
	DiskUsed             uint64    `gorm:"column:disk_used" json:"disk_used"`
	DiskTotal            uint64    `gorm:"column:disk_total" json:"disk_total"`
	TCPConnections       int       `gorm:"column:tcp_connections" json:"tcp_connections"`
	NetworkBytesSent     uint64    `gorm:"column:network_bytes_sent" json:"network_bytes_sent"`
	NetworkBytesRecv     uint64    `gorm:"column:network_bytes_recv" json:"network_bytes_recv"`
	ProcessCPUPercent    float64   `gorm:"column:process_cpu_percent" json:"process_cpu_percent"`
	ProcessMemoryPercent float64   `gorm:"column:process_memory_percent" json:"process_memory_percent"`
	ProcessMemoryRSS     uint64    `gorm:"column:process_memory_rss" json:"process_memory_rss"`
	UptimeSeconds        uint64    `gorm:"column:uptime_seconds" json:"uptime_seconds"`
	CreatedAt            time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName keeps the durable table name stable across schema migrations.
func (MetricsRecord) TableName() string { return "system_metrics" }

// FloatStats aggregates a float64-valued record field.
type FloatStats struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// UintStats aggregates a uint64-valued record field. The average is computed
// in float64; min and max stay exact.
type UintStats struct {
	Avg float64 `json:"avg"`
	Min uint64  `json:"min"`
	Max uint64  `json:"max"`
}

// IntStats aggregates an integer-valued record field.
type IntStats struct {
	Avg float64 `json:"avg"`
	Min int64   `json:"min"`
	Max int64   `json:"max"`
}

// StatsSummary describes the records inside a time window. When Count is
// zero every aggregate pointer is nil, so callers can tell "no data" from
// legitimate zero values.
type StatsSummary struct {
	Count int64     `json:"count"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	CPUPercent           *FloatStats `json:"cpu_percent,omitempty"`
	MemoryPercent        *FloatStats `json:"memory_percent,omitempty"`
	MemoryUsed           *UintStats  `json:"memory_used,omitempty"`
	MemoryTotal          *UintStats  `json:"memory_total,omitempty"`
	DiskPercent          *FloatStats `json:"disk_percent,omitempty"`
	DiskUsed             *UintStats  `json:"disk_used,omitempty"`
	DiskTotal            *UintStats  `json:"disk_total,omitempty"`
	TCPConnections       *IntStats   `json:"tcp_connections,omitempty"`
	NetworkBytesSent     *UintStats  `json:"network_bytes_sent,omitempty"`
	NetworkBytesRecv     *UintStats  `json:"network_bytes_recv,omitempty"`
	ProcessCPUPercent    *FloatStats `json:"process_cpu_percent,omitempty"`
	ProcessMemoryPercent *FloatStats `json:"process_memory_percent,omitempty"`
	ProcessMemoryRSS     *UintStats  `json:"process_memory_rss,omitempty"`
	UptimeSeconds        *UintStats  `json:"uptime_seconds,omitempty"`
}

// SchedulerStatus is a read-only snapshot of the collection scheduler.
type SchedulerStatus struct {
	State           string     `json:"state"`
	Running         bool       `json:"running"`
	IntervalSeconds int        `json:"interval_seconds"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
	Cycles          uint64     `json:"cycles"`
	Failures        uint64     `json:"failures"`
}
