package probe

import (
	"runtime"
	"runtime/metrics"
	"time"
)

// Runtime metric names read for CPU accounting.
const (
	cpuUserMetric  = "/cpu/classes/user:cpu-seconds"
	cpuTotalMetric = "/cpu/classes/total:cpu-seconds"
)

// MemoryUsage is a snapshot of the Go heap and process memory.
type MemoryUsage struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"totalAlloc"`
	Sys        uint64 `json:"sys"`
	HeapAlloc  uint64 `json:"heapAlloc"`
	HeapInuse  uint64 `json:"heapInuse"`
	NumGC      uint32 `json:"numGC"`
	Goroutines int    `json:"goroutines"`
}

// CPUUsage is the estimated CPU time consumed by the process, in seconds.
type CPUUsage struct {
	User  float64 `json:"user"`
	Total float64 `json:"total"`
}

// LivenessReport is the body of the liveness probe.
type LivenessReport struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Service   string      `json:"service"`
	Uptime    float64     `json:"uptime"`
	Memory    MemoryUsage `json:"memory"`
	CPU       CPUUsage    `json:"cpu"`
}

// Liveness never consults dependencies; it only proves the process runs.
func Liveness(service string, started, now time.Time) LivenessReport {
	return LivenessReport{
		Status:    "alive",
		Timestamp: now.UTC(),
		Service:   service,
		Uptime:    Uptime(started, now),
		Memory:    ReadMemory(),
		CPU:       ReadCPU(),
	}
}

// Uptime returns seconds elapsed since started.
func Uptime(started, now time.Time) float64 {
	return now.Sub(started).Seconds()
}

// ReadMemory samples the runtime memory statistics.
func ReadMemory() MemoryUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemoryUsage{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
}

// ReadCPU samples the runtime CPU estimates.
func ReadCPU() CPUUsage {
	samples := []metrics.Sample{{Name: cpuUserMetric}, {Name: cpuTotalMetric}}
	metrics.Read(samples)

	var usage CPUUsage
	for _, s := range samples {
		if s.Value.Kind() != metrics.KindFloat64 {
			continue
		}
		switch s.Name {
		case cpuUserMetric:
			usage.User = s.Value.Float64()
		case cpuTotalMetric:
			usage.Total = s.Value.Float64()
		}
	}
	return usage
}
