// Package sysinfo samples host health for status surfaces.
package sysinfo

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Snapshot is a point-in-time host sample.
type Snapshot struct {
	CPUPercent    float64 `json:"cpu_percent"`
	CPUCores      int     `json:"cpu_cores"`
	MemUsedBytes  uint64  `json:"memory_used_bytes"`
	MemTotalBytes uint64  `json:"memory_total_bytes"`
	MemPercent    float64 `json:"memory_percent"`
	Load1         float64 `json:"load_1"`
	Load5         float64 `json:"load_5"`
	Load15        float64 `json:"load_15"`
	Goroutines    int     `json:"goroutines"`
}

// Collect samples what it can. Probe failures leave their fields zero and
// come back joined, so callers can log them while still serving the rest.
func Collect() (Snapshot, error) {
	var snap Snapshot
	var errs []error

	if percents, err := cpu.Percent(0, false); err != nil {
		errs = append(errs, fmt.Errorf("cpu: %w", err))
	} else if len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}

	if v, err := mem.VirtualMemory(); err != nil {
		errs = append(errs, fmt.Errorf("memory: %w", err))
	} else {
		snap.MemUsedBytes = v.Used
		snap.MemTotalBytes = v.Total
		snap.MemPercent = v.UsedPercent
	}

	if avg, err := load.Avg(); err != nil {
		errs = append(errs, fmt.Errorf("load: %w", err))
	} else {
		snap.Load1 = avg.Load1
		snap.Load5 = avg.Load5
		snap.Load15 = avg.Load15
	}

	snap.CPUCores = runtime.NumCPU()
	snap.Goroutines = runtime.NumGoroutine()
	return snap, errors.Join(errs...)
}
