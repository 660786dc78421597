package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ProcessStats is the last sample of the chat process resources.
type ProcessStats struct {
	PID           int32     `json:"pid"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float32   `json:"memory_percent"`
	RSSBytes      uint64    `json:"rss_bytes"`
	Goroutines    int       `json:"goroutines"`
	SampledAt     time.Time `json:"sampled_at"`
}

// MonitoringManager samples the current process and keeps the latest stats
// for the health endpoint.
type MonitoringManager struct {
	log    *slog.Logger
	mu     sync.RWMutex
	proc   *process.Process
	latest ProcessStats
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

// Sample reads CPU and memory usage of the current process.
func (mm *MonitoringManager) Sample() error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	if mm.proc == nil {
		p, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			return err
		}
		mm.proc = p
	}
	cpu, err := mm.proc.CPUPercent()
	if err != nil {
		return err
	}
	ram, err := mm.proc.MemoryPercent()
	if err != nil {
		return err
	}
	stats := ProcessStats{
		PID:           mm.proc.Pid,
		CPUPercent:    cpu,
		MemoryPercent: ram,
		Goroutines:    runtime.NumGoroutine(),
		SampledAt:     time.Now().UTC(),
	}
	if info, err := mm.proc.MemoryInfo(); err == nil {
		stats.RSSBytes = info.RSS
	} else {
		mm.log.Debug("Error while finding process memory info", "err", err)
	}
	mm.latest = stats
	return nil
}

func (mm *MonitoringManager) Latest() ProcessStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latest
}
