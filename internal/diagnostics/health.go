package diagnostics

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot holds resource usage at a point in time.
type Snapshot struct {
	Status     string    `json:"status"`
	Time       time.Time `json:"time"`
	Uptime     string    `json:"uptime"`
	Goroutines int       `json:"goroutines"`

	// Process memory (in MB)
	HeapAllocMB float64 `json:"heap_alloc_mb"`
	RSSMB       float64 `json:"rss_mb"`

	// Host memory and load
	MemTotalMB float64 `json:"mem_total_mb"`
	MemPercent float64 `json:"mem_percent"`
	LoadAvg1   float64 `json:"load_avg_1"`

	// Assistant state, filled by the caller
	Sessions   int `json:"sessions"`
	SSEClients int `json:"sse_clients"`
}

// Collector gathers snapshots for the current process.
type Collector struct {
	started time.Time
	pid     int32
	now     func() time.Time
}

// NewCollector creates a collector; uptime counts from this call.
func NewCollector() *Collector {
	return &Collector{
		started: time.Now(),
		pid:     int32(os.Getpid()),
		now:     time.Now,
	}
}

// Collect gathers current statistics.
func (c *Collector) Collect(ctx context.Context) Snapshot {
	now := c.now()
	s := Snapshot{
		Status:     "healthy",
		Time:       now.UTC(),
		Uptime:     now.Sub(c.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapAllocMB = float64(ms.HeapAlloc) / 1024 / 1024

	c.collectProcess(ctx, &s)
	collectHost(ctx, &s)
	return s
}

func (c *Collector) collectProcess(ctx context.Context, s *Snapshot) {
	p, err := process.NewProcessWithContext(ctx, c.pid)
	if err != nil {
		return
	}
	info, err := p.MemoryInfoWithContext(ctx)
	if err != nil || info == nil {
		return
	}
	s.RSSMB = float64(info.RSS) / 1024 / 1024
}

func collectHost(ctx context.Context, s *Snapshot) {
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.MemTotalMB = float64(vm.Total) / 1024 / 1024
		s.MemPercent = vm.UsedPercent
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		s.LoadAvg1 = avg.Load1
	}
}
