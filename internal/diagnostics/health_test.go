package diagnostics

import (
	"context"
	"testing"
	"time"
)

func TestCollector_Collect(t *testing.T) {
	t.Parallel()
	c := NewCollector()
	start := c.started
	c.now = func() time.Time { return start.Add(90 * time.Second) }

	s := c.Collect(context.Background())

	if s.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", s.Status)
	}
	if s.Uptime != "1m30s" {
		t.Errorf("Uptime = %q, want 1m30s", s.Uptime)
	}
	if s.Goroutines < 1 {
		t.Errorf("Goroutines = %d, want >= 1", s.Goroutines)
	}
	if s.HeapAllocMB <= 0 {
		t.Errorf("HeapAllocMB = %f, want > 0", s.HeapAllocMB)
	}
	if s.MemPercent < 0 || s.MemPercent > 100 {
		t.Errorf("MemPercent = %f out of range", s.MemPercent)
	}
}

func TestCollector_CanceledContextStillReports(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewCollector().Collect(ctx)
	if s.Status != "healthy" || s.Goroutines == 0 {
		t.Errorf("runtime fields should not depend on probes: %+v", s)
	}
}
