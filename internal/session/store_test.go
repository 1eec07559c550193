package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newClock() *testClock {
	return &testClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestStore_GetCreatesEmpty(t *testing.T) {
	t.Parallel()
	clock := newClock()
	s := NewStore(WithClock(clock.now))

	c := s.Get("a")
	assert.False(t, c.IsSet())
	assert.Equal(t, clock.now(), c.LastUpdated)
	assert.Equal(t, 1, s.Len())
}

func TestStore_SetIsolatesCallerSlices(t *testing.T) {
	t.Parallel()
	s := NewStore()

	slugs := []string{"alpha", "beta"}
	s.Set("a", Context{WorkspaceSlug: "acme", ProjectSlugs: slugs})
	slugs[0] = "mutated"

	got := s.Get("a")
	assert.Equal(t, []string{"alpha", "beta"}, got.ProjectSlugs)

	got.ProjectSlugs[1] = "changed"
	assert.Equal(t, []string{"alpha", "beta"}, s.Get("a").ProjectSlugs)
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()
	s := NewStore()
	s.Set("a", Context{WorkspaceSlug: "acme"})
	s.Set("b", Context{WorkspaceSlug: "other"})

	s.Clear("a")
	s.Clear("never-existed")

	_, ok := s.Peek("a")
	assert.False(t, ok)
	b, ok := s.Peek("b")
	require.True(t, ok)
	assert.Equal(t, "other", b.WorkspaceSlug)
}

func TestStore_SweepEvictsIdleSessions(t *testing.T) {
	t.Parallel()
	clock := newClock()
	s := NewStore(WithClock(clock.now), WithTTL(time.Hour))

	now := clock.now()
	s.Set("stale", Context{WorkspaceSlug: "old", LastUpdated: now.Add(-61 * time.Minute)})
	s.Set("fresh", Context{WorkspaceSlug: "new", LastUpdated: now.Add(-30 * time.Minute)})

	removed := s.Sweep()

	assert.Equal(t, 1, removed)
	_, ok := s.Peek("stale")
	assert.False(t, ok, "61 minute old session should be evicted")
	_, ok = s.Peek("fresh")
	assert.True(t, ok, "30 minute old session should survive")
}

func TestStore_ReaperRunsOnInterval(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := newClock()
	s := NewStore(WithClock(clock.now), WithTTL(time.Minute), WithReaperInterval(5*time.Millisecond))
	s.Set("stale", Context{LastUpdated: clock.now().Add(-2 * time.Minute)})

	s.Start(context.Background())
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		_, ok := s.Peek("stale")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestStore_ReaperStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewStore(WithReaperInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	s.Stop()
	s.Stop()
}

func TestStore_LockSerializesSameSession(t *testing.T) {
	t.Parallel()
	s := NewStore()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("shared", func(c *Context) {
				c.ProjectSlugs = append(c.ProjectSlugs, "p")
			})
		}()
	}
	wg.Wait()

	assert.Len(t, s.Get("shared").ProjectSlugs, workers)
}

func TestStore_LockDoesNotBlockOtherSessions(t *testing.T) {
	t.Parallel()
	s := NewStore()

	unlockA := s.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := s.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on session b blocked behind session a")
	}
}

func TestStore_UnlockIsIdempotent(t *testing.T) {
	t.Parallel()
	s := NewStore()

	unlock := s.Lock("a")
	unlock()
	unlock()

	unlock = s.Lock("a")
	unlock()
}
