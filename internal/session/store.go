package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Defaults for idle eviction.
const (
	DefaultTTL            = time.Hour
	DefaultReaperInterval = time.Hour
)

// Store is an in-memory map of session id to Context.
//
// Get and Set are safe for concurrent use. Lock serializes whole chat turns
// for one session id so that read-modify-write sequences do not interleave.
type Store struct {
	mu       sync.Mutex
	contexts map[string]Context
	locks    map[string]*turnLock

	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	runMu  sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

type turnLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets how long an untouched session survives.
func WithTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithReaperInterval sets how often the reaper sweeps.
func WithReaperInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty store. Call Start to enable eviction.
func NewStore(opts ...Option) *Store {
	s := &Store{
		contexts: make(map[string]Context),
		locks:    make(map[string]*turnLock),
		ttl:      DefaultTTL,
		interval: DefaultReaperInterval,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Get returns the context for id, creating an empty one on first use.
func (s *Store) Get(id string) Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contexts[id]
	if !ok {
		c = Context{LastUpdated: s.now()}
		s.contexts[id] = c
	}
	return c.Clone()
}

// Peek returns the context for id without creating it.
func (s *Store) Peek(id string) (Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contexts[id]
	return c.Clone(), ok
}

// Set replaces the context for id.
func (s *Store) Set(id string, c Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[id] = c.Clone()
}

// Clear removes the context for id. It always succeeds.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, id)
}

// Update applies fn to the context of id under the session's turn lock.
func (s *Store) Update(id string, fn func(*Context)) Context {
	unlock := s.Lock(id)
	defer unlock()

	c := s.Get(id)
	fn(&c)
	s.Set(id, c)
	return c
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contexts)
}

// Lock acquires the turn lock for id and returns its release function.
// Different ids never block each other.
func (s *Store) Lock(id string) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &turnLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			s.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(s.locks, id)
			}
			s.mu.Unlock()
		})
	}
}

// Sweep evicts every context whose LastUpdated is older than the TTL and
// returns how many were removed.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.contexts {
		if c.LastUpdated.Before(cutoff) {
			delete(s.contexts, id)
			removed++
		}
	}
	return removed
}

// Start launches the background reaper. It stops when ctx is canceled or
// Stop is called. Calling Start on a running store is a no-op.
func (s *Store) Start(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.reap(ctx, s.stopCh, s.doneCh)
}

// Stop halts the reaper and waits for it to exit.
func (s *Store) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.stopCh = nil
	s.doneCh = nil
}

func (s *Store) reap(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("evicted idle sessions", slog.Int("count", n))
			}
		}
	}
}
