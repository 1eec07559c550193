package provider

import (
	"sync"
	"time"
)

// RateLimiter implements a token bucket rate limiter.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// RateLimiterConfig configures a rate limiter.
type RateLimiterConfig struct {
	MaxTokens  float64 // Maximum bucket capacity
	RefillRate float64 // Tokens added per second
}

// DefaultRateLimiterConfig allows bursts of 10 calls and one call per second
// sustained, per provider.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		MaxTokens:  10,
		RefillRate: 1,
	}
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return newRateLimiter(cfg, time.Now)
}

func newRateLimiter(cfg RateLimiterConfig, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:     cfg.MaxTokens,
		maxTokens:  cfg.MaxTokens,
		refillRate: cfg.RefillRate,
		lastRefill: now(),
		now:        now,
	}
}

// TryAcquire takes a token if one is available. It never blocks: a chat turn
// that finds the bucket empty fails fast instead of waiting.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

func (r *RateLimiter) refill() {
	now := r.now()
	elapsed := now.Sub(r.lastRefill)
	r.lastRefill = now

	r.tokens = min(r.maxTokens, r.tokens+elapsed.Seconds()*r.refillRate)
}

// Limiters holds one limiter per provider kind, created on first use.
type Limiters struct {
	mu       sync.Mutex
	cfg      RateLimiterConfig
	limiters map[Kind]*RateLimiter
	now      func() time.Time
}

// NewLimiters creates a registry where every provider shares cfg.
func NewLimiters(cfg RateLimiterConfig) *Limiters {
	return &Limiters{
		cfg:      cfg,
		limiters: make(map[Kind]*RateLimiter),
		now:      time.Now,
	}
}

// Get returns the limiter for kind.
func (l *Limiters) Get(kind Kind) *RateLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters[kind]; ok {
		return limiter
	}
	limiter := newRateLimiter(l.cfg, l.now)
	l.limiters[kind] = limiter
	return limiter
}

// Status reports available tokens per provider that has been used.
func (l *Limiters) Status() map[Kind]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	status := make(map[Kind]float64, len(l.limiters))
	for kind, limiter := range l.limiters {
		status[kind] = limiter.Available()
	}
	return status
}
