package config

import (
	"time"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/heuristics"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/provider"
)

// Config holds all application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Assistant AssistantConfig `mapstructure:"assistant"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
	AppURL         string   `mapstructure:"app_url"`
	RequestTimeout string   `mapstructure:"request_timeout"`
}

// DatabaseConfig configures the directory database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AssistantConfig configures the chat assistant.
type AssistantConfig struct {
	DefaultModel   string            `mapstructure:"default_model"`
	DefaultAPIURL  string            `mapstructure:"default_api_url"`
	AppTitle       string            `mapstructure:"app_title"`
	SessionTTL     string            `mapstructure:"session_ttl"`
	ReaperInterval string            `mapstructure:"reaper_interval"`
	CommandsFile   string            `mapstructure:"commands_file"`
	Heuristics     heuristics.Config `mapstructure:"heuristics"`
	RateLimit      RateLimitConfig   `mapstructure:"rate_limit"`
}

// RateLimitConfig configures the per-provider token buckets.
type RateLimitConfig struct {
	MaxTokens  float64 `mapstructure:"max_tokens"`
	RefillRate float64 `mapstructure:"refill_rate"`
}

// Limiter converts the section to provider limiter settings.
func (r RateLimitConfig) Limiter() provider.RateLimiterConfig {
	return provider.RateLimiterConfig{MaxTokens: r.MaxTokens, RefillRate: r.RefillRate}
}

// SessionTTLDuration parses SessionTTL. Callers validate first.
func (a AssistantConfig) SessionTTLDuration() time.Duration {
	d, _ := time.ParseDuration(a.SessionTTL)
	return d
}

// ReaperIntervalDuration parses ReaperInterval. Callers validate first.
func (a AssistantConfig) ReaperIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(a.ReaperInterval)
	return d
}

// RequestTimeoutDuration parses RequestTimeout. Callers validate first.
func (s ServerConfig) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(s.RequestTimeout)
	return d
}
