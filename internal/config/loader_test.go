package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at an empty directory so a developer's own config
// never leaks into the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestLoader_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.Equal(t, 8089, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, filepath.Join(".taskosaur", "taskosaur.db"), cfg.Database.Path)
	assert.Equal(t, "deepseek/deepseek-chat-v3-0324:free", cfg.Assistant.DefaultModel)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Assistant.DefaultAPIURL)
	assert.Equal(t, time.Hour, cfg.Assistant.SessionTTLDuration())
	assert.Equal(t, time.Hour, cfg.Assistant.ReaperIntervalDuration())
	assert.Equal(t, 60*time.Second, cfg.Server.RequestTimeoutDuration())
	assert.Empty(t, cfg.Assistant.Heuristics.Denylist)
	assert.Equal(t, 10.0, cfg.Assistant.RateLimit.MaxTokens)

	assert.NoError(t, ValidateConfig(cfg), "defaults must validate")
}

func TestLoader_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("TASKOSAUR_LOG_LEVEL", "debug")
	t.Setenv("TASKOSAUR_SERVER_PORT", "9100")
	t.Setenv("TASKOSAUR_ASSISTANT_SESSION_TTL", "30m")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Assistant.SessionTTLDuration())
}

func TestLoader_ConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log:
  level: warn
assistant:
  default_model: gpt-4o-mini
  heuristics:
    denylist: [foo, bar]
    deny_prefixes: ["please open"]
  rate_limit:
    max_tokens: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	loader := NewLoader().WithConfigFile(path)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, path, loader.ConfigFile())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "gpt-4o-mini", cfg.Assistant.DefaultModel)
	assert.Equal(t, []string{"foo", "bar"}, cfg.Assistant.Heuristics.Denylist)
	assert.Equal(t, []string{"please open"}, cfg.Assistant.Heuristics.DenyPrefixes)
	assert.Equal(t, 3.0, cfg.Assistant.RateLimit.MaxTokens)
	assert.Equal(t, 1.0, cfg.Assistant.RateLimit.RefillRate, "unset keys keep defaults")
}

func TestLoader_EnvBeatsFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600))
	t.Setenv("TASKOSAUR_LOG_LEVEL", "error")

	cfg, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoader_InvalidFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: [unclosed"), 0o600))

	_, err := NewLoader().WithConfigFile(path).Load()
	assert.Error(t, err)
}

func TestLoader_DefaultConfigYAMLLoads(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path, false))

	cfg, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)
	assert.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
}

func TestLoader_WatchWithoutFileIsNoop(t *testing.T) {
	isolate(t)
	loader := NewLoader()
	_, err := loader.Load()
	require.NoError(t, err)

	loader.Watch(func(*Config) { t.Error("unexpected reload") }, nil)
}

func TestLoader_WatchReloadsDenylist(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("assistant:\n  heuristics:\n    denylist: [foo]\n"), 0o600))

	loader := NewLoader().WithConfigFile(path)
	_, err := loader.Load()
	require.NoError(t, err)

	reloaded := make(chan *Config, 16)
	loader.Watch(func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	}, nil)

	require.NoError(t, os.WriteFile(path, []byte("assistant:\n  heuristics:\n    denylist: [foo, baz]\n"), 0o600))

	require.Eventually(t, func() bool {
		select {
		case c := <-reloaded:
			return len(c.Assistant.Heuristics.Denylist) == 2
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond)
}
