package cmd

import (
	"fmt"
	"io"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/assistant"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/catalog"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/config"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/directory"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/events"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/heuristics"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/prompt"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/provider"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/session"
)

// eventBufferSize is the per-subscriber buffer of the event bus.
const eventBufferSize = 100

// app holds everything a command needs to run chat turns.
type app struct {
	cfg       *config.Config
	loader    *config.Loader
	logger    *logging.Logger
	store     *directory.Store
	sessions  *session.Store
	extractor *heuristics.Extractor
	bus       *events.EventBus
	assistant *assistant.Service
}

// newApp loads configuration and wires the assistant. Logs go to logOut.
func newApp(logOut io.Writer) (*app, error) {
	cfg, loader, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, logOut)

	cat, err := catalog.Load(cfg.Assistant.CommandsFile)
	if err != nil {
		return nil, fmt.Errorf("loading command catalog: %w", err)
	}
	prompts, err := prompt.NewBuilder(cat, "")
	if err != nil {
		return nil, err
	}

	store, err := directory.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sessions := session.NewStore(
		session.WithTTL(cfg.Assistant.SessionTTLDuration()),
		session.WithReaperInterval(cfg.Assistant.ReaperIntervalDuration()),
		session.WithLogger(logger.Logger),
	)
	extractor := heuristics.NewExtractor(cfg.Assistant.Heuristics)
	bus := events.New(eventBufferSize)

	llm := provider.NewClient(
		provider.WithLimiters(provider.NewLimiters(cfg.Assistant.RateLimit.Limiter())),
		provider.WithLogger(logger.Logger),
	)

	svc, err := assistant.New(assistant.Deps{
		Settings:   store,
		Workspaces: store,
		Projects:   store,
		Catalog:    cat,
		Prompts:    prompts,
		Sessions:   sessions,
		Heuristics: extractor,
		LLM:        llm,
		Bus:        bus,
		Logger:     logger,
	}, assistant.Config{
		DefaultModel:  cfg.Assistant.DefaultModel,
		DefaultAPIURL: cfg.Assistant.DefaultAPIURL,
		AppURL:        cfg.Server.AppURL,
		AppTitle:      cfg.Assistant.AppTitle,
	})
	if err != nil {
		bus.Close()
		_ = store.Close()
		return nil, err
	}

	logger.Debug("assistant ready",
		"commands", cat.Len(),
		"database", cfg.Database.Path,
		"config_file", loader.ConfigFile(),
	)

	return &app{
		cfg:       cfg,
		loader:    loader,
		logger:    logger,
		store:     store,
		sessions:  sessions,
		extractor: extractor,
		bus:       bus,
		assistant: svc,
	}, nil
}

// Close releases the bus and the database.
func (a *app) Close() {
	a.sessions.Stop()
	a.bus.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing database", "error", err)
	}
}

func newLogger(cfg *config.Config, out io.Writer) *logging.Logger {
	return logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    out,
		AddSource: cfg.Log.AddSource,
	})
}

// openStore opens only the database, for commands that manage records.
func openStore() (*directory.Store, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := directory.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return store, nil
}
