package assistant

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/catalog"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/command"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/core"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/events"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/heuristics"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/logging"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/prompt"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/provider"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/session"
)

// Deps are the collaborators a Service needs. Bus is optional.
type Deps struct {
	Settings   core.SettingsStore
	Workspaces core.WorkspaceDirectory
	Projects   core.ProjectDirectory
	Catalog    *catalog.Catalog
	Prompts    *prompt.Builder
	Sessions   *session.Store
	Heuristics *heuristics.Extractor
	LLM        Completer
	Bus        *events.EventBus
	Logger     *logging.Logger
}

// Service is the chat orchestrator. It is safe for concurrent use; turns of
// the same session are serialized.
type Service struct {
	deps Deps
	cfg  Config
}

// New validates deps and creates a Service.
func New(deps Deps, cfg Config) (*Service, error) {
	switch {
	case deps.Settings == nil:
		return nil, errors.New("assistant: settings store is required")
	case deps.Workspaces == nil:
		return nil, errors.New("assistant: workspace directory is required")
	case deps.Projects == nil:
		return nil, errors.New("assistant: project directory is required")
	case deps.Catalog == nil:
		return nil, errors.New("assistant: command catalog is required")
	case deps.Prompts == nil:
		return nil, errors.New("assistant: prompt builder is required")
	case deps.Sessions == nil:
		return nil, errors.New("assistant: session store is required")
	case deps.LLM == nil:
		return nil, errors.New("assistant: completer is required")
	}
	if deps.Heuristics == nil {
		deps.Heuristics = heuristics.NewExtractor(heuristics.Config{})
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}

	def := DefaultConfig()
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = def.DefaultModel
	}
	if cfg.DefaultAPIURL == "" {
		cfg.DefaultAPIURL = def.DefaultAPIURL
	}
	if cfg.AppURL == "" {
		cfg.AppURL = def.AppURL
	}
	if cfg.AppTitle == "" {
		cfg.AppTitle = def.AppTitle
	}
	return &Service{deps: deps, cfg: cfg}, nil
}

// Catalog returns the command catalog the service validates against.
func (s *Service) Catalog() *catalog.Catalog {
	return s.deps.Catalog
}

type providerSettings struct {
	apiKey string
	model  string
	apiURL string
}

// loadSettings checks the enable flag, then reads the provider settings
// concurrently.
func (s *Service) loadSettings(ctx context.Context) (providerSettings, error) {
	enabled, err := s.deps.Settings.Get(ctx, core.SettingAIEnabled, "")
	if err != nil {
		return providerSettings{}, fmt.Errorf("reading %s: %w", core.SettingAIEnabled, err)
	}
	if enabled != "true" {
		return providerSettings{}, core.ErrConfig(core.CodeAIDisabled, MsgAIDisabled)
	}

	var ps providerSettings
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.deps.Settings.Get(gctx, core.SettingAIAPIKey, "")
		ps.apiKey = v
		return err
	})
	g.Go(func() error {
		v, err := s.deps.Settings.Get(gctx, core.SettingAIModel, s.cfg.DefaultModel)
		ps.model = v
		return err
	})
	g.Go(func() error {
		v, err := s.deps.Settings.Get(gctx, core.SettingAIAPIURL, s.cfg.DefaultAPIURL)
		ps.apiURL = v
		return err
	})
	if err := g.Wait(); err != nil {
		return providerSettings{}, fmt.Errorf("reading provider settings: %w", err)
	}

	if strings.TrimSpace(ps.apiKey) == "" {
		return providerSettings{}, core.ErrConfig(core.CodeMissingAPIKey, MsgMissingAPIKey)
	}
	if ps.model == "" {
		ps.model = s.cfg.DefaultModel
	}
	if ps.apiURL == "" {
		ps.apiURL = s.cfg.DefaultAPIURL
	}
	return ps, nil
}

// Chat runs one turn.
func (s *Service) Chat(ctx context.Context, req ChatRequest) ChatResponse {
	sessionID := session.ResolveID(req.SessionID)
	log := s.deps.Logger.WithSession(sessionID)

	// Unusable input gets a conversational reply; success=false is kept for
	// configuration and provider failures.
	if strings.TrimSpace(req.Message) == "" {
		log.Debug("empty message")
		return ChatResponse{Message: MsgEmptyMessage, Success: true}
	}
	if len(req.Message) > core.MaxMessageLength {
		log.Info("message too long", "length", len(req.Message))
		return ChatResponse{Message: MsgMessageTooLong, Success: true}
	}

	settings, err := s.loadSettings(ctx)
	if err != nil {
		log.Warn("chat rejected", "error", err)
		return s.fail(sessionID, err)
	}

	slugs, err := s.deps.Workspaces.FindAllSlugs(ctx, req.CurrentOrganizationID)
	if err != nil {
		log.Error("listing workspace slugs failed", "error", err)
		return s.fail(sessionID, err)
	}

	unlock := s.deps.Sessions.Lock(sessionID)
	defer unlock()

	sc := s.deps.Sessions.Get(sessionID)
	if s.deps.Heuristics.ExtractAndUpdate(req.Message, slugs, &sc) {
		sc.LastUpdated = s.deps.Sessions.Now()
		s.deps.Sessions.Set(sessionID, sc)
		s.publishContext(sessionID, events.SourceHeuristic, sc)
	}

	system, err := s.deps.Prompts.Build(sc, slugs)
	if err != nil {
		log.Error("building system prompt failed", "error", err)
		return s.fail(sessionID, err)
	}

	kind := provider.Classify(settings.apiURL)
	text, err := s.deps.LLM.Complete(ctx, kind, provider.Params{
		BaseURL:  settings.apiURL,
		Model:    settings.model,
		APIKey:   settings.apiKey,
		Messages: buildMessages(system, req.History, req.Message),
		AppURL:   s.cfg.AppURL,
		AppTitle: s.cfg.AppTitle,
	})
	if err != nil {
		log.WithProvider(string(kind)).Error("provider call failed", "error", err)
		return s.fail(sessionID, err)
	}

	return s.interpret(ctx, log, sessionID, sc, text)
}

// interpret turns the model reply into a response, proposing an action when
// the reply carries a valid command.
func (s *Service) interpret(ctx context.Context, log *logging.Logger, sessionID string, sc session.Context, text string) ChatResponse {
	resp := ChatResponse{Message: text, Success: true}

	cand, ok := command.Extract(text)
	if !ok {
		return resp
	}
	log = log.WithCommand(cand.Name)

	params, err := command.ParseParams(cand.RawJSON)
	if err != nil {
		log.Warn("discarding unparseable command", "matcher", cand.Matcher, "error", err)
		return resp
	}

	command.AutoFill(cand.Name, params, sc)

	if result := command.Validate(s.deps.Catalog, cand.Name, params); !result.Valid {
		log.Info("command needs more input", "missing", strings.Join(result.Missing, ","))
		resp.Message = text + "\n\n" + command.FollowUp(result)
		return resp
	}

	var projectSlugs []string
	switch cand.Name {
	case session.CmdNavigateToProject:
		msg, ok := s.resolveProject(ctx, log, params)
		resp.Message = msg
		if !ok {
			return resp
		}
	case session.CmdNavigateToWorkspace:
		projectSlugs = s.workspaceProjects(ctx, log, session.Param(params, "workspaceSlug"))
	}

	before := sc.Clone()
	session.ApplyCommand(&sc, cand.Name, params, projectSlugs, s.deps.Sessions.Now())
	s.deps.Sessions.Set(sessionID, sc)

	resp.Action = &Action{Name: cand.Name, Parameters: params}
	log.Info("command proposed")

	if s.deps.Bus != nil {
		s.deps.Bus.Publish(events.NewChatCommandProposedEvent(sessionID, cand.Name, maps.Clone(params)))
	}
	if contextChanged(before, sc) {
		s.publishContext(sessionID, events.SourceCommand, sc)
	}
	return resp
}

// resolveProject checks the project slug against the directory, rewriting
// params on a fuzzy hit. It returns the reply text and whether navigation
// may proceed.
func (s *Service) resolveProject(ctx context.Context, log *logging.Logger, params map[string]any) (string, bool) {
	candidate := session.Param(params, "projectSlug")
	match, err := s.deps.Projects.ValidateProjectSlug(ctx, candidate)
	if err != nil {
		log.Error("project slug validation failed", "error", err)
		match = core.SlugMatch{Status: core.SlugNotFound}
	}

	switch match.Status {
	case core.SlugExact:
		params["projectSlug"] = match.Slug
		return fmt.Sprintf(MsgProjectExact, match.Slug), true
	case core.SlugFuzzy:
		log.Info("project slug corrected", "from", candidate, "to", match.Slug)
		params["projectSlug"] = match.Slug
		return fmt.Sprintf(MsgProjectFuzzy, match.Slug), true
	default:
		params["projectSlug"] = ""
		return MsgProjectNotFound, false
	}
}

// workspaceProjects lists the project slugs of a workspace for the session
// cache. Lookup failures leave the cache empty.
func (s *Service) workspaceProjects(ctx context.Context, log *logging.Logger, slug string) []string {
	id, found, err := s.deps.Workspaces.GetIDBySlug(ctx, slug)
	if err != nil {
		log.Warn("workspace lookup failed", "workspace", slug, "error", err)
		return []string{}
	}
	if !found {
		return []string{}
	}
	slugs, err := s.deps.Projects.ListSlugsByWorkspaceID(ctx, id)
	if err != nil {
		log.Warn("listing workspace projects failed", "workspace", slug, "error", err)
		return []string{}
	}
	return slugs
}

// ClearContext drops the session's context. It always succeeds.
func (s *Service) ClearContext(sessionID string) ClearResult {
	sessionID = session.ResolveID(sessionID)
	s.deps.Sessions.Clear(sessionID)
	if s.deps.Bus != nil {
		s.deps.Bus.Publish(events.NewChatContextClearedEvent(sessionID))
	}
	s.deps.Logger.WithSession(sessionID).Debug("session context cleared")
	return ClearResult{Success: true}
}

// Context returns a snapshot of a session's context without creating it.
func (s *Service) Context(sessionID string) (session.Context, bool) {
	return s.deps.Sessions.Peek(session.ResolveID(sessionID))
}

func (s *Service) fail(sessionID string, err error) ChatResponse {
	msg := core.UserMessage(err, MsgGenericFailure)
	if s.deps.Bus != nil {
		s.deps.Bus.Publish(events.NewChatTurnFailedEvent(sessionID, msg))
	}
	return ChatResponse{Message: "", Success: false, Error: msg}
}

func (s *Service) publishContext(sessionID, source string, sc session.Context) {
	if s.deps.Bus == nil {
		return
	}
	s.deps.Bus.Publish(events.NewChatContextUpdatedEvent(
		sessionID, source, sc.WorkspaceSlug, sc.WorkspaceName, sc.ProjectSlug, sc.ProjectName,
	))
}

// buildMessages assembles system prompt, prior turns and the new message.
// History entries with roles other than user and assistant are dropped.
func buildMessages(system string, history []core.Message, message string) []core.Message {
	msgs := make([]core.Message, 0, len(history)+2)
	msgs = append(msgs, core.Message{Role: core.RoleSystem, Content: system})
	for _, m := range history {
		if m.Role == core.RoleUser || m.Role == core.RoleAssistant {
			msgs = append(msgs, m)
		}
	}
	return append(msgs, core.Message{Role: core.RoleUser, Content: message})
}

func contextChanged(a, b session.Context) bool {
	return a.WorkspaceSlug != b.WorkspaceSlug ||
		a.WorkspaceName != b.WorkspaceName ||
		a.ProjectSlug != b.ProjectSlug ||
		a.ProjectName != b.ProjectName
}
