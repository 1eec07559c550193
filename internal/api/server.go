// Package api exposes the assistant over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/api/sse"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/assistant"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/catalog"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/diagnostics"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/events"
)

// Assistant is the chat surface the server exposes.
type Assistant interface {
	Chat(ctx context.Context, req assistant.ChatRequest) assistant.ChatResponse
	ClearContext(sessionID string) assistant.ClearResult
	Catalog() *catalog.Catalog
}

// SettingsStore reads and writes assistant settings.
type SettingsStore interface {
	Get(ctx context.Context, key, def string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Server provides the HTTP endpoints of the assistant.
type Server struct {
	router         chi.Router
	assistant      Assistant
	settings       SettingsStore
	eventBus       *events.EventBus
	sse            *sse.Handler
	health         *diagnostics.Collector
	sessionCount   func() int
	logger         *slog.Logger
	corsOrigins    []string
	requestTimeout time.Duration
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCORSOrigins sets the allowed browser origins. Defaults to "*".
func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithRequestTimeout bounds non-streaming requests. Defaults to 60s.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// WithSessionCount reports the number of live chat sessions on /health.
func WithSessionCount(fn func() int) ServerOption {
	return func(s *Server) {
		s.sessionCount = fn
	}
}

// NewServer creates a new API server.
func NewServer(a Assistant, settings SettingsStore, eventBus *events.EventBus, opts ...ServerOption) *Server {
	s := &Server{
		assistant:      a,
		settings:       settings,
		eventBus:       eventBus,
		health:         diagnostics.NewCollector(),
		logger:         slog.Default(),
		corsOrigins:    []string{"*"},
		requestTimeout: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	if eventBus != nil {
		s.sse = sse.NewHandler(eventBus, s.logger)
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "X-Session-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	r.Use(corsHandler.Handler)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// The event stream outlives any request timeout.
		if s.sse != nil {
			r.Get("/events", s.sse.ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.requestTimeout))

			r.Route("/ai-chat", func(r chi.Router) {
				r.Post("/chat", s.handleChat)
				r.Post("/context/clear", s.handleClearContext)
				r.Get("/commands", s.handleListCommands)
			})

			r.Get("/settings/{key}", s.handleGetSetting)
			r.Put("/settings/{key}", s.handlePutSetting)
		})
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// respondError sends a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.health.Collect(r.Context())
	if s.sessionCount != nil {
		snap.Sessions = s.sessionCount()
	}
	if s.sse != nil {
		snap.SSEClients = s.sse.ClientCount()
	}
	respondJSON(w, http.StatusOK, snap)
}

// ListenAndServe starts the HTTP server and shuts it down when ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if s.sse != nil {
			_ = s.sse.Shutdown(shutdownCtx)
		}
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting API server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
