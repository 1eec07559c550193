package cmd

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/api"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the assistant HTTP API.

Endpoints:
  POST /api/v1/ai-chat/chat            run one chat turn
  POST /api/v1/ai-chat/context/clear   forget a session's context
  GET  /api/v1/ai-chat/commands        list the command catalog
  GET  /api/v1/settings/{key}          read an AI setting
  PUT  /api/v1/settings/{key}          change an AI setting
  GET  /api/v1/events                  server-sent chat events
  GET  /health                         process health

Edits to the heuristics denylist in the config file apply without a restart.

Examples:
  # Start with defaults (127.0.0.1:8089)
  taskosaur-ai serve

  # Listen on every interface
  taskosaur-ai serve --host 0.0.0.0 --port 9000`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"Host address to bind to (default from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0,
		"Port to listen on (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	host, port := a.cfg.Server.Host, a.cfg.Server.Port
	if cmd.Flags().Changed("host") {
		host = serveHost
	}
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.sessions.Start(ctx)

	a.loader.Watch(func(c *config.Config) {
		a.extractor.Reconfigure(c.Assistant.Heuristics)
		a.logger.Info("config reloaded",
			"file", a.loader.ConfigFile(),
			"denylist", len(c.Assistant.Heuristics.Denylist),
			"deny_prefixes", len(c.Assistant.Heuristics.DenyPrefixes),
		)
	}, func(err error) {
		a.logger.Warn("ignoring invalid config change", "error", err)
	})

	server := api.NewServer(a.assistant, a.store, a.bus,
		api.WithLogger(a.logger.Logger),
		api.WithCORSOrigins(a.cfg.Server.CORSOrigins),
		api.WithRequestTimeout(a.cfg.Server.RequestTimeoutDuration()),
		api.WithSessionCount(a.sessions.Len),
	)

	err = server.ListenAndServe(ctx, net.JoinHostPort(host, strconv.Itoa(port)))
	a.logger.Info("server stopped")
	return err
}
