package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/tui/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start interactive chat mode",
	Long: `Start an interactive chat session with the assistant.

Type a request in plain language, for example "show me the projects in
acme" or "create a task called Fix login in website". Proposed commands are
shown under each reply.

Keys:
  enter    send the message
  ctrl+y   copy the last proposed command as JSON
  ctrl+l   clear the workspace and project context (also /clear)
  esc      quit (also /quit)

Logs are discarded unless --log-file is set, so they do not garble the screen.`,
	RunE: runChat,
}

var (
	chatSession string
	chatOrg     string
	chatLogFile string
)

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatSession, "session", "", "Session id to resume (default: a new one)")
	chatCmd.Flags().StringVar(&chatOrg, "org", "", "Organization id that scopes workspace lookups")
	chatCmd.Flags().StringVar(&chatLogFile, "log-file", "", "Append logs to this file")
}

func runChat(_ *cobra.Command, _ []string) error {
	var logOut io.Writer = io.Discard
	if chatLogFile != "" {
		f, err := os.OpenFile(chatLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	a, err := newApp(logOut)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := chatSession
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	a.logger.Info("chat started", "session_id", sessionID)

	model := chat.NewModel(a.assistant,
		chat.WithSession(sessionID),
		chat.WithOrganization(chatOrg),
		chat.WithContextSource(a.assistant.Context),
		chat.WithContext(ctx),
	)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running chat: %w", err)
	}
	return nil
}
