package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/assistant"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/tui/chat"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Run a single chat turn",
	Long: `Send one message to the assistant and print its reply and proposed command.

Session context lives in memory, so each invocation starts without a
workspace or project selected.

Examples:
  taskosaur-ai ask "list my workspaces"
  taskosaur-ai ask --json "create a project called Mobile App in acme"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var (
	askSession string
	askOrg     string
	askJSON    bool
)

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askSession, "session", "", "Session id (default: the shared default session)")
	askCmd.Flags().StringVar(&askOrg, "org", "", "Organization id that scopes workspace lookups")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the raw response as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resp := a.assistant.Chat(ctx, assistant.ChatRequest{
		Message:               strings.Join(args, " "),
		SessionID:             askSession,
		CurrentOrganizationID: askOrg,
	})

	out := cmd.OutOrStdout()
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	} else if resp.Success {
		fmt.Fprintln(out, chat.RenderMarkdown(resp.Message, terminalWidth()))
		if resp.Action != nil {
			data, err := json.MarshalIndent(resp.Action, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nAction:\n%s\n", data)
		}
	}

	if !resp.Success {
		return errors.New(resp.Error)
	}
	return nil
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}
