// Package assistant runs one chat turn: it loads session context, asks the
// configured LLM provider for a reply, and turns a command directive in that
// reply into a validated action for the board UI to execute.
package assistant

import (
	"context"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/core"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/provider"
)

// ChatRequest is one user turn.
type ChatRequest struct {
	Message               string         `json:"message"`
	SessionID             string         `json:"sessionId,omitempty"`
	History               []core.Message `json:"history,omitempty"`
	CurrentOrganizationID string         `json:"currentOrganizationId,omitempty"`
}

// Action is a validated command for the caller to execute.
type Action struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
}

// ChatResponse is the result of a turn. Success is false only for
// configuration, provider and transport failures; Error then holds a
// user-facing message.
type ChatResponse struct {
	Message string  `json:"message"`
	Action  *Action `json:"action,omitempty"`
	Success bool    `json:"success"`
	Error   string  `json:"error,omitempty"`
}

// ClearResult is returned by ClearContext.
type ClearResult struct {
	Success bool `json:"success"`
}

// Completer sends a conversation to an LLM provider.
type Completer interface {
	Complete(ctx context.Context, kind provider.Kind, p provider.Params) (string, error)
}

// Defaults for provider settings that are not stored.
const (
	DefaultModel  = "deepseek/deepseek-chat-v3-0324:free"
	DefaultAPIURL = "https://openrouter.ai/api/v1"
	DefaultAppURL = "http://localhost:3000"
)

// User-facing messages.
const (
	MsgAIDisabled     = "AI chat is currently disabled. Please enable it in settings."
	MsgMissingAPIKey  = "AI API key not configured. Please set it in settings."
	MsgEmptyMessage   = "I didn't catch that. What would you like to do?"
	MsgMessageTooLong = "That message is too long for me to process. Could you shorten it?"
	MsgGenericFailure = "Failed to process chat request"

	MsgProjectExact    = "✅ Great! I found the project **%s**. Taking you there now."
	MsgProjectFuzzy    = "🤔 I couldn't find an exact match, but I found something close: **%s**. Navigating there for you."
	MsgProjectNotFound = "⚠️ I couldn't find any project matching that name. Try again with a different project name, or use **list all projects** to see what's available."
)

// Config holds static assistant settings.
type Config struct {
	DefaultModel  string
	DefaultAPIURL string
	AppURL        string
	AppTitle      string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DefaultModel:  DefaultModel,
		DefaultAPIURL: DefaultAPIURL,
		AppURL:        DefaultAppURL,
		AppTitle:      "Taskosaur AI Assistant",
	}
}
