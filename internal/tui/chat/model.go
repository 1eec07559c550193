// Package chat is the interactive terminal front end of the assistant.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/assistant"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/clip"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/core"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/session"
)

// maxHistory bounds the prior turns sent with each request.
const maxHistory = 20

// Assistant is the part of the orchestrator the TUI drives.
type Assistant interface {
	Chat(ctx context.Context, req assistant.ChatRequest) assistant.ChatResponse
	ClearContext(sessionID string) assistant.ClearResult
}

// ContextSource reports the current session context for the header.
type ContextSource func(sessionID string) (session.Context, bool)

type role int

const (
	roleUser role = iota
	roleAssistant
	roleError
	roleNote
)

type entry struct {
	role   role
	text   string
	action *assistant.Action
}

type responseMsg struct {
	resp assistant.ChatResponse
}

type copiedMsg struct {
	result clip.Result
	err    error
}

type clearedMsg struct{}

// Model is the bubbletea model of the chat screen.
type Model struct {
	ctx       context.Context
	assistant Assistant
	contextOf ContextSource
	copy      func(string) (clip.Result, error)
	sessionID string
	orgID     string

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	entries    []entry
	history    []core.Message
	lastAction *assistant.Action
	busy       bool
	status     string

	width  int
	height int
	ready  bool
}

// Option configures a Model.
type Option func(*Model)

// WithSession sets the chat session id.
func WithSession(id string) Option {
	return func(m *Model) { m.sessionID = id }
}

// WithOrganization scopes workspace listings to one organization.
func WithOrganization(id string) Option {
	return func(m *Model) { m.orgID = id }
}

// WithContextSource shows the session context in the header.
func WithContextSource(fn ContextSource) Option {
	return func(m *Model) { m.contextOf = fn }
}

// WithContext sets the context turns run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// NewModel creates the chat screen.
func NewModel(a Assistant, opts ...Option) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask the assistant… (enter to send, /clear to reset context)"
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.CharLimit = core.MaxMessageLength
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))

	m := Model{
		ctx:       context.Background(),
		assistant: a,
		copy:      clip.WriteAll,
		sessionID: session.DefaultID,
		textarea:  ta,
		spinner:   sp,
		renderer:  newMarkdownRenderer(80),
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case responseMsg:
		m.busy = false
		m.handleResponse(msg.resp)
		m.refresh()
		return m, nil

	case copiedMsg:
		m.status = describeCopy(msg.result, msg.err)
		return m, nil

	case clearedMsg:
		m.busy = false
		m.history = nil
		m.lastAction = nil
		m.entries = append(m.entries, entry{role: roleNote, text: "Context cleared."})
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "ctrl+y":
		if m.lastAction == nil {
			m.status = "No action to copy yet."
			return m, nil
		}
		return m, m.copyAction(*m.lastAction)

	case "ctrl+l":
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.clear()

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "enter":
		if m.busy {
			return m, nil
		}
		text := strings.TrimSpace(m.textarea.Value())
		m.textarea.Reset()
		switch text {
		case "":
			return m, nil
		case "/quit", "/exit":
			return m, tea.Quit
		case "/clear":
			m.busy = true
			return m, m.clear()
		}

		m.entries = append(m.entries, entry{role: roleUser, text: text})
		m.busy = true
		m.status = ""
		m.refresh()
		return m, tea.Batch(m.spinner.Tick, m.ask(text))
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *Model) handleResponse(resp assistant.ChatResponse) {
	if !resp.Success {
		m.entries = append(m.entries, entry{role: roleError, text: resp.Error})
		return
	}

	// The user turn is already the last entry.
	user := m.entries[len(m.entries)-1].text
	m.history = append(m.history,
		core.Message{Role: core.RoleUser, Content: user},
		core.Message{Role: core.RoleAssistant, Content: resp.Message},
	)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}

	m.entries = append(m.entries, entry{role: roleAssistant, text: resp.Message, action: resp.Action})
	if resp.Action != nil {
		m.lastAction = resp.Action
	}
}

func (m Model) ask(text string) tea.Cmd {
	req := assistant.ChatRequest{
		Message:               text,
		SessionID:             m.sessionID,
		History:               append([]core.Message(nil), m.history...),
		CurrentOrganizationID: m.orgID,
	}
	ctx, a := m.ctx, m.assistant
	return func() tea.Msg {
		return responseMsg{resp: a.Chat(ctx, req)}
	}
}

func (m Model) clear() tea.Cmd {
	id, a := m.sessionID, m.assistant
	return func() tea.Msg {
		a.ClearContext(id)
		return clearedMsg{}
	}
}

func (m Model) copyAction(action assistant.Action) tea.Cmd {
	copyFn := m.copy
	return func() tea.Msg {
		data, err := json.MarshalIndent(action, "", "  ")
		if err != nil {
			return copiedMsg{err: err}
		}
		res, err := copyFn(string(data))
		return copiedMsg{result: res, err: err}
	}
}

func describeCopy(res clip.Result, err error) string {
	if err != nil {
		return "Copy failed: " + err.Error()
	}
	switch res.Method {
	case clip.MethodFile:
		return "Clipboard unavailable, action saved to " + res.FilePath
	case clip.MethodOSC52:
		return "Action copied via terminal clipboard."
	default:
		return "Action copied to clipboard."
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.textarea.SetWidth(width - 2)

	vpHeight := height - m.textarea.Height() - 6
	if vpHeight < 3 {
		vpHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.renderer = newMarkdownRenderer(width - 4)
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m Model) renderHistory() string {
	var sb strings.Builder
	for _, e := range m.entries {
		switch e.role {
		case roleUser:
			sb.WriteString(userLabelStyle.Render("You") + "\n")
			sb.WriteString(userTextStyle.Render(e.text) + "\n\n")
		case roleAssistant:
			sb.WriteString(botLabelStyle.Render("Assistant") + "\n")
			sb.WriteString(m.markdown(e.text) + "\n")
			if e.action != nil {
				sb.WriteString(actionStyle.Render(formatAction(*e.action)) + "\n")
			}
			sb.WriteString("\n")
		case roleError:
			sb.WriteString(errorStyle.Render("✗ "+e.text) + "\n\n")
		case roleNote:
			sb.WriteString(statusStyle.Render("· "+e.text) + "\n\n")
		}
	}
	return sb.String()
}

func (m Model) markdown(md string) string {
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func formatAction(a assistant.Action) string {
	params, err := json.Marshal(a.Parameters)
	if err != nil {
		params = []byte("{}")
	}
	return fmt.Sprintf("⚡ %s %s", a.Name, params)
}

func (m Model) header() string {
	title := headerStyle.Render("Taskosaur AI")
	if m.contextOf == nil {
		return title
	}
	c, ok := m.contextOf(m.sessionID)
	if !ok || !c.IsSet() {
		return title + statusStyle.Render("no workspace selected")
	}
	parts := []string{"workspace: " + c.WorkspaceSlug}
	if c.ProjectSlug != "" {
		parts = append(parts, "project: "+c.ProjectSlug)
	}
	return title + contextStyle.Render(strings.Join(parts, " · "))
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Starting…"
	}

	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + statusStyle.Render(" thinking…")
	} else if strings.HasPrefix(m.status, "Copy failed") {
		status = warnStyle.Render(m.status)
	}

	help := statusStyle.Render("enter send · ctrl+y copy action · ctrl+l clear context · esc quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		m.viewport.View(),
		status,
		inputBorderStyle.Render(m.textarea.View()),
		help,
	)
}
