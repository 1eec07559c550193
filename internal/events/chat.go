package events

// Assistant event types.
const (
	TypeChatCommandProposed = "chat_command_proposed"
	TypeChatContextUpdated  = "chat_context_updated"
	TypeChatContextCleared  = "chat_context_cleared"
	TypeChatTurnFailed      = "chat_turn_failed"
)

// ChatCommandProposedEvent is emitted when a turn returns an action.
type ChatCommandProposedEvent struct {
	BaseEvent
	Command    string         `json:"command"`
	Parameters map[string]any `json:"parameters"`
}

// NewChatCommandProposedEvent creates a command proposal event.
func NewChatCommandProposedEvent(sessionID, command string, params map[string]any) ChatCommandProposedEvent {
	return ChatCommandProposedEvent{
		BaseEvent:  NewBaseEvent(TypeChatCommandProposed, sessionID),
		Command:    command,
		Parameters: params,
	}
}

// ChatContextUpdatedEvent carries the session context after a change.
type ChatContextUpdatedEvent struct {
	BaseEvent
	WorkspaceSlug string `json:"workspace_slug,omitempty"`
	WorkspaceName string `json:"workspace_name,omitempty"`
	ProjectSlug   string `json:"project_slug,omitempty"`
	ProjectName   string `json:"project_name,omitempty"`
	Source        string `json:"source"`
}

// Context update sources.
const (
	SourceHeuristic = "heuristic"
	SourceCommand   = "command"
)

// NewChatContextUpdatedEvent creates a context update event.
func NewChatContextUpdatedEvent(sessionID, source, workspaceSlug, workspaceName, projectSlug, projectName string) ChatContextUpdatedEvent {
	return ChatContextUpdatedEvent{
		BaseEvent:     NewBaseEvent(TypeChatContextUpdated, sessionID),
		WorkspaceSlug: workspaceSlug,
		WorkspaceName: workspaceName,
		ProjectSlug:   projectSlug,
		ProjectName:   projectName,
		Source:        source,
	}
}

// ChatContextClearedEvent is emitted when a session context is dropped.
type ChatContextClearedEvent struct {
	BaseEvent
}

// NewChatContextClearedEvent creates a context cleared event.
func NewChatContextClearedEvent(sessionID string) ChatContextClearedEvent {
	return ChatContextClearedEvent{BaseEvent: NewBaseEvent(TypeChatContextCleared, sessionID)}
}

// ChatTurnFailedEvent is emitted when a turn ends with success=false.
type ChatTurnFailedEvent struct {
	BaseEvent
	Error string `json:"error"`
}

// NewChatTurnFailedEvent creates a failed turn event.
func NewChatTurnFailedEvent(sessionID, errMsg string) ChatTurnFailedEvent {
	return ChatTurnFailedEvent{
		BaseEvent: NewBaseEvent(TypeChatTurnFailed, sessionID),
		Error:     errMsg,
	}
}
