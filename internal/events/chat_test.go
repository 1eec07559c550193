package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatEvents_WireShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		event    Event
		wantType string
		wantKeys []string
	}{
		{
			name:     "command proposed",
			event:    NewChatCommandProposedEvent("s1", "createTask", map[string]any{"taskTitle": "Fix"}),
			wantType: TypeChatCommandProposed,
			wantKeys: []string{"command", "parameters"},
		},
		{
			name:     "context updated",
			event:    NewChatContextUpdatedEvent("s1", SourceHeuristic, "acme", "Acme", "", ""),
			wantType: TypeChatContextUpdated,
			wantKeys: []string{"workspace_slug", "workspace_name", "source"},
		},
		{
			name:     "context cleared",
			event:    NewChatContextClearedEvent("s1"),
			wantType: TypeChatContextCleared,
		},
		{
			name:     "turn failed",
			event:    NewChatTurnFailedEvent("s1", "AI chat is currently disabled."),
			wantType: TypeChatTurnFailed,
			wantKeys: []string{"error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantType, tt.event.EventType())
			assert.Equal(t, "s1", tt.event.SessionID())
			assert.False(t, tt.event.Timestamp().IsZero())

			data, err := json.Marshal(tt.event)
			require.NoError(t, err)
			var fields map[string]any
			require.NoError(t, json.Unmarshal(data, &fields))

			assert.Equal(t, tt.wantType, fields["type"])
			assert.Equal(t, "s1", fields["session_id"])
			for _, k := range tt.wantKeys {
				assert.Contains(t, fields, k)
			}
		})
	}
}

func TestChatContextUpdated_OmitsEmptyProject(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(NewChatContextUpdatedEvent("s1", SourceCommand, "acme", "", "", ""))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "project_slug")
	assert.Contains(t, string(data), `"source":"command"`)
}
