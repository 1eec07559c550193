package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/catalog"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/session"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	cat := catalog.Default()

	tests := []struct {
		name    string
		command string
		params  map[string]any
		valid   bool
		missing []string
		message string
	}{
		{
			name:    "no params needed",
			command: "listWorkspaces",
			params:  map[string]any{},
			valid:   true,
			missing: []string{},
		},
		{
			name:    "all required present",
			command: "navigateToProject",
			params:  map[string]any{"workspaceSlug": "acme", "projectSlug": "web"},
			valid:   true,
			missing: []string{},
		},
		{
			name:    "optional may be absent",
			command: "createProject",
			params:  map[string]any{"workspaceSlug": "acme", "name": "Web"},
			valid:   true,
			missing: []string{},
		},
		{
			name:    "blank and missing reported in catalog order",
			command: "createWorkspace",
			params:  map[string]any{"name": "   "},
			valid:   false,
			missing: []string{"name", "description"},
			message: "Missing required parameters for createWorkspace: name, description",
		},
		{
			name:    "null counts as missing",
			command: "navigateToWorkspace",
			params:  map[string]any{"workspaceSlug": nil},
			valid:   false,
			missing: []string{"workspaceSlug"},
			message: "Missing required parameters for navigateToWorkspace: workspaceSlug",
		},
		{
			name:    "numbers are stringified",
			command: "getTaskDetails",
			params:  map[string]any{"workspaceSlug": "acme", "projectSlug": "web", "taskId": float64(42)},
			valid:   true,
			missing: []string{},
		},
		{
			name:    "zero counts as missing",
			command: "getTaskDetails",
			params:  map[string]any{"workspaceSlug": "acme", "projectSlug": "web", "taskId": float64(0)},
			valid:   false,
			missing: []string{"taskId"},
			message: "Missing required parameters for getTaskDetails: taskId",
		},
		{
			name:    "false counts as missing",
			command: "searchWorkspaces",
			params:  map[string]any{"query": false},
			valid:   false,
			missing: []string{"query"},
			message: "Missing required parameters for searchWorkspaces: query",
		},
		{
			name:    "true counts as present",
			command: "searchWorkspaces",
			params:  map[string]any{"query": true},
			valid:   true,
			missing: []string{},
		},
		{
			name:    "nested object counts as present",
			command: "editWorkspace",
			params:  map[string]any{"workspaceSlug": "acme", "updates": map[string]any{"name": "A"}},
			valid:   true,
			missing: []string{},
		},
		{
			name:    "unknown command",
			command: "deleteEverything",
			params:  map[string]any{},
			valid:   false,
			missing: []string{},
			message: "Unknown command: deleteEverything",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(cat, tt.command, tt.params)
			assert.Equal(t, tt.valid, got.Valid)
			assert.Equal(t, tt.missing, got.Missing)
			assert.Equal(t, tt.message, got.Message)
		})
	}
}

func TestFollowUp(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"I need the following information to proceed: name, description.",
		FollowUp(Result{Missing: []string{"name", "description"}}),
	)
	assert.Equal(t,
		"Unknown command: x",
		FollowUp(Result{Missing: []string{}, Message: "Unknown command: x"}),
	)
}

func TestAutoFill(t *testing.T) {
	t.Parallel()

	full := session.Context{WorkspaceSlug: "acme", ProjectSlug: "web"}

	tests := []struct {
		name    string
		command string
		params  map[string]any
		ctx     session.Context
		want    map[string]any
		changed bool
	}{
		{
			name:    "fills workspace and project for task commands",
			command: "createTask",
			params:  map[string]any{"taskTitle": "Fix login"},
			ctx:     full,
			want:    map[string]any{"taskTitle": "Fix login", "workspaceSlug": "acme", "projectSlug": "web"},
			changed: true,
		},
		{
			name:    "workspace only for non project commands",
			command: "navigateToWorkspace",
			params:  map[string]any{},
			ctx:     full,
			want:    map[string]any{"workspaceSlug": "acme"},
			changed: true,
		},
		{
			name:    "never fills listWorkspaces",
			command: "listWorkspaces",
			params:  map[string]any{},
			ctx:     full,
			want:    map[string]any{},
		},
		{
			name:    "never fills createWorkspace",
			command: "createWorkspace",
			params:  map[string]any{"name": "X"},
			ctx:     full,
			want:    map[string]any{"name": "X"},
		},
		{
			name:    "explicit workspace is kept",
			command: "listProjects",
			params:  map[string]any{"workspaceSlug": "globex"},
			ctx:     full,
			want:    map[string]any{"workspaceSlug": "globex"},
		},
		{
			name:    "project not filled across workspaces",
			command: "navigateToProject",
			params:  map[string]any{"workspaceSlug": "globex"},
			ctx:     full,
			want:    map[string]any{"workspaceSlug": "globex"},
		},
		{
			name:    "blank workspace treated as absent",
			command: "searchTasks",
			params:  map[string]any{"workspaceSlug": " ", "query": "bug"},
			ctx:     full,
			want:    map[string]any{"workspaceSlug": "acme", "projectSlug": "web", "query": "bug"},
			changed: true,
		},
		{
			name:    "project without workspace context is not filled",
			command: "listProjects",
			params:  map[string]any{},
			ctx:     session.Context{ProjectSlug: "web"},
			want:    map[string]any{},
		},
		{
			name:    "empty context fills nothing",
			command: "createTask",
			params:  map[string]any{"taskTitle": "x"},
			ctx:     session.Context{},
			want:    map[string]any{"taskTitle": "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := AutoFill(tt.command, tt.params, tt.ctx)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, tt.params)

			again := AutoFill(tt.command, tt.params, tt.ctx)
			assert.False(t, again, "second AutoFill must be a no-op")
			assert.Equal(t, tt.want, tt.params)
		})
	}
}
