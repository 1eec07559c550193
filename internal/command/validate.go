package command

import (
	"fmt"
	"strings"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/catalog"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/session"
)

// Result is the outcome of Validate.
type Result struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing"`
	Message string   `json:"message,omitempty"`
}

// Validate checks that name is in the catalog and that every required
// parameter is present and not blank.
func Validate(cat *catalog.Catalog, name string, params map[string]any) Result {
	spec, ok := cat.Find(name)
	if !ok {
		return Result{
			Valid:   false,
			Missing: []string{},
			Message: fmt.Sprintf("Unknown command: %s", name),
		}
	}

	missing := []string{}
	for _, p := range spec.Required() {
		if isBlank(params[p]) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return Result{
			Valid:   false,
			Missing: missing,
			Message: fmt.Sprintf("Missing required parameters for %s: %s", name, strings.Join(missing, ", ")),
		}
	}
	return Result{Valid: true, Missing: []string{}}
}

// isBlank treats nil, false, numeric zero and whitespace-only strings as
// absent. Other values are stringified; a nested object counts as present.
func isBlank(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case bool:
		return !val
	case float64:
		return val == 0
	case int:
		return val == 0
	case int64:
		return val == 0
	case map[string]any, []any:
		return false
	default:
		return strings.TrimSpace(fmt.Sprint(val)) == ""
	}
}

// FollowUp is the sentence appended to the model's reply for an invalid
// command.
func FollowUp(r Result) string {
	if len(r.Missing) > 0 {
		return fmt.Sprintf("I need the following information to proceed: %s.", strings.Join(r.Missing, ", "))
	}
	return r.Message
}

// AutoFill copies workspace and project slugs from the session context into
// params where the model left them out. It reports whether anything changed
// and is idempotent.
func AutoFill(name string, params map[string]any, ctx session.Context) bool {
	changed := false

	if name != "listWorkspaces" && name != session.CmdCreateWorkspace {
		if session.Param(params, "workspaceSlug") == "" && ctx.WorkspaceSlug != "" {
			params["workspaceSlug"] = ctx.WorkspaceSlug
			changed = true
		}
	}

	if strings.Contains(name, "Task") || strings.Contains(name, "Project") {
		if session.Param(params, "projectSlug") == "" &&
			ctx.ProjectSlug != "" &&
			ctx.WorkspaceSlug != "" &&
			session.Param(params, "workspaceSlug") == ctx.WorkspaceSlug {
			params["projectSlug"] = ctx.ProjectSlug
			changed = true
		}
	}

	return changed
}
