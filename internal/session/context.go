// Package session keeps short-lived, per-conversation board context
// (current workspace and project) in memory and evicts it when idle.
package session

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DefaultID is used when a chat request carries no session id.
const DefaultID = "default"

// ResolveID returns id, or DefaultID when id is blank.
func ResolveID(id string) string {
	if strings.TrimSpace(id) == "" {
		return DefaultID
	}
	return id
}

// Context is the conversational memory of one session.
type Context struct {
	WorkspaceSlug string    `json:"workspaceSlug,omitempty"`
	WorkspaceName string    `json:"workspaceName,omitempty"`
	ProjectSlug   string    `json:"projectSlug,omitempty"`
	ProjectName   string    `json:"projectName,omitempty"`
	ProjectSlugs  []string  `json:"currentWorkspaceProjectSlugs,omitempty"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// IsSet reports whether any workspace or project memory is present.
func (c Context) IsSet() bool {
	return c.WorkspaceSlug != "" || c.WorkspaceName != "" || c.ProjectSlug != ""
}

// Clone returns a deep copy.
func (c Context) Clone() Context {
	out := c
	if c.ProjectSlugs != nil {
		out.ProjectSlugs = make([]string, len(c.ProjectSlugs))
		copy(out.ProjectSlugs, c.ProjectSlugs)
	}
	return out
}

// ClearProject drops the project memory.
func (c *Context) ClearProject() {
	c.ProjectSlug = ""
	c.ProjectName = ""
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify lowercases s, turns whitespace runs into hyphens and strips
// anything outside [a-z0-9-].
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = whitespaceRun.ReplaceAllString(s, "-")
	return nonSlugChars.ReplaceAllString(s, "")
}

// Command names that change session context.
const (
	CmdNavigateToWorkspace = "navigateToWorkspace"
	CmdCreateWorkspace     = "createWorkspace"
	CmdEditWorkspace       = "editWorkspace"
	CmdNavigateToProject   = "navigateToProject"
	CmdCreateProject       = "createProject"
)

// ApplyCommand updates c after a validated command. projectSlugs is the fresh
// project list of the target workspace and is only used by
// navigateToWorkspace. LastUpdated is always stamped.
func ApplyCommand(c *Context, name string, params map[string]any, projectSlugs []string, now time.Time) {
	switch name {
	case CmdNavigateToWorkspace:
		if slug := Param(params, "workspaceSlug"); slug != "" {
			c.WorkspaceSlug = slug
			c.WorkspaceName = firstNonEmpty(Param(params, "workspaceName"), slug)
			c.ProjectSlugs = append([]string(nil), projectSlugs...)
			c.ClearProject()
		}

	case CmdCreateWorkspace:
		if wsName := Param(params, "name"); wsName != "" {
			c.WorkspaceSlug = Slugify(wsName)
			c.WorkspaceName = wsName
			c.ProjectSlugs = nil
			c.ClearProject()
		}

	case CmdCreateProject, CmdNavigateToProject:
		projName := Param(params, "name")
		explicit := Param(params, "projectSlug")

		var slug, label string
		if name == CmdCreateProject {
			slug = explicit
			if projName != "" {
				slug = Slugify(projName)
			}
			label = firstNonEmpty(projName, explicit)
		} else {
			slug = explicit
			if slug == "" && projName != "" {
				slug = Slugify(projName)
			}
			label = firstNonEmpty(projName, explicit)
		}
		if slug != "" {
			c.ProjectSlug = slug
			c.ProjectName = firstNonEmpty(label, slug)
		}
		if ws := Param(params, "workspaceSlug"); ws != "" {
			c.WorkspaceSlug = ws
		}

	case CmdEditWorkspace:
		slug := Param(params, "workspaceSlug")
		newName := nestedParam(params, "updates", "name")
		if slug != "" && slug == c.WorkspaceSlug && newName != "" {
			c.WorkspaceName = newName
		}
	}

	c.LastUpdated = now
}

// Param reads a parameter as a trimmed string. Non-string scalars are
// formatted; nil and missing keys yield "".
func Param(params map[string]any, key string) string {
	v, ok := params[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]any, []any:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func nestedParam(params map[string]any, outer, key string) string {
	inner, ok := params[outer].(map[string]any)
	if !ok {
		return ""
	}
	return Param(inner, key)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
