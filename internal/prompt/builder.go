// Package prompt renders the system prompt that teaches the model the
// command catalog, the slug rules and the current session context.
package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/catalog"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/session"
)

//go:embed templates/system.md.tmpl
var templatesFS embed.FS

// DefaultAssistantName is how the model is told to introduce itself.
const DefaultAssistantName = "Taskosaur AI Assistant"

// Builder renders system prompts for one catalog. It holds no per-request
// state and is safe for concurrent use.
type Builder struct {
	tmpl          *template.Template
	catalog       *catalog.Catalog
	assistantName string
}

// NewBuilder parses the embedded template. An empty name uses
// DefaultAssistantName.
func NewBuilder(cat *catalog.Catalog, assistantName string) (*Builder, error) {
	content, err := templatesFS.ReadFile("templates/system.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("reading system prompt template: %w", err)
	}

	tmpl, err := template.New("system").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing system prompt template: %w", err)
	}

	if assistantName == "" {
		assistantName = DefaultAssistantName
	}
	return &Builder{tmpl: tmpl, catalog: cat, assistantName: assistantName}, nil
}

type commandLine struct {
	Name        string
	Description string
	Skeleton    string
}

type templateData struct {
	AssistantName  string
	Commands       []commandLine
	WorkspaceSlugs []string
	Context        session.Context
	HasContext     bool
}

// Build renders the prompt for the given session context and the workspace
// slugs visible to the caller's organization.
func (b *Builder) Build(ctx session.Context, workspaceSlugs []string) (string, error) {
	data := templateData{
		AssistantName:  b.assistantName,
		WorkspaceSlugs: workspaceSlugs,
		Context:        ctx,
		HasContext:     ctx.IsSet(),
	}
	for _, spec := range b.catalog.Commands() {
		data.Commands = append(data.Commands, commandLine{
			Name:        spec.Name,
			Description: Describe(spec),
			Skeleton:    Skeleton(spec),
		})
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering system prompt: %w", err)
	}
	return buf.String(), nil
}

// Describe summarizes a command's parameters, e.g.
// "needs workspaceSlug, name, optional: description".
func Describe(spec catalog.CommandSpec) string {
	required := spec.Required()
	optional := spec.Optional()

	var parts []string
	if len(required) > 0 {
		parts = append(parts, "needs "+strings.Join(required, ", "))
	}
	if len(optional) > 0 {
		parts = append(parts, "optional: "+strings.Join(optional, ", "))
	}
	if len(parts) == 0 {
		return "no parameters"
	}
	return strings.Join(parts, ", ")
}

// Skeleton renders the example parameter object in catalog order. Slug
// parameters get the placeholder "slug", everything else "value".
func Skeleton(spec catalog.CommandSpec) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, name := range spec.CleanParams() {
		if i > 0 {
			sb.WriteByte(',')
		}
		key, _ := json.Marshal(name)
		sb.Write(key)
		if strings.Contains(name, "Slug") {
			sb.WriteString(`:"slug"`)
		} else {
			sb.WriteString(`:"value"`)
		}
	}
	sb.WriteByte('}')
	return sb.String()
}
