package core

import "context"

// =============================================================================
// Settings Port
// =============================================================================

// Setting keys read by the assistant.
const (
	SettingAIEnabled = "ai_enabled"
	SettingAIAPIKey  = "ai_api_key"
	SettingAIModel   = "ai_model"
	SettingAIAPIURL  = "ai_api_url"
)

// SettingsStore resolves runtime settings. Get returns def when the key is
// unset or empty.
type SettingsStore interface {
	Get(ctx context.Context, key, def string) (string, error)
}

// =============================================================================
// Directory Ports
// =============================================================================

// WorkspaceDirectory looks up workspaces by slug.
type WorkspaceDirectory interface {
	// FindAllSlugs returns every workspace slug visible to the organization.
	// An empty organization ID returns the slugs of all organizations.
	FindAllSlugs(ctx context.Context, organizationID string) ([]string, error)

	// GetIDBySlug resolves a workspace slug to its ID.
	GetIDBySlug(ctx context.Context, slug string) (id string, found bool, err error)
}

// SlugStatus is the outcome of validating a project slug candidate.
type SlugStatus string

const (
	SlugExact    SlugStatus = "exact"
	SlugFuzzy    SlugStatus = "fuzzy"
	SlugNotFound SlugStatus = "not_found"
)

// SlugMatch is the result of ProjectDirectory.ValidateProjectSlug.
type SlugMatch struct {
	Status SlugStatus `json:"status"`
	Slug   string     `json:"slug"`
}

// ProjectDirectory looks up projects.
type ProjectDirectory interface {
	ValidateProjectSlug(ctx context.Context, candidate string) (SlugMatch, error)
	ListSlugsByWorkspaceID(ctx context.Context, workspaceID string) ([]string, error)
}

// =============================================================================
// Conversation
// =============================================================================

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of conversation sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
