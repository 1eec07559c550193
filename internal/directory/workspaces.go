package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/core"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/session"
)

// Validation error codes.
const (
	CodeDuplicateSlug = "DUPLICATE_SLUG"
	CodeInvalidName   = "INVALID_NAME"
)

// Workspace is a stored workspace row.
type Workspace struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId,omitempty"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CreateWorkspace inserts a workspace. An empty slug is derived from name.
func (s *Store) CreateWorkspace(ctx context.Context, orgID, name, slug string) (*Workspace, error) {
	if slug == "" {
		slug = session.Slugify(name)
	}
	if slug == "" {
		return nil, core.ErrValidation(CodeInvalidName, "workspace name must contain letters or digits")
	}

	ws := &Workspace{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Slug:           slug,
		Name:           name,
		CreatedAt:      s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.retryWrite(ctx, "CreateWorkspace", func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO workspaces (id, organization_id, slug, name, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, ws.ID, ws.OrganizationID, ws.Slug, ws.Name, ws.CreatedAt.Format(time.RFC3339Nano))
		return err
	})
	if isUniqueViolation(err) {
		return nil, core.ErrValidation(CodeDuplicateSlug, fmt.Sprintf("workspace %q already exists", slug))
	}
	if err != nil {
		return nil, fmt.Errorf("inserting workspace: %w", err)
	}
	return ws, nil
}

// ListWorkspaces returns workspaces ordered by slug. An empty orgID lists
// every workspace.
func (s *Store) ListWorkspaces(ctx context.Context, orgID string) ([]Workspace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, organization_id, slug, name, created_at FROM workspaces"
	var args []any
	if orgID != "" {
		query += " WHERE organization_id = ?"
		args = append(args, orgID)
	}
	query += " ORDER BY slug"

	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workspaces: %w", err)
	}
	defer rows.Close()

	var out []Workspace
	for rows.Next() {
		var ws Workspace
		var createdAt string
		if err := rows.Scan(&ws.ID, &ws.OrganizationID, &ws.Slug, &ws.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning workspace: %w", err)
		}
		ws.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, ws)
	}
	return out, rows.Err()
}

// FindAllSlugs returns the workspace slugs of an organization, or of every
// organization when orgID is empty.
func (s *Store) FindAllSlugs(ctx context.Context, orgID string) ([]string, error) {
	workspaces, err := s.ListWorkspaces(ctx, orgID)
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(workspaces))
	for _, ws := range workspaces {
		slugs = append(slugs, ws.Slug)
	}
	return slugs, nil
}

// GetIDBySlug resolves a workspace slug to its id.
func (s *Store) GetIDBySlug(ctx context.Context, slug string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id string
	err := s.readDB.QueryRowContext(ctx, "SELECT id FROM workspaces WHERE slug = ?", slug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up workspace %s: %w", slug, err)
	}
	return id, true, nil
}
