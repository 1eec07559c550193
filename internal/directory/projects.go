package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/core"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/session"
)

// MinFuzzyCoverage is the shortest/longest length ratio a fuzzy match must
// reach. It keeps one-letter inputs from matching every slug.
const MinFuzzyCoverage = 0.6

// Project is a stored project row.
type Project struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateProject inserts a project into the workspace identified by
// workspaceSlug. An empty slug is derived from name.
func (s *Store) CreateProject(ctx context.Context, workspaceSlug, name, slug string) (*Project, error) {
	if slug == "" {
		slug = session.Slugify(name)
	}
	if slug == "" {
		return nil, core.ErrValidation(CodeInvalidName, "project name must contain letters or digits")
	}

	wsID, found, err := s.GetIDBySlug(ctx, workspaceSlug)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, core.ErrNotFound("workspace", workspaceSlug)
	}

	p := &Project{
		ID:          uuid.NewString(),
		WorkspaceID: wsID,
		Slug:        slug,
		Name:        name,
		CreatedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.retryWrite(ctx, "CreateProject", func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO projects (id, workspace_id, slug, name, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, p.ID, p.WorkspaceID, p.Slug, p.Name, p.CreatedAt.Format(time.RFC3339Nano))
		return err
	})
	if isUniqueViolation(err) {
		return nil, core.ErrValidation(CodeDuplicateSlug,
			fmt.Sprintf("project %q already exists in workspace %q", slug, workspaceSlug))
	}
	if err != nil {
		return nil, fmt.Errorf("inserting project: %w", err)
	}
	return p, nil
}

// ListProjects returns the projects of a workspace ordered by slug.
func (s *Store) ListProjects(ctx context.Context, workspaceSlug string) ([]Project, error) {
	wsID, found, err := s.GetIDBySlug(ctx, workspaceSlug)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, core.ErrNotFound("workspace", workspaceSlug)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.readDB.QueryContext(ctx, `
		SELECT id, workspace_id, slug, name, created_at
		FROM projects WHERE workspace_id = ? ORDER BY slug
	`, wsID)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var p Project
		var createdAt string
		if err := rows.Scan(&p.ID, &p.WorkspaceID, &p.Slug, &p.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListSlugsByWorkspaceID returns the project slugs of a workspace. An
// unknown or empty id yields an empty list.
func (s *Store) ListSlugsByWorkspaceID(ctx context.Context, workspaceID string) ([]string, error) {
	if workspaceID == "" {
		return []string{}, nil
	}
	return s.querySlugs(ctx, "SELECT slug FROM projects WHERE workspace_id = ? ORDER BY slug", workspaceID)
}

// ValidateProjectSlug resolves a model-supplied project reference against
// every stored project slug.
func (s *Store) ValidateProjectSlug(ctx context.Context, candidate string) (core.SlugMatch, error) {
	want := session.Slugify(candidate)
	if want == "" {
		return core.SlugMatch{Status: core.SlugNotFound}, nil
	}

	slugs, err := s.querySlugs(ctx, "SELECT DISTINCT slug FROM projects ORDER BY slug")
	if err != nil {
		return core.SlugMatch{}, err
	}
	return MatchSlug(want, slugs), nil
}

func (s *Store) querySlugs(ctx context.Context, query string, args ...any) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.readDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying project slugs: %w", err)
	}
	defer rows.Close()

	slugs := []string{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scanning project slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// MatchSlug classifies want against slugs: exact when present verbatim,
// fuzzy when one is a subsequence of the other with enough length
// coverage, otherwise not_found.
func MatchSlug(want string, slugs []string) core.SlugMatch {
	for _, slug := range slugs {
		if slug == want {
			return core.SlugMatch{Status: core.SlugExact, Slug: slug}
		}
	}

	best := ""
	bestCoverage := 0.0
	consider := func(slug string) {
		if c := coverage(want, slug); c >= MinFuzzyCoverage && c > bestCoverage {
			best, bestCoverage = slug, c
		}
	}

	// Abbreviations and missing letters: want is a subsequence of a slug.
	for _, m := range fuzzy.Find(want, slugs) {
		consider(m.Str)
	}
	// Extra letters: a slug is a subsequence of want.
	for _, slug := range slugs {
		if len(fuzzy.Find(slug, []string{want})) > 0 {
			consider(slug)
		}
	}

	if best == "" {
		return core.SlugMatch{Status: core.SlugNotFound}
	}
	return core.SlugMatch{Status: core.SlugFuzzy, Slug: best}
}

func coverage(a, b string) float64 {
	short, long := len(a), len(b)
	if short > long {
		short, long = long, short
	}
	if long == 0 {
		return 0
	}
	return float64(short) / float64(long)
}
