// Package heuristics guesses workspace and project names from free-form user
// text so the session context can follow the conversation before any command
// runs. Guesses are best-effort; explicit command parameters always win.
package heuristics

import (
	"regexp"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/session"
)

// Pattern captures a candidate name in group 1.
type Pattern struct {
	Name string
	Re   *regexp.Regexp
}

// WorkspacePatterns are tried in order.
var WorkspacePatterns = []Pattern{
	{"verb workspace name", regexp.MustCompile(`(?i)\b(?:go\s+with|use|with|navigate\s+to|go\s+to|switch\s+to|open)\s+(?:the\s+)?workspace\s+["']?([^"'.,!?\n]+)`)},
	{"workspace is name", regexp.MustCompile(`(?i)\bworkspace\s+is\s+["']?([^"'.,!?\n]+)`)},
	{"in name workspace", regexp.MustCompile(`(?i)\b(?:use|in|into|to|open)\s+(?:the\s+)?["']?([^"'.,!?\n]+?)["']?\s+w[uo]rkspace\b`)},
	{"quoted name workspace", regexp.MustCompile(`(?i)["']([^"']+)["']\s+w[uo]rkspace\b`)},
	{"name workspace", regexp.MustCompile(`(?i)(?:\bthe\s+)?["']?([a-z][^"'.,!?\n]*?)["']?\s+w[uo]rkspace\b`)},
	{"take me to name", regexp.MustCompile(`(?i)\b(?:take\s+me\s+to|navigate\s+to|go\s+to)\s+(?:the\s+)?["']?([^"'.,!?\n]+?)["']?(?:\s+workspace)?\s*$`)},
}

// ProjectPatterns are tried in order.
var ProjectPatterns = []Pattern{
	{"go to project name", regexp.MustCompile(`(?i)\b(?:take\s+me\s+to|navigate\s+to|go\s+to|switch\s+to|open)\s+(?:the\s+)?project\s+["']?([^"'.,!?\n]+)`)},
	{"verb name project", regexp.MustCompile(`(?i)\b(?:go\s+with|use|with|navigate\s+to|go\s+to|switch\s+to|open)\s+(?:the\s+)?["']?([^"'.,!?\n]+?)["']?\s+project\b`)},
	{"choose name", regexp.MustCompile(`(?i)\b(?:choose|select|pick)\s+["']?([^"'.,!?\n]+)`)},
	{"project is name", regexp.MustCompile(`(?i)\bproject\s+is\s+["']?([^"'.,!?\n]+)`)},
	{"in name project", regexp.MustCompile(`(?i)\bin\s+(?:the\s+)?["']?([^"'.,!?\n]+?)["']?\s+project\b`)},
	{"name project", regexp.MustCompile(`(?i)["']?([^"'.,!?\n\s]+)["']?\s+project\b`)},
}

// DefaultDenylist holds filler words and phrases that are never names.
// Entries match whole words.
var DefaultDenylist = []string{
	"yes", "no", "ok", "okay", "fine", "good", "sure", "right", "correct",
	"thanks", "thank you", "please", "help",
	"the", "a", "an", "and", "or", "but", "with", "without",
	"list", "show", "all", "my", "create", "new", "dashboard",
	"rename", "edit", "delete", "remove", "change", "switch",
	"choose", "select", "pick", "which", "this", "that", "current",
}

// DefaultDenyPrefixes reject candidates that start like a request.
var DefaultDenyPrefixes = []string{"i want to", "can you"}

// Config tunes the candidate filters. Empty slices select the defaults.
type Config struct {
	Denylist     []string `mapstructure:"denylist" yaml:"denylist"`
	DenyPrefixes []string `mapstructure:"deny_prefixes" yaml:"deny_prefixes"`
}

type rules struct {
	deny     []*regexp.Regexp
	prefixes []string
}

// Extractor applies the pattern lists to user messages. The filter rules can
// be swapped at runtime with Reconfigure.
type Extractor struct {
	rules atomic.Pointer[rules]
}

// NewExtractor builds an extractor with cfg's filters.
func NewExtractor(cfg Config) *Extractor {
	e := &Extractor{}
	e.Reconfigure(cfg)
	return e
}

// Reconfigure replaces the filter rules. Safe to call while messages are
// being processed.
func (e *Extractor) Reconfigure(cfg Config) {
	words := cfg.Denylist
	if len(words) == 0 {
		words = DefaultDenylist
	}
	prefixes := cfg.DenyPrefixes
	if len(prefixes) == 0 {
		prefixes = DefaultDenyPrefixes
	}

	r := &rules{prefixes: make([]string, 0, len(prefixes))}
	for _, w := range words {
		w = strings.TrimSpace(strings.ToLower(w))
		if w == "" {
			continue
		}
		r.deny = append(r.deny, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)+`\b`))
	}
	for _, p := range prefixes {
		if p = strings.TrimSpace(strings.ToLower(p)); p != "" {
			r.prefixes = append(r.prefixes, p)
		}
	}
	e.rules.Store(r)
}

// ExtractAndUpdate scans message and writes any workspace or project it
// recognizes into c. A workspace slug is adopted only when it is one of
// known; an unknown workspace is recorded by name and the slug is cleared.
// It reports whether c changed. LastUpdated is left to the caller.
func (e *Extractor) ExtractAndUpdate(message string, known []string, c *session.Context) bool {
	r := e.rules.Load()
	lower := strings.ToLower(message)
	changed := false

	if name, ok := firstCandidate(WorkspacePatterns, message, func(cand string) bool {
		return r.usable(cand) && !strings.Contains(strings.ToLower(cand), "project")
	}); ok {
		slug := session.Slugify(name)
		if !slices.Contains(known, slug) {
			slug = ""
		}
		if slug == "" || slug != c.WorkspaceSlug {
			c.ProjectSlugs = nil
		}
		c.WorkspaceName = name
		c.WorkspaceSlug = slug
		if !strings.Contains(lower, "project") {
			c.ClearProject()
		}
		changed = true
	}

	if name, ok := firstCandidate(ProjectPatterns, message, func(cand string) bool {
		l := strings.ToLower(cand)
		if strings.Contains(l, "workspace") || strings.Contains(l, "wokspace") {
			return false
		}
		return r.usable(cand)
	}); ok {
		c.ProjectName = name
		c.ProjectSlug = session.Slugify(name)
		changed = true
	}

	return changed
}

func (r *rules) usable(candidate string) bool {
	l := strings.ToLower(candidate)
	for _, p := range r.prefixes {
		if strings.HasPrefix(l, p) {
			return false
		}
	}
	for _, re := range r.deny {
		if re.MatchString(l) {
			return false
		}
	}
	return session.Slugify(candidate) != ""
}

// firstCandidate returns the first match, in pattern order then position
// order, that accept allows.
func firstCandidate(patterns []Pattern, message string, accept func(string) bool) (string, bool) {
	for _, p := range patterns {
		for _, m := range p.Re.FindAllStringSubmatch(message, -1) {
			if len(m) < 2 {
				continue
			}
			cand := strings.Trim(strings.TrimSpace(m[1]), `"'`)
			cand = strings.TrimSpace(cand)
			if cand != "" && accept(cand) {
				return cand, true
			}
		}
	}
	return "", false
}
