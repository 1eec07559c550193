// Package catalog holds the registry of board commands the assistant is
// allowed to emit, with their required and optional parameters.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/core"
	"github.com/hugo-lorenzo-mato/taskosaur-ai/internal/fsutil"
)

//go:embed commands.yaml
var defaultCommands []byte

// OptionalMarker is the suffix that marks a parameter as optional.
const OptionalMarker = "?"

// CommandSpec describes one command and its ordered parameters.
type CommandSpec struct {
	Name   string   `yaml:"name" json:"name"`
	Params []string `yaml:"params" json:"params"`
}

// Required returns the parameters without the optional marker.
func (c CommandSpec) Required() []string {
	out := make([]string, 0, len(c.Params))
	for _, p := range c.Params {
		if !strings.HasSuffix(p, OptionalMarker) {
			out = append(out, p)
		}
	}
	return out
}

// Optional returns the optional parameters with the marker stripped.
func (c CommandSpec) Optional() []string {
	var out []string
	for _, p := range c.Params {
		if strings.HasSuffix(p, OptionalMarker) {
			out = append(out, strings.TrimSuffix(p, OptionalMarker))
		}
	}
	return out
}

// CleanParams returns every parameter name in declaration order, marker stripped.
func (c CommandSpec) CleanParams() []string {
	out := make([]string, len(c.Params))
	for i, p := range c.Params {
		out[i] = strings.TrimSuffix(p, OptionalMarker)
	}
	return out
}

// Catalog is an immutable, ordered set of commands. Safe for concurrent use.
type Catalog struct {
	commands []CommandSpec
	byName   map[string]int
}

type catalogFile struct {
	Commands []CommandSpec `yaml:"commands"`
}

// Default returns the embedded command catalog.
func Default() *Catalog {
	c, err := Parse(defaultCommands)
	if err != nil {
		panic(fmt.Sprintf("embedded command catalog is invalid: %v", err))
	}
	return c
}

// maxCatalogBytes bounds a custom catalog file.
const maxCatalogBytes = 1 << 20

// Load reads a catalog from a YAML file. An empty path yields the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := fsutil.ReadFileScoped(path, maxCatalogBytes)
	if err != nil {
		return nil, fmt.Errorf("reading command catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML content.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, core.ErrValidation(core.CodeInvalidCatalog, "command catalog is not valid YAML").WithCause(err)
	}
	return New(f.Commands)
}

// New builds a catalog from specs. Names must be non-empty and unique.
func New(specs []CommandSpec) (*Catalog, error) {
	c := &Catalog{
		commands: make([]CommandSpec, 0, len(specs)),
		byName:   make(map[string]int, len(specs)),
	}
	for _, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, core.ErrValidation(core.CodeInvalidCatalog, "command with empty name")
		}
		if _, dup := c.byName[name]; dup {
			return nil, core.ErrValidation(core.CodeDuplicateCommand, fmt.Sprintf("duplicate command %q", name))
		}
		params := make([]string, len(spec.Params))
		copy(params, spec.Params)
		c.byName[name] = len(c.commands)
		c.commands = append(c.commands, CommandSpec{Name: name, Params: params})
	}
	return c, nil
}

// Find looks up a command by exact name.
func (c *Catalog) Find(name string) (CommandSpec, bool) {
	i, ok := c.byName[name]
	if !ok {
		return CommandSpec{}, false
	}
	return c.commands[i], true
}

// Commands returns a copy of the commands in declaration order.
func (c *Catalog) Commands() []CommandSpec {
	out := make([]CommandSpec, len(c.commands))
	copy(out, c.commands)
	return out
}

// Len returns the number of commands.
func (c *Catalog) Len() int {
	return len(c.commands)
}
