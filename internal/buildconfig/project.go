package buildconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyEntry indicates an entry without a name or without modules
	ErrEmptyEntry = errors.New("entry must have a name and at least one module")
	// ErrDuplicateEntry indicates two entries share a name
	ErrDuplicateEntry = errors.New("duplicate entry name")
	// ErrInvalidAlias indicates an alias without a key or target path
	ErrInvalidAlias = errors.New("alias must have a key and a path")
)

// Entry is a named bundle traced from Modules, in order.
type Entry struct {
	Name    string   `yaml:"name"`
	Modules []string `yaml:"modules"`
}

// Alias maps an import prefix to a directory.
type Alias struct {
	Key  string `yaml:"key"`
	Path string `yaml:"path"`
}

// Project describes the on disk layout of a front-end project. Relative paths
// are resolved against Root, except Template and entry modules which are
// relative to Source.
type Project struct {
	Root       string        `yaml:"-"`
	Source     string        `yaml:"source"`
	Output     string        `yaml:"output"`
	Template   string        `yaml:"template"`
	Title      string        `yaml:"title"`
	Entries    []Entry       `yaml:"entries"`
	Aliases    []Alias       `yaml:"aliases"`
	Extensions []string      `yaml:"extensions"`
	Copy       []CopyPattern `yaml:"copy"`
	Port       int           `yaml:"port"`
	Compress   bool          `yaml:"compress"`
}

// DefaultProject returns the standard layout rooted at root.
func DefaultProject(root string) Project {
	return Project{
		Root:     root,
		Source:   "src",
		Output:   "dist",
		Template: "index.html",
		Entries: []Entry{
			{Name: "main", Modules: []string{"@babel/polyfill", "./index.jsx"}},
			{Name: "analytics", Modules: []string{"./analytics.js"}},
		},
		Aliases: []Alias{
			{Key: "@models", Path: "src/models"},
			{Key: "@", Path: "src"},
		},
		Extensions: []string{".js", ".png", ".json"},
		Copy: []CopyPattern{
			{From: "src/icon.png", To: "dist"},
		},
		Port: 4200,
	}
}

// LoadProject reads a YAML project file over the defaults. The file's
// directory becomes the project root.
func LoadProject(path string) (Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Project{}, fmt.Errorf("failed to read project file: %w", err)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Project{}, err
	}

	p := DefaultProject(root)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Project{}, fmt.Errorf("failed to parse project file %s: %w", path, err)
	}
	p.Root = root

	return p, p.Validate()
}

// Validate checks the invariants the build relies on.
func (p Project) Validate() error {
	seen := make(map[string]bool, len(p.Entries))
	for _, e := range p.Entries {
		if e.Name == "" || len(e.Modules) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyEntry, e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateEntry, e.Name)
		}
		seen[e.Name] = true
	}

	for _, a := range p.Aliases {
		if a.Key == "" || a.Path == "" {
			return fmt.Errorf("%w: %q", ErrInvalidAlias, a.Key)
		}
	}

	return nil
}

// Abs resolves path against the project root.
func (p Project) Abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.Root, path)
}

// SourcePath resolves path against the source root.
func (p Project) SourcePath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.Abs(p.Source), path)
}

// CopyPatterns returns the copy rules with absolute paths.
func (p Project) CopyPatterns() []CopyPattern {
	patterns := make([]CopyPattern, 0, len(p.Copy))
	for _, c := range p.Copy {
		patterns = append(patterns, CopyPattern{From: p.Abs(c.From), To: p.Abs(c.To)})
	}
	return patterns
}
