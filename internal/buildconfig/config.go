// Package buildconfig assembles the immutable build configuration for a
// front-end project. Everything here is a pure function of the mode and the
// project layout; executing the configuration is left to the assets package.
package buildconfig

import (
	"fmt"
	"slices"
)

type Output struct {
	// Path is the absolute output directory.
	Path     string           `yaml:"path"`
	Filename FilenameTemplate `yaml:"filename"`
}

// Resolve holds module resolution rules. Aliases are a closed, ordered set
// consulted before default resolution; Extensions are tried in order when an
// import omits one.
type Resolve struct {
	Extensions []string `yaml:"extensions"`
	Aliases    []Alias  `yaml:"aliases"`
}

type DevServer struct {
	Port int  `yaml:"port"`
	Hot  bool `yaml:"hot"`
}

// Config is the build configuration record for one invocation.
type Config struct {
	// Context is the absolute source root; entry modules resolve against it.
	Context      string       `yaml:"context"`
	Mode         Mode         `yaml:"mode"`
	Entries      []Entry      `yaml:"entries"`
	Output       Output       `yaml:"output"`
	Resolve      Resolve      `yaml:"resolve"`
	SourceMap    bool         `yaml:"sourceMap"`
	DevServer    DevServer    `yaml:"devServer"`
	Optimization Optimization `yaml:"optimization"`
	Plugins      []Plugin     `yaml:"plugins"`
	Rules        RuleTable    `yaml:"rules"`
}

// New assembles the configuration for mode from project.
func New(mode Mode, project Project) (Config, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return Config{}, err
	}

	if err := project.Validate(); err != nil {
		return Config{}, err
	}

	aliases := make([]Alias, 0, len(project.Aliases))
	for _, a := range project.Aliases {
		aliases = append(aliases, Alias{Key: a.Key, Path: project.Abs(a.Path)})
	}

	entries := make([]Entry, 0, len(project.Entries))
	for _, e := range project.Entries {
		entries = append(entries, Entry{Name: e.Name, Modules: slices.Clone(e.Modules)})
	}

	return Config{
		Context: project.Abs(project.Source),
		Mode:    mode,
		Entries: entries,
		Output: Output{
			Path:     project.Abs(project.Output),
			Filename: Filename(mode, "js"),
		},
		Resolve: Resolve{
			Extensions: slices.Clone(project.Extensions),
			Aliases:    aliases,
		},
		SourceMap: mode.IsDev(),
		DevServer: DevServer{
			Port: project.Port,
			Hot:  mode.IsDev(),
		},
		Optimization: OptimizationFor(mode),
		Plugins:      PluginsFor(mode, project),
		Rules:        DefaultRules(mode),
	}, nil
}

// Entry returns the named entry.
func (c Config) Entry(name string) (Entry, bool) {
	for _, e := range c.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Plugin returns the first plugin of kind.
func (c Config) Plugin(kind PluginKind) (Plugin, bool) {
	for _, p := range c.Plugins {
		if p.Kind == kind {
			return p, true
		}
	}
	return Plugin{}, false
}

// Describe is a short human readable summary used in logs.
func (c Config) Describe() string {
	return fmt.Sprintf("%s build of %d entries into %s", c.Mode, len(c.Entries), c.Output.Path)
}
