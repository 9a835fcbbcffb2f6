package buildconfig

import (
	"path/filepath"
	"slices"
	"strings"
)

// Rule routes files with one of Extensions to Chain, unless a path segment
// matches one of Exclude.
type Rule struct {
	Name       string   `yaml:"name"`
	Extensions []string `yaml:"extensions"`
	Exclude    []string `yaml:"exclude,omitempty"`
	Chain      Chain    `yaml:"chain"`
}

// Matches reports whether path ends in one of the rule's extensions and is not
// under an excluded directory.
func (r Rule) Matches(path string) bool {
	path = filepath.ToSlash(path)

	if !slices.ContainsFunc(r.Extensions, func(ext string) bool {
		return strings.HasSuffix(path, ext)
	}) {
		return false
	}

	segments := strings.Split(path, "/")
	for _, ex := range r.Exclude {
		if slices.Contains(segments, ex) {
			return false
		}
	}

	return true
}

// RuleTable is evaluated in order; the first matching rule wins.
type RuleTable []Rule

func (t RuleTable) Match(path string) (Rule, bool) {
	for _, r := range t {
		if r.Matches(path) {
			return r, true
		}
	}
	return Rule{}, false
}

func (t RuleTable) Find(name string) (Rule, bool) {
	for _, r := range t {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// Rule names in DefaultRules.
const (
	RuleCSS    = "css"
	RuleSass   = "sass"
	RuleImages = "images"
	RuleFonts  = "fonts"
	RuleJS     = "js"
	RuleTS     = "ts"
	RuleJSX    = "jsx"
)

const nodeModules = "node_modules"

// DefaultRules is the per file category table for mode.
func DefaultRules(mode Mode) RuleTable {
	return RuleTable{
		{Name: RuleCSS, Extensions: []string{".css"}, Chain: StyleChain(mode, "")},
		{Name: RuleSass, Extensions: []string{".sass", ".scss"}, Chain: StyleChain(mode, StageSass)},
		{Name: RuleImages, Extensions: []string{".png", ".jpg", ".svg", ".gif"}, Chain: NewChain(Stage{Name: StageFile})},
		{Name: RuleFonts, Extensions: []string{".ttf", ".woff", ".woff2", ".eot"}, Chain: NewChain(Stage{Name: StageFile})},
		{Name: RuleJS, Extensions: []string{".js"}, Exclude: []string{nodeModules}, Chain: ScriptChain(mode)},
		{Name: RuleTS, Extensions: []string{".ts"}, Exclude: []string{nodeModules}, Chain: PresetChain(PresetTypeScript)},
		{Name: RuleJSX, Extensions: []string{".jsx"}, Exclude: []string{nodeModules}, Chain: PresetChain(PresetReact)},
	}
}
