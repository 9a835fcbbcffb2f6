package buildconfig

import "slices"

// Stage names understood by the assets pipeline.
const (
	StageExtractCSS = "extract-css"
	StageCSS        = "css"
	StageSass       = "sass"
	StageFile       = "file"
	StageTranspile  = "transpile"
	StageLint       = "lint"
)

// Stage is one transform in a Chain.
type Stage struct {
	Name      string            `yaml:"name"`
	Options   map[string]any    `yaml:"options,omitempty"`
	Transpile *TranspileOptions `yaml:"transpile,omitempty"`
}

// Chain is an ordered list of transforms applied to a matched file.
//
// Stages holds the declaration order, which is the order a reader writes them
// in: the file flows through them from the last stage to the first. Execution
// returns that run order explicitly.
type Chain struct {
	Stages []Stage `yaml:"stages"`
}

func NewChain(stages ...Stage) Chain {
	return Chain{Stages: stages}
}

func (c Chain) Len() int {
	return len(c.Stages)
}

// Names returns the stage names in declaration order.
func (c Chain) Names() []string {
	names := make([]string, 0, len(c.Stages))
	for _, s := range c.Stages {
		names = append(names, s.Name)
	}
	return names
}

// Execution returns the stages in the order they run: last declared first.
func (c Chain) Execution() []Stage {
	out := slices.Clone(c.Stages)
	slices.Reverse(out)
	return out
}

func (c Chain) Has(name string) bool {
	_, ok := c.Find(name)
	return ok
}

func (c Chain) Find(name string) (Stage, bool) {
	for _, s := range c.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// Last returns the final declared stage, which is the first to see the source.
func (c Chain) Last() (Stage, bool) {
	if len(c.Stages) == 0 {
		return Stage{}, false
	}
	return c.Stages[len(c.Stages)-1], true
}
