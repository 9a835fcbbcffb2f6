package buildconfig

// Minimizer names.
const (
	MinimizerCSS    = "css-minimizer"
	MinimizerScript = "script-minimizer"
)

// ChunksAll splits every kind of shared dependency into common chunks.
const ChunksAll = "all"

type SplitChunks struct {
	Chunks string `yaml:"chunks"`
}

type Minimizer struct {
	Name string `yaml:"name"`
}

type Optimization struct {
	SplitChunks SplitChunks `yaml:"splitChunks"`
	Minimizers  []Minimizer `yaml:"minimizers,omitempty"`
}

// OptimizationFor always splits shared chunks. Production adds the style sheet
// minimizer followed by the script minimizer.
func OptimizationFor(mode Mode) Optimization {
	opt := Optimization{
		SplitChunks: SplitChunks{Chunks: ChunksAll},
	}

	if mode.IsProd() {
		opt.Minimizers = []Minimizer{
			{Name: MinimizerCSS},
			{Name: MinimizerScript},
		}
	}

	return opt
}

func (o Optimization) Minify() bool {
	return len(o.Minimizers) > 0
}

func (o Optimization) HasMinimizer(name string) bool {
	for _, m := range o.Minimizers {
		if m.Name == name {
			return true
		}
	}
	return false
}
