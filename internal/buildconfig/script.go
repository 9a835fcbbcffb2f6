package buildconfig

// Preset and plugin names for TranspileOptions.
const (
	PresetEnv        = "env"
	PresetTypeScript = "typescript"
	PresetReact      = "react"

	PluginClassProperties = "class-properties"
)

// TranspileOptions describes the script transpilation stage.
type TranspileOptions struct {
	Presets []string `yaml:"presets"`
	Plugins []string `yaml:"plugins"`
}

// TranspileOptionsFor always includes the env preset and class property
// support. A non-empty preset is appended after the baseline.
func TranspileOptionsFor(preset string) TranspileOptions {
	opts := TranspileOptions{
		Presets: []string{PresetEnv},
		Plugins: []string{PluginClassProperties},
	}

	if preset != "" {
		opts.Presets = append(opts.Presets, preset)
	}

	return opts
}

// HasPreset reports whether name is one of the configured presets.
func (o TranspileOptions) HasPreset(name string) bool {
	for _, p := range o.Presets {
		if p == name {
			return true
		}
	}
	return false
}

// ScriptChain builds the plain script chain. Linting is only added in
// development, so lint failures never affect production builds.
func ScriptChain(mode Mode) Chain {
	opts := TranspileOptionsFor("")
	chain := NewChain(Stage{Name: StageTranspile, Transpile: &opts})

	if mode.IsDev() {
		chain.Stages = append(chain.Stages, Stage{Name: StageLint})
	}

	return chain
}

// PresetChain is a transpile-only chain with one extra preset.
func PresetChain(preset string) Chain {
	opts := TranspileOptionsFor(preset)
	return NewChain(Stage{Name: StageTranspile, Transpile: &opts})
}
