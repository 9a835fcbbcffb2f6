package buildconfig

// StyleChain builds the style sheet chain: extraction into standalone files,
// then generic css resolution, then extra (when non-empty) as the last declared
// stage so it sees the source first.
func StyleChain(mode Mode, extra string) Chain {
	chain := NewChain(
		Stage{
			Name: StageExtractCSS,
			Options: map[string]any{
				"hmr":       mode.IsDev(),
				"reloadAll": true,
			},
		},
		Stage{Name: StageCSS},
	)

	if extra != "" {
		chain.Stages = append(chain.Stages, Stage{Name: extra})
	}

	return chain
}
