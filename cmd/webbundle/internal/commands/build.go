package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/wolfeidau/webbundle/internal/assets"
	"github.com/wolfeidau/webbundle/internal/logger"
)

// BuildCmd bundles the project once.
type BuildCmd struct {
	ProjectFlags `embed:""`
	Sass         string `help:"path to the dart-sass binary (default: sass from PATH)" env:"WEBBUNDLE_SASS"`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	log, buildID := logger.WithBuild(logger.Setup(globals.Debug))

	defer c.startTelemetry(ctx, log, globals.Version)()

	cfg, err := c.Resolve(log)
	if err != nil {
		return err
	}

	log.Info().Str("version", globals.Version).Str("build_id", buildID).Msg(cfg.Describe())

	pipeline := assets.New(cfg,
		assets.WithLogger(log),
		assets.WithSassCompiler(assets.NewDartSass(c.Sass)),
	)

	metadata, err := pipeline.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build assets: %w", err)
	}

	for _, e := range cfg.Entries {
		scripts, entrypoint, err := pipeline.LoadScripts(e.Name)
		if err != nil {
			return err
		}
		log.Info().Str("entry", e.Name).Str("file", entrypoint).Strs("scripts", scripts).Msg("Entry built")
	}

	outputs := make([]string, 0, len(metadata.Outputs))
	for path := range metadata.Outputs {
		outputs = append(outputs, path)
	}
	sort.Strings(outputs)
	log.Debug().Strs("outputs", outputs).Msg("Build outputs")

	return nil
}
