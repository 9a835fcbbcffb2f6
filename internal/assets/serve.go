package assets

import (
	"context"
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
)

// Serve runs the development server until ctx is done. When hot reloading is
// enabled esbuild watches the module graph and the page template and copied
// assets are watched separately, since they are not part of that graph.
func (p *Pipeline) Serve(ctx context.Context, host string) error {
	opts, err := p.Options()
	if err != nil {
		return err
	}

	bctx, cerr := api.Context(opts)
	if cerr != nil {
		for _, msg := range cerr.Errors {
			p.logger.Error().Str("error", formatMessage(msg)).Msg("Build error")
		}
		return fmt.Errorf("%w: %d errors", ErrBuildFailed, len(cerr.Errors))
	}
	defer bctx.Dispose()

	if p.config.DevServer.Hot {
		if err := bctx.Watch(api.WatchOptions{}); err != nil {
			return fmt.Errorf("failed to watch: %w", err)
		}
	} else {
		bctx.Rebuild()
	}

	serveOpts := api.ServeOptions{
		Host:     host,
		Servedir: p.config.Output.Path,
	}
	setPort(&serveOpts.Port, p.config.DevServer.Port)

	if _, err := bctx.Serve(serveOpts); err != nil {
		return fmt.Errorf("failed to start dev server: %w", err)
	}

	p.logger.Info().
		Str("host", host).
		Int("port", p.config.DevServer.Port).
		Bool("hot", p.config.DevServer.Hot).
		Str("dir", p.config.Output.Path).
		Msg("Dev server listening")

	if p.config.DevServer.Hot {
		if sources := p.staticSources(); len(sources) > 0 {
			done, err := WatchFiles(ctx, p.logger, sources, func(string) {
				bctx.Rebuild()
			})
			if err != nil {
				return fmt.Errorf("failed to watch static sources: %w", err)
			}
			defer func() { <-done }()
		}
	}

	<-ctx.Done()
	p.logger.Info().Msg("Dev server stopping")
	return nil
}

// staticSources lists files that feed the output without being imported.
func (p *Pipeline) staticSources() []string {
	var sources []string
	for _, plugin := range p.config.Plugins {
		switch plugin.Kind {
		case buildconfig.PluginHTML:
			if plugin.HTML != nil {
				sources = append(sources, plugin.HTML.Template)
			}
		case buildconfig.PluginCopy:
			for _, c := range plugin.Copy {
				sources = append(sources, c.From)
			}
		}
	}
	return sources
}

// setPort accepts either integer type esbuild has used for ServeOptions.Port.
func setPort[T ~int | ~uint16](dst *T, port int) {
	*dst = T(port)
}
