package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
)

// ErrUnsafeClean indicates the output directory overlaps the sources
var ErrUnsafeClean = errors.New("refusing to clean output directory containing sources")

// plugins returns the esbuild plugins for the configuration: resolution and
// transform stages first, then the configured post-processing plugins in order.
func (p *Pipeline) plugins() []api.Plugin {
	cfg := p.config

	plugins := []api.Plugin{
		p.reportPlugin(),
		entriesPlugin(cfg.Context, cfg.Entries),
		aliasPlugin(cfg.Resolve.Aliases),
	}

	var sassExtensions []string
	lint := false
	for _, r := range cfg.Rules {
		if r.Chain.Has(buildconfig.StageSass) {
			sassExtensions = append(sassExtensions, r.Extensions...)
		}
		if r.Chain.Has(buildconfig.StageLint) {
			lint = true
		}
	}

	if len(sassExtensions) > 0 {
		plugins = append(plugins, sassPlugin(p.sass, sassExtensions))
	}
	if lint {
		plugins = append(plugins, lintPlugin(p.linter, cfg.Rules, loaderMap(cfg.Rules), p.logger))
	}

	for _, plugin := range cfg.Plugins {
		switch plugin.Kind {
		case buildconfig.PluginClean:
			plugins = append(plugins, p.cleanPlugin())
		case buildconfig.PluginHTML:
			if plugin.HTML != nil {
				plugins = append(plugins, p.htmlPlugin(*plugin.HTML))
			}
		case buildconfig.PluginCopy:
			plugins = append(plugins, p.copyPlugin(plugin.Copy))
		case buildconfig.PluginCompress:
			if plugin.Compress != nil {
				plugins = append(plugins, p.compressPlugin(*plugin.Compress))
			}
		case buildconfig.PluginExtractCSS:
			// esbuild emits a css file next to every entry that imports styles,
			// named by the entry template checked in Options.
		default:
			p.logger.Warn().Str("plugin", string(plugin.Kind)).Msg("Unknown plugin ignored")
		}
	}

	return plugins
}

// reportPlugin logs every message of every build, including watch rebuilds.
func (p *Pipeline) reportPlugin() api.Plugin {
	return api.Plugin{
		Name: "report",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				for _, msg := range result.Errors {
					p.logger.Error().Str("error", formatMessage(msg)).Msg("Build error")
				}
				for _, msg := range result.Warnings {
					p.logger.Warn().Str("warning", formatMessage(msg)).Msg("Build warning")
				}

				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}

				metadata, err := ParseMetadata(result.Metafile)
				if err != nil {
					return api.OnEndResult{}, nil
				}
				for path, info := range metadata.Outputs {
					p.logger.Debug().Str("file", p.publicPath(path)).Int("bytes", info.Bytes).Msg("Built file")
				}

				p.logger.Info().Int("outputs", len(metadata.Outputs)).Msg("Build finished")
				return api.OnEndResult{}, nil
			})
		},
	}
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}

// cleanPlugin empties the output directory before each build.
func (p *Pipeline) cleanPlugin() api.Plugin {
	return api.Plugin{
		Name: "clean",
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				return api.OnStartResult{}, CleanDir(p.config.Output.Path, p.config.Context)
			})
		},
	}
}

// CleanDir removes everything inside dir, keeping dir itself. It refuses when
// dir is, or contains, protect.
func CleanDir(dir, protect string) error {
	if protect != "" && contains(dir, protect) {
		return fmt.Errorf("%w: %s", ErrUnsafeClean, dir)
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}

	return nil
}

// contains reports whether child is parent or below it.
func contains(parent, child string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
