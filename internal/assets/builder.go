package assets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrNamingMismatch indicates the style sheet and script filename templates
// differ in anything but their extension; esbuild names both from one template.
var ErrNamingMismatch = errors.New("css filename must share the script filename pattern")

// Options translates the configuration into esbuild build options.
func (p *Pipeline) Options() (api.BuildOptions, error) {
	cfg := p.config

	if extract, ok := cfg.Plugin(buildconfig.PluginExtractCSS); ok && extract.ExtractCSS != nil {
		if extract.ExtractCSS.Filename.Stem() != cfg.Output.Filename.Stem() {
			return api.BuildOptions{}, fmt.Errorf("%w: %s vs %s", ErrNamingMismatch, extract.ExtractCSS.Filename, cfg.Output.Filename)
		}
	}

	entryPoints := make([]api.EntryPoint, 0, len(cfg.Entries))
	for _, e := range cfg.Entries {
		entryPoints = append(entryPoints, api.EntryPoint{
			InputPath:  entryPrefix + e.Name,
			OutputPath: e.Name,
		})
	}

	minify := cfg.Optimization.Minify()

	return api.BuildOptions{
		AbsWorkingDir:       cfg.Context,
		EntryPointsAdvanced: entryPoints,
		Outdir:              cfg.Output.Path,
		EntryNames:          cfg.Output.Filename.Stem(),
		ChunkNames:          "[name].[hash]",
		AssetNames:          "[name].[hash]",
		Bundle:              true,
		Splitting:           cfg.Optimization.SplitChunks.Chunks == buildconfig.ChunksAll,
		Write:               true,
		Format:              api.FormatESModule,
		Platform:            api.PlatformBrowser,
		Target:              api.ES2015,
		JSX:                 api.JSXTransform,
		MinifyWhitespace:    minify,
		MinifyIdentifiers:   minify,
		MinifySyntax:        minify,
		TreeShaking:         api.TreeShakingTrue,
		Sourcemap:           cond(cfg.SourceMap, api.SourceMapLinked, api.SourceMapNone),
		Metafile:            true,
		ResolveExtensions:   cfg.Resolve.Extensions,
		Loader:              loaderMap(cfg.Rules),
		Define: map[string]string{
			"process.env.NODE_ENV": strconv.Quote(cfg.Mode.String()),
		},
		LogLevel: api.LogLevelSilent,
		Plugins:  p.plugins(),
	}, nil
}

// Build runs esbuild with the configured settings and loads metadata
func (p *Pipeline) Build(ctx context.Context) (*BuildMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "assets.Build")
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()

	opts, err := p.Options()
	if err != nil {
		return nil, err
	}

	p.logger.Info().Str("mode", p.config.Mode.String()).Int("entries", len(p.config.Entries)).Msg("Building assets")

	started := time.Now()
	result := api.Build(opts)
	elapsed := time.Since(started)

	if len(result.Errors) > 0 {
		recordBuild(ctx, p.config.Mode, elapsed, len(result.Errors), nil)
		span.SetStatus(codes.Error, ErrBuildFailed.Error())
		return nil, fmt.Errorf("%w: %d errors", ErrBuildFailed, len(result.Errors))
	}

	metadata, err := ParseMetadata(result.Metafile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metafile: %w", err)
	}

	recordBuild(ctx, p.config.Mode, elapsed, 0, metadata)
	span.SetAttributes(attribute.Int("outputs", len(metadata.Outputs)))

	p.metadata = metadata
	return metadata, nil
}

// LoadScripts returns the ordered list of script paths needed for the given entry
// and the main entry file path. Paths are relative to the output root.
func (p *Pipeline) LoadScripts(entry string) ([]string, string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, "", ErrNotBuilt
	}

	return p.metadata.Scripts(entry, p.publicPath)
}

// Scripts walks the outputs for entry: the entry output first, then every chunk
// it statically imports, depth first. toPublic maps metafile paths to the
// paths used in the page.
func (m *BuildMetadata) Scripts(entry string, toPublic func(string) string) ([]string, string, error) {
	visited := make(map[string]bool)

	for outputPath, info := range m.Outputs {
		if !isScript(outputPath) || entryName(info.EntryPoint) != entry {
			continue
		}

		entrypoint := toPublic(outputPath)
		scripts := []string{entrypoint}
		visited[outputPath] = true
		m.addDependencies(info, &scripts, visited, toPublic)
		return scripts, entrypoint, nil
	}

	return nil, "", fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
}

// Style returns the css bundle emitted for entry, if any.
func (m *BuildMetadata) Style(entry string, toPublic func(string) string) (string, bool) {
	for outputPath, info := range m.Outputs {
		if isScript(outputPath) && entryName(info.EntryPoint) == entry && info.CSSBundle != "" {
			return toPublic(info.CSSBundle), true
		}
	}
	return "", false
}

func (m *BuildMetadata) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool, toPublic func(string) string) {
	for _, imp := range output.Imports {
		if imp.Kind == "dynamic-import" || visited[imp.Path] {
			continue
		}

		visited[imp.Path] = true
		*scripts = append(*scripts, toPublic(imp.Path))

		if chunkInfo, exists := m.Outputs[imp.Path]; exists {
			m.addDependencies(chunkInfo, scripts, visited, toPublic)
		}
	}
}

// publicPath maps a metafile path, relative to the working directory, onto a
// root relative URL path inside the output directory.
func (p *Pipeline) publicPath(metaPath string) string {
	abs := metaPath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(p.config.Context, metaPath)
	}

	rel, err := filepath.Rel(p.config.Output.Path, abs)
	if err != nil {
		return "/" + filepath.ToSlash(metaPath)
	}

	return "/" + filepath.ToSlash(rel)
}

// outputFile maps a metafile path onto the file on disk.
func (p *Pipeline) outputFile(metaPath string) string {
	if filepath.IsAbs(metaPath) {
		return metaPath
	}
	return filepath.Join(p.config.Context, metaPath)
}

func isScript(path string) bool {
	return strings.HasSuffix(path, ".js") || strings.HasSuffix(path, ".mjs")
}

// loaderMap derives the esbuild loader for every extension in the rule table.
// Sass files have no loader here; the sass plugin supplies css for them.
func loaderMap(rules buildconfig.RuleTable) map[string]api.Loader {
	loaders := make(map[string]api.Loader)

	for _, r := range rules {
		loader, ok := ruleLoader(r)
		if !ok {
			continue
		}
		for _, ext := range r.Extensions {
			if _, exists := loaders[ext]; !exists {
				loaders[ext] = loader
			}
		}
	}

	return loaders
}

func ruleLoader(r buildconfig.Rule) (api.Loader, bool) {
	switch {
	case r.Chain.Has(buildconfig.StageSass):
		return api.LoaderNone, false
	case r.Chain.Has(buildconfig.StageCSS):
		return api.LoaderCSS, true
	case r.Chain.Has(buildconfig.StageFile):
		return api.LoaderFile, true
	}

	if s, ok := r.Chain.Find(buildconfig.StageTranspile); ok && s.Transpile != nil {
		switch {
		case s.Transpile.HasPreset(buildconfig.PresetTypeScript):
			return api.LoaderTS, true
		case s.Transpile.HasPreset(buildconfig.PresetReact):
			return api.LoaderJSX, true
		}
		return api.LoaderJS, true
	}

	return api.LoaderNone, false
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
