package assets

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
)

func testConfig(t *testing.T, mode buildconfig.Mode, root string) buildconfig.Config {
	t.Helper()
	cfg, err := buildconfig.New(mode, buildconfig.DefaultProject(root))
	require.NoError(t, err)
	return cfg
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name       string
		mode       buildconfig.Mode
		entryNames string
		minify     bool
		sourcemap  api.SourceMap
	}{
		{name: "development", mode: buildconfig.ModeDevelopment, entryNames: "[name]", minify: false, sourcemap: api.SourceMapLinked},
		{name: "production", mode: buildconfig.ModeProduction, entryNames: "[name].[hash]", minify: true, sourcemap: api.SourceMapNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.mode, "/work")
			opts, err := New(cfg).Options()
			require.NoError(t, err)

			require.Equal(t, "/work/src", opts.AbsWorkingDir)
			require.Equal(t, "/work/dist", opts.Outdir)
			require.Equal(t, tt.entryNames, opts.EntryNames)
			require.Equal(t, tt.minify, opts.MinifyWhitespace)
			require.Equal(t, tt.minify, opts.MinifyIdentifiers)
			require.Equal(t, tt.minify, opts.MinifySyntax)
			require.Equal(t, tt.sourcemap, opts.Sourcemap)
			require.True(t, opts.Splitting)
			require.True(t, opts.Metafile)
			require.Equal(t, api.FormatESModule, opts.Format)
			require.Equal(t, []string{".js", ".png", ".json"}, opts.ResolveExtensions)
			require.Equal(t, `"`+tt.mode.String()+`"`, opts.Define["process.env.NODE_ENV"])

			require.Equal(t, []api.EntryPoint{
				{InputPath: "entry:main", OutputPath: "main"},
				{InputPath: "entry:analytics", OutputPath: "analytics"},
			}, opts.EntryPointsAdvanced)
		})
	}
}

func TestOptions_NamingMismatch(t *testing.T) {
	cfg := testConfig(t, buildconfig.ModeProduction, "/work")
	for i := range cfg.Plugins {
		if cfg.Plugins[i].Kind == buildconfig.PluginExtractCSS {
			cfg.Plugins[i].ExtractCSS = &buildconfig.ExtractCSSOptions{Filename: "styles/[name].css"}
		}
	}

	_, err := New(cfg).Options()
	require.ErrorIs(t, err, ErrNamingMismatch)
}

func TestLoaderMap(t *testing.T) {
	loaders := loaderMap(buildconfig.DefaultRules(buildconfig.ModeDevelopment))

	require.Equal(t, map[string]api.Loader{
		".css":   api.LoaderCSS,
		".png":   api.LoaderFile,
		".jpg":   api.LoaderFile,
		".svg":   api.LoaderFile,
		".gif":   api.LoaderFile,
		".ttf":   api.LoaderFile,
		".woff":  api.LoaderFile,
		".woff2": api.LoaderFile,
		".eot":   api.LoaderFile,
		".js":    api.LoaderJS,
		".ts":    api.LoaderTS,
		".jsx":   api.LoaderJSX,
	}, loaders)
}

func TestLoaderMap_FirstRuleWins(t *testing.T) {
	rules := buildconfig.RuleTable{
		{Name: "assets", Extensions: []string{".svg"}, Chain: buildconfig.NewChain(buildconfig.Stage{Name: buildconfig.StageFile})},
		{Name: "styles", Extensions: []string{".svg", ".css"}, Chain: buildconfig.StyleChain(buildconfig.ModeProduction, "")},
	}

	loaders := loaderMap(rules)
	require.Equal(t, api.LoaderFile, loaders[".svg"])
	require.Equal(t, api.LoaderCSS, loaders[".css"])
}

func testMetadata() *BuildMetadata {
	return &BuildMetadata{Outputs: map[string]OutputInfo{
		"../dist/main.js": {
			EntryPoint: "bundle-entry:main",
			CSSBundle:  "../dist/main.css",
			Imports: []ImportInfo{
				{Path: "../dist/chunk.ABCD1234.js", Kind: "import-statement"},
				{Path: "../dist/lazy.EFGH5678.js", Kind: "dynamic-import"},
			},
		},
		"../dist/analytics.js": {
			EntryPoint: "bundle-entry:analytics",
			Imports: []ImportInfo{
				{Path: "../dist/chunk.ABCD1234.js", Kind: "import-statement"},
			},
		},
		"../dist/chunk.ABCD1234.js": {
			Imports: []ImportInfo{
				{Path: "../dist/shared.IJKL9012.js", Kind: "import-statement"},
			},
		},
		"../dist/shared.IJKL9012.js": {},
		"../dist/lazy.EFGH5678.js":   {},
		"../dist/main.css":           {EntryPoint: "bundle-entry:main"},
		"../dist/main.js.map":        {},
	}}
}

func TestScripts(t *testing.T) {
	p := New(testConfig(t, buildconfig.ModeProduction, "/work"))
	metadata := testMetadata()

	scripts, entrypoint, err := metadata.Scripts("main", p.publicPath)
	require.NoError(t, err)
	require.Equal(t, "/main.js", entrypoint)
	require.Equal(t, []string{"/main.js", "/chunk.ABCD1234.js", "/shared.IJKL9012.js"}, scripts)

	style, ok := metadata.Style("main", p.publicPath)
	require.True(t, ok)
	require.Equal(t, "/main.css", style)

	_, ok = metadata.Style("analytics", p.publicPath)
	require.False(t, ok)

	_, _, err = metadata.Scripts("missing", p.publicPath)
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestPage(t *testing.T) {
	p := New(testConfig(t, buildconfig.ModeProduction, "/work"))

	page, err := p.Page(testMetadata(), "Home")
	require.NoError(t, err)
	require.Equal(t, Page{
		Title:    "Home",
		Mode:     "production",
		Styles:   []string{"/main.css"},
		Scripts:  []string{"/main.js", "/analytics.js"},
		Preloads: []string{"/chunk.ABCD1234.js", "/shared.IJKL9012.js"},
	}, page)
}

func TestLoadScripts_NotBuilt(t *testing.T) {
	p := New(testConfig(t, buildconfig.ModeDevelopment, "/work"))

	_, _, err := p.LoadScripts("main")
	require.ErrorIs(t, err, ErrNotBuilt)
}

func TestParseMetadata(t *testing.T) {
	metadata, err := ParseMetadata(`{"outputs":{"../dist/main.js":{"bytes":42,"entryPoint":"bundle-entry:main","cssBundle":"../dist/main.css","imports":[{"path":"../dist/chunk.js","kind":"import-statement"}]}}}`)
	require.NoError(t, err)
	require.Equal(t, OutputInfo{
		Bytes:      42,
		EntryPoint: "bundle-entry:main",
		CSSBundle:  "../dist/main.css",
		Imports:    []ImportInfo{{Path: "../dist/chunk.js", Kind: "import-statement"}},
	}, metadata.Outputs["../dist/main.js"])

	_, err = ParseMetadata("not json")
	require.Error(t, err)
}

type fakeLinter struct {
	issues []LintIssue
	linted []string
}

func (f *fakeLinter) Lint(_ context.Context, path string) ([]LintIssue, error) {
	f.linted = append(f.linted, path)
	return f.issues, nil
}

type fakeSass struct{}

func (fakeSass) Compile(_, source string) (string, error) {
	return strings.ReplaceAll(source, "$accent", "red"), nil
}

func (fakeSass) Close() error { return nil }

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, contents := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	}
}

func TestBuild(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/index.html":    "<!doctype html>\n<html>\n  <head>\n    <title>{{.Title}}</title>\n  </head>\n  <body>\n  </body>\n</html>\n",
		"src/index.js":    "import \"./style.css\";\nimport \"./theme.scss\";\nimport { greet } from \"@lib/util\";\nconsole.log(greet(process.env.NODE_ENV));\n",
		"src/style.css":   "body { margin: 0; }\n",
		"src/theme.scss":  "a { color: $accent; }\n",
		"src/lib/util.js": "export function greet(name) { return \"hello \" + name; }\n",
		"src/icon.png":    "png",
		"dist/stale.js":   "stale",
	})

	project := buildconfig.DefaultProject(root)
	project.Title = "Build Test"
	project.Entries = []buildconfig.Entry{{Name: "main", Modules: []string{"./index.js"}}}
	project.Aliases = []buildconfig.Alias{{Key: "@lib", Path: "src/lib"}}

	cfg, err := buildconfig.New(buildconfig.ModeDevelopment, project)
	require.NoError(t, err)

	linter := &fakeLinter{issues: []LintIssue{{Line: 1, Column: 1, Message: "prefer const", Severity: "Warning", Rule: "prefer-const"}}}
	p := New(cfg, WithLinter(linter), WithSassCompiler(fakeSass{}))

	metadata, err := p.Build(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, metadata.Outputs)

	scripts, entrypoint, err := p.LoadScripts("main")
	require.NoError(t, err)
	require.Equal(t, entrypoint, scripts[0])
	require.True(t, strings.HasPrefix(entrypoint, "/"))
	require.True(t, strings.HasSuffix(entrypoint, ".js"))

	bundle, err := os.ReadFile(filepath.Join(root, "dist", strings.TrimPrefix(entrypoint, "/")))
	require.NoError(t, err)
	require.Contains(t, string(bundle), "hello ")
	require.Contains(t, string(bundle), `"development"`)

	page, err := os.ReadFile(filepath.Join(root, "dist", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "<title>Build Test</title>")
	require.Contains(t, string(page), `<script type="module" src="`+entrypoint+`"></script>`)
	require.Contains(t, string(page), `rel="stylesheet"`)
	require.Contains(t, string(page), liveReloadScript)

	var css []byte
	for path := range metadata.Outputs {
		if strings.HasSuffix(path, ".css") {
			css, err = os.ReadFile(p.outputFile(path))
			require.NoError(t, err)
		}
	}
	require.Contains(t, string(css), "margin")
	require.Contains(t, string(css), "red")

	require.FileExists(t, filepath.Join(root, "dist", "icon.png"))
	require.NoFileExists(t, filepath.Join(root, "dist", "stale.js"))

	require.NotEmpty(t, linter.linted)
	for _, path := range linter.linted {
		require.True(t, strings.HasSuffix(path, ".js"))
	}
}

func TestBuild_Errors(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/index.html": "<html><body></body></html>",
		"src/index.js":   "import \"./missing.js\";\n",
	})

	project := buildconfig.DefaultProject(root)
	project.Entries = []buildconfig.Entry{{Name: "main", Modules: []string{"./index.js"}}}
	project.Copy = nil

	cfg, err := buildconfig.New(buildconfig.ModeProduction, project)
	require.NoError(t, err)

	p := New(cfg, WithSassCompiler(fakeSass{}))
	_, err = p.Build(context.Background())
	require.ErrorIs(t, err, ErrBuildFailed)

	_, _, err = p.LoadScripts("main")
	require.ErrorIs(t, err, ErrNotBuilt)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(t, buildconfig.ModeProduction, t.TempDir())).Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
