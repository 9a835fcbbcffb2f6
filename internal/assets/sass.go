package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/godartsass/v2"
	"github.com/evanw/esbuild/pkg/api"
)

// SassCompiler turns a sass or scss source into css.
type SassCompiler interface {
	Compile(path, source string) (string, error)
	Close() error
}

// DartSass compiles with the embedded dart-sass protocol. The transpiler is
// started on first use and stopped by Close; a closed DartSass can be reused.
type DartSass struct {
	binary     string
	transpiler *godartsass.Transpiler
	mu         sync.Mutex
}

// NewDartSass uses binary, or "sass" from PATH when empty.
func NewDartSass(binary string) *DartSass {
	return &DartSass{binary: binary}
}

func (d *DartSass) Compile(path, source string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transpiler == nil {
		t, err := godartsass.Start(godartsass.Options{
			DartSassEmbeddedFilename: d.binary,
			Timeout:                  30 * time.Second,
		})
		if err != nil {
			return "", fmt.Errorf("failed to start dart-sass: %w", err)
		}
		d.transpiler = t
	}

	syntax := godartsass.SourceSyntaxSCSS
	if strings.HasSuffix(path, ".sass") {
		syntax = godartsass.SourceSyntaxSASS
	}

	res, err := d.transpiler.Execute(godartsass.Args{
		Source:       source,
		URL:          "file://" + filepath.ToSlash(path),
		IncludePaths: []string{filepath.Dir(path)},
		SourceSyntax: syntax,
		OutputStyle:  godartsass.OutputStyleExpanded,
	})
	if err != nil {
		return "", err
	}

	return res.CSS, nil
}

func (d *DartSass) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transpiler == nil {
		return nil
	}

	err := d.transpiler.Close()
	d.transpiler = nil
	return err
}

// sassPlugin runs the preprocessing stage for files with extensions, handing
// the resulting css to esbuild's css loader.
func sassPlugin(compiler SassCompiler, extensions []string) api.Plugin {
	return api.Plugin{
		Name: "sass",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: extensionFilter(extensions)}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				source, err := os.ReadFile(args.Path)
				if err != nil {
					return api.OnLoadResult{}, err
				}

				css, err := compiler.Compile(args.Path, string(source))
				if err != nil {
					return api.OnLoadResult{
						Errors: []api.Message{{Text: err.Error(), Location: &api.Location{File: args.Path}}},
					}, nil
				}

				return api.OnLoadResult{
					Contents:   &css,
					ResolveDir: filepath.Dir(args.Path),
					Loader:     api.LoaderCSS,
				}, nil
			})

			build.OnDispose(func() {
				_ = compiler.Close()
			})
		},
	}
}
