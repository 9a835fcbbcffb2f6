package assets

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/renameio/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/wolfeidau/webbundle/internal/buildconfig"
)

// GzipFile writes path.gz next to path.
func GzipFile(path string, level int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return err
	}
	zw.Name = filepath.Base(path)

	if _, err := zw.Write(data); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	return renameio.WriteFile(path+".gz", buf.Bytes(), 0o644)
}

// compressPlugin precompresses outputs and the page so a static server can
// send them with Content-Encoding: gzip.
func (p *Pipeline) compressPlugin(opts buildconfig.CompressOptions) api.Plugin {
	return api.Plugin{
		Name: "compress",
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}

				metadata, err := ParseMetadata(result.Metafile)
				if err != nil {
					return api.OnEndResult{}, err
				}

				files := make([]string, 0, len(metadata.Outputs)+1)
				for path := range metadata.Outputs {
					files = append(files, p.outputFile(path))
				}
				if html, ok := p.config.Plugin(buildconfig.PluginHTML); ok && html.HTML != nil {
					files = append(files, filepath.Join(p.config.Output.Path, html.HTML.Filename))
				}

				for _, f := range files {
					if !slices.Contains(opts.Extensions, filepath.Ext(f)) {
						continue
					}
					if err := GzipFile(f, opts.Level); err != nil {
						return api.OnEndResult{}, fmt.Errorf("failed to compress %s: %w", f, err)
					}
				}

				return api.OnEndResult{}, nil
			})
		},
	}
}
